package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-wedding/internal/api"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/session"
	"github.com/tartampluch/go-wedding/internal/store"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n loads every embedded locale and detects the available languages.
func (app *WeddingApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err)
		return
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, config.LocalePrefix) || !strings.HasSuffix(name, config.LocaleSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name)
			continue
		}

		lang := strings.TrimSuffix(strings.TrimPrefix(name, config.LocalePrefix), config.LocaleSuffix)
		if lang == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, config.LocaleDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err)
			continue
		}
		detected = append(detected, lang)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang)
	}

	app.SupportedLanguages = detected
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer follows the language preference.
func (app *WeddingApp) UpdateLocalizer() {
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg translates a key without arguments. Unknown keys come back as is.
func (app *WeddingApp) GetMsg(key string) string {
	return app.Localize(key, nil, nil)
}

// Localize translates a templated message. count selects the plural form
// when not nil.
func (app *WeddingApp) Localize(key string, data map[string]any, count any) string {
	if app.Localizer == nil {
		return key
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  count,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err)
		return key
	}
	return msg
}

// FormatError is the localized counterpart of api.Describe. It is installed
// on both stores so their error slots speak the user's language.
func (app *WeddingApp) FormatError(err error) string {
	if err == nil {
		return ""
	}

	var rejected *api.RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}

	key := ""
	var data map[string]any
	switch {
	case errors.Is(err, api.ErrRejected):
		key = config.TKeyErrRejected
	case errors.Is(err, session.ErrMissingCredentials):
		key = config.TKeyErrCredentials
	case errors.Is(err, session.ErrNotSignedIn):
		key = config.TKeyErrSession
	case errors.Is(err, store.ErrNotFound):
		key = config.TKeyErrNotFound
	default:
		switch api.KindOf(err) {
		case api.KindInvalidEndpoint:
			key = config.TKeyErrEndpoint
		case api.KindTransport:
			key = config.TKeyErrTransport
		case api.KindMalformedResponse:
			key = config.TKeyErrMalformed
		case api.KindDecodeFailure:
			key = config.TKeyErrDecode
		case api.KindServerStatus:
			code, _ := api.StatusCode(err)
			if code == 401 || code == 403 {
				key = config.TKeyErrSession
			} else {
				key = config.TKeyErrServer
				data = map[string]any{"Status": code}
			}
		}
	}

	if key == "" {
		return api.Describe(err)
	}
	if msg := app.Localize(key, data, nil); msg != key {
		return msg
	}
	return api.Describe(err)
}

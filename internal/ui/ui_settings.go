package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-wedding/internal/config"
)

// settingsWidgets holds references to UI elements read on save.
type settingsWidgets struct {
	apiEntry      *widget.Entry
	langSelect    *widget.Select
	modeSelect    *widget.Select
	urlEntry      *widget.Entry
	userEntry     *widget.Entry
	passEntry     *widget.Entry
	pathEntry     *widget.Entry
	entryInterval *NumericalEntry
	entryPort     *NumericalEntry
	checkReminder *widget.Check
	entryRemValue *NumericalEntry
	selectRemUnit *widget.Select
	selectRemDir  *widget.Select
}

// ShowSettingsWindow displays the configuration window.
func (app *WeddingApp) ShowSettingsWindow() {
	if app.Window != nil {
		app.Window.RequestFocus()
		return
	}

	slog.Info(config.LogMsgOpenSettings, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.Window = w

	sw := app.newSettingsWidgets()

	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	itemAPI := widget.NewFormItem(app.GetMsg(config.TKeyLblAPIURL), sw.apiEntry)
	itemAPI.HintText = app.GetMsg(config.TKeyHelpAPIURL)
	serverCard := widget.NewCard(app.GetMsg(config.TKeyLblServer), "", widget.NewForm(itemAPI))

	sourceCard := app.buildSourceCard(w, sw, onLayoutChange)

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	widInterval := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblMinutes)), sw.entryInterval)
	itemInterval := widget.NewFormItem(app.GetMsg(config.TKeyLblRefresh), widInterval)
	itemInterval.HintText = app.GetMsg(config.TKeyHelpInterval)

	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort)
	if app.Feed != nil {
		itemPort.HintText = app.Localize(config.TKeyHelpPort, map[string]any{"URL": app.Feed.URL()}, nil)
	}

	generalCard := widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", widget.NewForm(itemLang, itemInterval, itemPort))
	notifCard := app.buildNotifCard(sw, onLayoutChange)

	saveAction := func() {
		for _, v := range []fyne.Validatable{sw.apiEntry, sw.entryPort} {
			if err := v.Validate(); err != nil {
				dialog.ShowError(err, w)
				return
			}
		}
		app.saveSettings(sw, w)
	}

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footer := widget.NewLabel(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version))
	footer.Alignment = fyne.TextAlignCenter
	footer.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		serverCard,
		sourceCard,
		generalCard,
		notifCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footer,
	))

	refreshLayout = func() {
		content.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	}

	w.SetContent(content)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.Window = nil })
	refreshLayout()
	w.Show()
}

func (app *WeddingApp) newSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}

	sw.apiEntry = widget.NewEntry()
	sw.apiEntry.SetText(app.Preferences.StringWithFallback(config.PrefAPIURL, app.Client.BaseURL()))
	sw.apiEntry.PlaceHolder = config.PlaceholderURL
	sw.apiEntry.Validator = func(s string) error {
		if err := config.ValidateBaseURL(strings.TrimSpace(s)); err != nil {
			return errors.New(app.GetMsg(config.TKeyErrURL))
		}
		return nil
	}

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.modeSelect = widget.NewSelect([]string{
		app.GetMsg(config.TKeyModeCardDAV),
		app.GetMsg(config.TKeyModeLocal),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetText(app.Preferences.String(config.PrefCardDAVURL))
	sw.urlEntry.PlaceHolder = config.PlaceholderURL

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefUsername))

	sw.passEntry = widget.NewPasswordEntry()
	if user := sw.userEntry.Text; user != "" && app.Secrets != nil {
		if pwd, err := app.Secrets.Get(config.CredKeyImportPrefix + user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefLocalPath))

	sw.entryInterval = NewNumericalEntry()
	sw.entryInterval.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = func(s string) error {
		if err := config.ValidatePort(s); err != nil {
			switch {
			case s == "":
				return errors.New(app.GetMsg(config.TKeyErrPortReq))
			case errors.Is(err, strconv.ErrSyntax):
				return errors.New(app.GetMsg(config.TKeyErrPortNum))
			default:
				return errors.New(app.GetMsg(config.TKeyErrPortRange))
			}
		}
		return nil
	}

	sw.checkReminder = widget.NewCheck(app.GetMsg(config.TKeyLblEnableRem), nil)
	sw.checkReminder.Checked = app.Preferences.BoolWithFallback(config.PrefReminderEnabled, true)

	sw.entryRemValue = NewNumericalEntry()
	sw.entryRemValue.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefReminderValue, config.DefaultReminderValue)))

	sw.selectRemUnit = widget.NewSelect([]string{
		app.GetMsg(config.TKeyUnitDays),
		app.GetMsg(config.TKeyUnitHours),
		app.GetMsg(config.TKeyUnitMinutes),
	}, nil)
	switch app.Preferences.StringWithFallback(config.PrefReminderUnit, config.UnitDays) {
	case config.UnitHours:
		sw.selectRemUnit.SetSelected(app.GetMsg(config.TKeyUnitHours))
	case config.UnitMinutes:
		sw.selectRemUnit.SetSelected(app.GetMsg(config.TKeyUnitMinutes))
	default:
		sw.selectRemUnit.SetSelected(app.GetMsg(config.TKeyUnitDays))
	}

	sw.selectRemDir = widget.NewSelect([]string{
		app.GetMsg(config.TKeyDirBefore),
		app.GetMsg(config.TKeyDirAfter),
	}, nil)
	if app.Preferences.StringWithFallback(config.PrefReminderDir, config.DirBefore) == config.DirAfter {
		sw.selectRemDir.SetSelected(app.GetMsg(config.TKeyDirAfter))
	} else {
		sw.selectRemDir.SetSelected(app.GetMsg(config.TKeyDirBefore))
	}
	return sw
}

// buildSourceCard lets the user pick the address book used for guest import.
func (app *WeddingApp) buildSourceCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})

	itemURL := widget.NewFormItem(app.GetMsg(config.TKeyLblURL), sw.urlEntry)
	itemURL.HintText = app.GetMsg(config.TKeyHelpURL)
	webForm := widget.NewForm(
		itemURL,
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry),
	)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	updateVis := func(mode string) {
		if mode == app.GetMsg(config.TKeyModeLocal) {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}
	sw.modeSelect.OnChanged = updateVis

	if app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal) == config.SourceModeLocal {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeLocal))
	} else {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeCardDAV))
	}

	return widget.NewCard(app.GetMsg(config.TKeyLblSource), "", container.NewVBox(sw.modeSelect, webForm, localForm))
}

// buildNotifCard controls the alarm attached to every calendar event.
func (app *WeddingApp) buildNotifCard(sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	controls := container.NewHBox(sw.selectRemUnit, sw.selectRemDir, widget.NewLabel(app.GetMsg(config.TKeyLblStartDay)))
	row := container.NewBorder(nil, nil, nil, controls, sw.entryRemValue)

	setVisible := func(on bool) {
		if on {
			row.Show()
		} else {
			row.Hide()
		}
	}
	sw.checkReminder.OnChanged = func(b bool) {
		setVisible(b)
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}
	setVisible(sw.checkReminder.Checked)

	return widget.NewCard(app.GetMsg(config.TKeyLblNotif), "", container.NewVBox(sw.checkReminder, row))
}

// saveSettings persists the preferences and applies them right away.
func (app *WeddingApp) saveSettings(sw *settingsWidgets, w fyne.Window) {
	slog.Info(config.LogMsgSaveSettings, config.LogKeyComponent, config.CompUISet)

	modeMap := map[string]string{
		app.GetMsg(config.TKeyModeCardDAV): config.SourceModeWeb,
		app.GetMsg(config.TKeyModeLocal):   config.SourceModeLocal,
	}

	apiURL := strings.TrimSpace(sw.apiEntry.Text)
	if apiURL != app.Client.BaseURL() {
		slog.Info(config.MsgAPIURLChanged,
			config.LogKeyComponent, config.CompUISet,
			config.LogKeyOld, app.Client.BaseURL(),
			config.LogKeyNew, apiURL)
		app.Client.SetBaseURL(apiURL)
	}
	app.Preferences.SetString(config.PrefAPIURL, apiURL)

	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	app.Preferences.SetString(config.PrefSourceMode, modeMap[sw.modeSelect.Selected])
	app.Preferences.SetString(config.PrefCardDAVURL, sw.urlEntry.Text)
	app.Preferences.SetString(config.PrefUsername, sw.userEntry.Text)
	app.Preferences.SetString(config.PrefLocalPath, sw.pathEntry.Text)

	if sw.userEntry.Text != "" && sw.passEntry.Text != "" && app.Secrets != nil {
		if err := app.Secrets.Set(config.CredKeyImportPrefix+sw.userEntry.Text, sw.passEntry.Text); err != nil {
			slog.Error(config.ErrKeyringWrite,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUISet)
		}
	}

	// empty or zero disables auto-refresh
	if i, ok := sw.entryInterval.IntValue(); ok && i > 0 {
		app.Preferences.SetInt(config.PrefInterval, i)
	} else {
		app.Preferences.SetInt(config.PrefInterval, config.DisabledInterval)
		slog.Info(config.LogMsgRefreshOff, config.LogKeyComponent, config.CompUISet)
	}

	if sw.entryPort.Text != "" {
		app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)
	}

	// an empty value disables reminders whatever the checkbox says
	if v, ok := sw.entryRemValue.IntValue(); ok {
		app.Preferences.SetBool(config.PrefReminderEnabled, sw.checkReminder.Checked)
		app.Preferences.SetInt(config.PrefReminderValue, v)
	} else {
		app.Preferences.SetBool(config.PrefReminderEnabled, false)
	}

	unit := config.UnitDays
	switch sw.selectRemUnit.Selected {
	case app.GetMsg(config.TKeyUnitHours):
		unit = config.UnitHours
	case app.GetMsg(config.TKeyUnitMinutes):
		unit = config.UnitMinutes
	}
	app.Preferences.SetString(config.PrefReminderUnit, unit)

	dir := config.DirBefore
	if sw.selectRemDir.Selected == app.GetMsg(config.TKeyDirAfter) {
		dir = config.DirAfter
	}
	app.Preferences.SetString(config.PrefReminderDir, dir)

	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	go app.performSync(true)

	w.Close()
}

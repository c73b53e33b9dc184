package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are the runtime options read from the environment at startup.
// Preferences saved from the settings window take precedence over APIURL
// and FeedPort.
type Settings struct {
	APIURL         string        `env:"WEDDING_API_URL"         envDefault:"http://localhost:8000/api"`
	CSRFEndpoint   string        `env:"WEDDING_CSRF_ENDPOINT"`
	FeedPort       string        `env:"WEDDING_FEED_PORT"       envDefault:"18080"`
	HTTPTimeout    time.Duration `env:"WEDDING_HTTP_TIMEOUT"    envDefault:"30s"`
	KeyringService string        `env:"WEDDING_KEYRING_SERVICE" envDefault:"com.github.tartampluch.go-wedding"`
}

// LoadSettings parses the environment and validates the result.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettings, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettings, err)
	}
	return s, nil
}

// Validate rejects settings the client cannot work with.
func (s Settings) Validate() error {
	if err := ValidateBaseURL(s.APIURL); err != nil {
		return err
	}
	if err := ValidatePort(s.FeedPort); err != nil {
		return err
	}
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("%s: %s", ErrHTTPTimeout, s.HTTPTimeout)
	}
	return nil
}

// ValidateBaseURL accepts absolute http(s) URLs with a host.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrInvalidURL, err)
	}
	if u.Scheme != SchemeHTTP && u.Scheme != SchemeHTTPS {
		return fmt.Errorf("%s: %q", ErrProtocol, u.Scheme)
	}
	if u.Host == "" {
		return errors.New(ErrMissingHost)
	}
	return nil
}

// ValidatePort accepts a decimal port in [MinPort, MaxPort]. A non-numeric
// value wraps strconv.ErrSyntax.
func ValidatePort(s string) error {
	if s == "" {
		return errors.New(ErrPortRequired)
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPortNumber, err)
	}
	if p < MinPort || p > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

package config_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-wedding/internal/config"
)

// TestConstants_Integrity guards against accidentally emptied identifiers.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"EndpointLogin", config.EndpointLogin},
		{"DefaultReminderTrigger", config.DefaultReminderTrigger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

func TestDefaults_Sanity(t *testing.T) {
	assert.Greater(t, config.DefaultRefreshMin, 0)
	assert.Equal(t, 30*time.Second, config.DefaultHTTPTimeout)
	assert.NoError(t, config.ValidatePort(config.DefaultPort))
	assert.NoError(t, config.ValidateBaseURL(config.DefaultAPIURL))
}

func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Wedding/"), "UserAgent must start with AppName/")
}

func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.ShutdownTimeout, 0*time.Second)
	assert.Greater(t, config.TokenRefreshWindow, 0*time.Second)
	assert.Less(t, config.TokenRefreshWindow, time.Hour, "refreshing too early would hammer the server")

	// Large enough for an address book, small enough for an in-memory read.
	assert.GreaterOrEqual(t, config.MaxHTTPResponseSize, 1024*1024)
	assert.Less(t, config.MaxHTTPResponseSize, 64*1024*1024)
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"18080", true},
		{"1", true},
		{"65535", true},
		{"0", false},
		{"65536", false},
		{"", false},
		{"http", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := config.ValidatePort(tt.in)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.True(t, errors.Is(config.ValidatePort("abc"), strconv.ErrSyntax))
	assert.EqualError(t, config.ValidatePort(""), config.ErrPortRequired)
	assert.EqualError(t, config.ValidatePort("70000"), config.ErrPortRange)
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, config.ValidateBaseURL("https://planner.example.com/api"))
	assert.NoError(t, config.ValidateBaseURL("http://127.0.0.1:8000"))
	assert.ErrorContains(t, config.ValidateBaseURL("ftp://example.com"), config.ErrProtocol)
	assert.EqualError(t, config.ValidateBaseURL("https://"), config.ErrMissingHost)
	assert.Error(t, config.ValidateBaseURL("://bad"))
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := config.LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAPIURL, s.APIURL)
	assert.Equal(t, config.DefaultPort, s.FeedPort)
	assert.Equal(t, config.DefaultHTTPTimeout, s.HTTPTimeout)
	assert.Equal(t, config.KeyringService, s.KeyringService)
	assert.Empty(t, s.CSRFEndpoint)
}

func TestLoadSettings_FromEnv(t *testing.T) {
	t.Setenv("WEDDING_API_URL", "https://planner.example.com/api")
	t.Setenv("WEDDING_CSRF_ENDPOINT", "auth/csrf")
	t.Setenv("WEDDING_FEED_PORT", "19090")
	t.Setenv("WEDDING_HTTP_TIMEOUT", "5s")
	t.Setenv("WEDDING_KEYRING_SERVICE", "test-service")

	s, err := config.LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "https://planner.example.com/api", s.APIURL)
	assert.Equal(t, "auth/csrf", s.CSRFEndpoint)
	assert.Equal(t, "19090", s.FeedPort)
	assert.Equal(t, 5*time.Second, s.HTTPTimeout)
	assert.Equal(t, "test-service", s.KeyringService)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"scheme":  {"WEDDING_API_URL": "ftp://example.com"},
		"port":    {"WEDDING_FEED_PORT": "99999"},
		"timeout": {"WEDDING_HTTP_TIMEOUT": "soon"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := config.LoadSettings()
			assert.ErrorContains(t, err, config.ErrSettings)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/websession/internal/providers/http/client"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Session config
	assert.Equal(t, "https", cfg.Session.Scheme)
	assert.Equal(t, "desktop", cfg.Session.UserAgent)
	assert.True(t, cfg.Session.Cookies)

	// Cookie config
	assert.Equal(t, 24*time.Hour, cfg.Cookie.TTL)
	assert.True(t, cfg.Cookie.AutoSave)
	assert.False(t, cfg.Cookie.NeverExpire)
	assert.Empty(t, cfg.Cookie.Dir)

	// Transport config mirrors the client defaults
	assert.Equal(t, client.DefaultConfig(), cfg.Transport.ClientConfig())

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"WEBSESSION_SCHEME":     "http",
		"WEBSESSION_USER_AGENT": "mobile",
		"WEBSESSION_COOKIES":    "false",
		"COOKIE_TTL":            "2h",
		"COOKIE_NEVER_EXPIRE":   "true",
		"COOKIE_DIR":            "/var/cache/websession",
		"HTTP_TIMEOUT":          "3s",
		"HTTP_RATE_LIMIT":       "2.5",
		"HTTP_FOLLOW_REDIRECTS": "true",
		"HTTP_PROXY_URL":        "socks5://127.0.0.1:1080",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Session.Scheme)
	assert.Equal(t, "mobile", cfg.Session.UserAgent)
	assert.False(t, cfg.Session.Cookies)

	jar := cfg.Cookie.JarConfig()
	assert.Equal(t, 2*time.Hour, jar.DefaultTTL)
	assert.True(t, jar.NeverExpire)
	assert.Equal(t, "/var/cache/websession", jar.CacheDir)
	assert.True(t, jar.AutoSave)

	cc := cfg.Transport.ClientConfig()
	assert.Equal(t, 3*time.Second, cc.Timeout)
	assert.Equal(t, 2.5, cc.RateLimit)
	assert.True(t, cc.FollowRedirects)
	assert.Equal(t, "socks5://127.0.0.1:1080", cc.Proxy)

	lc := cfg.Logging.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.True(t, lc.Development)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	_, err := LoadFrom("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")

	cfg := LoadOrDefault()
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("COOKIE_DIR=/tmp/jars\nLOG_LEVEL=warn\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("COOKIE_DIR")
		os.Unsetenv("LOG_LEVEL")
	})

	// The environment wins over the file
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/jars", cfg.Cookie.Dir)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadFromMissingDotEnv(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "https", cfg.Session.Scheme)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/websession/internal/infrastructure/logging"
	"github.com/GriffinCanCode/websession/internal/providers/browser/cookie"
	"github.com/GriffinCanCode/websession/internal/providers/http/client"
)

// Config holds all application configuration.
type Config struct {
	Session   SessionConfig
	Cookie    CookieConfig
	Transport TransportConfig
	Logging   LogConfig
}

// SessionConfig holds defaults for new browser sessions.
type SessionConfig struct {
	Scheme    string `envconfig:"WEBSESSION_SCHEME" default:"https"`
	UserAgent string `envconfig:"WEBSESSION_USER_AGENT" default:"desktop"`
	Cookies   bool   `envconfig:"WEBSESSION_COOKIES" default:"true"`
}

// CookieConfig holds cookie jar configuration.
type CookieConfig struct {
	TTL         time.Duration `envconfig:"COOKIE_TTL" default:"24h"`
	NeverExpire bool          `envconfig:"COOKIE_NEVER_EXPIRE" default:"false"`
	Dir         string        `envconfig:"COOKIE_DIR"`
	AutoSave    bool          `envconfig:"COOKIE_AUTOSAVE" default:"true"`
}

// TransportConfig holds network client configuration.
type TransportConfig struct {
	Timeout            time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	MaxRetries         int           `envconfig:"HTTP_MAX_RETRIES" default:"2"`
	RetryWaitMin       time.Duration `envconfig:"HTTP_RETRY_WAIT_MIN" default:"500ms"`
	RetryWaitMax       time.Duration `envconfig:"HTTP_RETRY_WAIT_MAX" default:"5s"`
	RateLimit          float64       `envconfig:"HTTP_RATE_LIMIT" default:"0"`
	FollowRedirects    bool          `envconfig:"HTTP_FOLLOW_REDIRECTS" default:"false"`
	MaxRedirects       int           `envconfig:"HTTP_MAX_REDIRECTS" default:"10"`
	Proxy              string        `envconfig:"HTTP_PROXY_URL"`
	InsecureSkipVerify bool          `envconfig:"HTTP_INSECURE" default:"false"`
	BreakerFailures    uint32        `envconfig:"HTTP_BREAKER_FAILURES" default:"10"`
	BreakerTimeout     time.Duration `envconfig:"HTTP_BREAKER_TIMEOUT" default:"30s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load reads an optional .env file from the working directory, then
// loads configuration from environment variables. Variables already set
// in the environment win over the file.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is fine.
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	transport := client.DefaultConfig()
	return &Config{
		Session: SessionConfig{
			Scheme:    "https",
			UserAgent: "desktop",
			Cookies:   true,
		},
		Cookie: CookieConfig{
			TTL:      24 * time.Hour,
			AutoSave: true,
		},
		Transport: TransportConfig{
			Timeout:         transport.Timeout,
			MaxRetries:      transport.MaxRetries,
			RetryWaitMin:    transport.RetryWaitMin,
			RetryWaitMax:    transport.RetryWaitMax,
			MaxRedirects:    transport.MaxRedirects,
			BreakerFailures: transport.BreakerFailures,
			BreakerTimeout:  transport.BreakerTimeout,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// JarConfig converts to the cookie jar configuration.
func (c CookieConfig) JarConfig() cookie.Config {
	return cookie.Config{
		DefaultTTL:  c.TTL,
		NeverExpire: c.NeverExpire,
		CacheDir:    c.Dir,
		AutoSave:    c.AutoSave,
	}
}

// ClientConfig converts to the transport client configuration.
func (c TransportConfig) ClientConfig() client.Config {
	return client.Config{
		Timeout:            c.Timeout,
		MaxRetries:         c.MaxRetries,
		RetryWaitMin:       c.RetryWaitMin,
		RetryWaitMax:       c.RetryWaitMax,
		RateLimit:          c.RateLimit,
		FollowRedirects:    c.FollowRedirects,
		MaxRedirects:       c.MaxRedirects,
		Proxy:              c.Proxy,
		InsecureSkipVerify: c.InsecureSkipVerify,
		BreakerFailures:    c.BreakerFailures,
		BreakerTimeout:     c.BreakerTimeout,
	}
}

// LoggerConfig converts to the logger configuration.
func (c LogConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if c.Development {
		cfg = logging.DevelopmentConfig()
	}
	if c.Level != "" {
		cfg.Level = c.Level
	}
	return cfg
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// DevSessionSecret is the cookie signing key used when SESSION_SECRET is unset.
const DevSessionSecret = "verona-dev-session-secret-change-me"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Remote API
	APIBaseURL  string        `env:"API_BASE_URL" envDefault:"http://localhost:4000"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	// Resilience. Only idempotent reads are ever retried.
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"0"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"100ms"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY" envDefault:"50"`

	// Currency-rate widgets
	RatesAPIURL   string        `env:"RATES_API_URL" envDefault:"https://dolarapi.com"`
	RatesCodes    []string      `env:"RATES_CODES" envSeparator:"," envDefault:"oficial,blue,tarjeta"`
	RatesCacheTTL time.Duration `env:"RATES_CACHE_TTL" envDefault:"5m"`

	// Session
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"verona-dev-session-secret-change-me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"8h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// Observability. An empty endpoint keeps spans in-process.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Blueprint photo storage. Uploads are disabled unless bucket and
	// region are set.
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Fake remote API (cmd/fakeapi)
	FakeAPIPort          int           `env:"FAKEAPI_PORT" envDefault:"4000"`
	FakeAPIJWTSecret     string        `env:"FAKEAPI_JWT_SECRET" envDefault:"fakeapi-dev-secret"`
	FakeAPIAdminPassword string        `env:"FAKEAPI_ADMIN_PASSWORD" envDefault:"admin"`
	FakeAPITokenTTL      time.Duration `env:"FAKEAPI_TOKEN_TTL" envDefault:"8h"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute URL: %q", c.APIBaseURL))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.RatesCacheTTL <= 0 {
		errs = append(errs, errors.New("RATES_CACHE_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// UsesDevSecret reports whether the session cookie is signed with the
// built-in development key.
func (c *Config) UsesDevSecret() bool {
	return c.SessionSecret == DevSessionSecret
}

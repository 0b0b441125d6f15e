// Package config loads runtime settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

// Prefix is prepended to every variable name.
const Prefix = "CAMPUSVERSE_"

// EnvProduction enables secure cookies and requires a fixed CSRF key.
const EnvProduction = "production"

// csrfKeyBytes is the gorilla/csrf auth key length.
const csrfKeyBytes = 32

var (
	ErrInvalidCSRFKey  = errors.New("CSRF_KEY must be 64 hex characters")
	ErrMissingCSRFKey  = errors.New("CSRF_KEY is required in production")
	ErrNonPositive     = errors.New("must be positive")
	ErrInvalidSchedule = errors.New("invalid HOUSEKEEPING_SCHEDULE")
	ErrInvalidHash     = errors.New("DEMO_PASSWORD_HASH is not a bcrypt hash")
	ErrMissingSupport  = errors.New("SUPPORT_EMAIL is required")
)

// Config holds every runtime setting. Variable names carry Prefix.
type Config struct {
	Addr     string     `env:"ADDR" envDefault:":8080"`
	Env      string     `env:"ENV" envDefault:"development"`
	DBPath   string     `env:"DB_PATH" envDefault:"campusverse.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	CSRFKey      string        `env:"CSRF_KEY"`
	WelcomeDelay time.Duration `env:"WELCOME_DELAY" envDefault:"3500ms"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	RateLimitPerSecond     int `env:"RATE_LIMIT_PER_SECOND" envDefault:"20"`
	LoginAttemptsPerMinute int `env:"LOGIN_ATTEMPTS_PER_MINUTE" envDefault:"5"`
	SlowRequestMS          int `env:"SLOW_REQUEST_MS" envDefault:"200"`
	SlowQueryMS            int `env:"SLOW_QUERY_MS" envDefault:"50"`

	ResendKey    string `env:"RESEND_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"CampusVerse <noreply@campusverse.edu>"`
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:"support@campusverse.edu"`

	// DemoPasswordHash switches login from accept-all to a shared bcrypt passphrase.
	DemoPasswordHash string `env:"DEMO_PASSWORD_HASH"`

	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HousekeepingSchedule string        `env:"HOUSEKEEPING_SCHEDULE" envDefault:"@every 5m"`
}

// Load reads an optional .env file, then parses the process environment.
// PRE: none
// POST: returns a validated Config or the first problem found
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	if c.CSRFKey != "" {
		key, err := hex.DecodeString(c.CSRFKey)
		if err != nil || len(key) != csrfKeyBytes {
			return ErrInvalidCSRFKey
		}
	} else if c.IsProduction() {
		return ErrMissingCSRFKey
	}
	for name, d := range map[string]time.Duration{
		"WELCOME_DELAY":    c.WelcomeDelay,
		"SESSION_TTL":      c.SessionTTL,
		"SHUTDOWN_TIMEOUT": c.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s %w", name, ErrNonPositive)
		}
	}
	for name, n := range map[string]int{
		"RATE_LIMIT_PER_SECOND":     c.RateLimitPerSecond,
		"LOGIN_ATTEMPTS_PER_MINUTE": c.LoginAttemptsPerMinute,
		"SLOW_REQUEST_MS":           c.SlowRequestMS,
		"SLOW_QUERY_MS":             c.SlowQueryMS,
	} {
		if n <= 0 {
			return fmt.Errorf("%s %w", name, ErrNonPositive)
		}
	}
	if _, err := cron.ParseStandard(c.HousekeepingSchedule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if c.DemoPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(c.DemoPasswordHash)); err != nil {
			return ErrInvalidHash
		}
	}
	if c.SupportEmail == "" {
		return ErrMissingSupport
	}
	return nil
}

// IsProduction reports whether the server runs behind TLS in production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFAuthKey returns the decoded CSRF key. Outside production a missing key
// is replaced by a random one, so forms do not survive a restart.
func (c Config) CSRFAuthKey() ([]byte, error) {
	if c.CSRFKey != "" {
		return hex.DecodeString(c.CSRFKey)
	}
	key := make([]byte, csrfKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	return key, nil
}

// SlowRequest returns the slow request threshold.
func (c Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMS) * time.Millisecond
}

// SlowQuery returns the slow query threshold.
func (c Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

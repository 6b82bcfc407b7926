package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Config contains all runtime settings for the modulation service.
type Config struct {
	BindAddr         string        `env:"NEUROMOD_BIND_ADDR" envDefault:":8080"`
	ShutdownTimeout  time.Duration `env:"NEUROMOD_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	MetricsNamespace string        `env:"NEUROMOD_METRICS_NAMESPACE" envDefault:"neuromod"`
	AllowAnyOrigin   bool          `env:"NEUROMOD_ALLOW_ANY_ORIGIN" envDefault:"false"`

	// StoreMode is auto, local or remote. auto picks remote when DatabaseURL is set.
	StoreMode   string `env:"NEUROMOD_STORE" envDefault:"auto"`
	DatabaseURL string `env:"DATABASE_URL"`

	// DefaultOwner scopes calls that carry no owner of their own.
	DefaultOwner  string        `env:"NEUROMOD_OWNER"`
	SweepInterval time.Duration `env:"NEUROMOD_SWEEP_INTERVAL" envDefault:"0s"`
	LogLevel      string        `env:"NEUROMOD_LOG_LEVEL" envDefault:"info"`
}

// Load reads environment variables, applies defaults and validates.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.BindAddr = strings.TrimSpace(c.BindAddr)
	c.StoreMode = strings.ToLower(strings.TrimSpace(c.StoreMode))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.DefaultOwner = strings.TrimSpace(c.DefaultOwner)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func (c Config) Validate() error {
	var errs []error
	if c.BindAddr == "" {
		errs = append(errs, errors.New("NEUROMOD_BIND_ADDR must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("NEUROMOD_SHUTDOWN_TIMEOUT must be > 0"))
	}
	if c.SweepInterval < 0 {
		errs = append(errs, errors.New("NEUROMOD_SWEEP_INTERVAL must be >= 0"))
	}
	switch c.StoreMode {
	case "auto", "local", "remote":
	default:
		errs = append(errs, fmt.Errorf("NEUROMOD_STORE must be auto|local|remote, got %q", c.StoreMode))
	}
	if c.StoreMode == "remote" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("NEUROMOD_STORE=remote requires DATABASE_URL"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("NEUROMOD_LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

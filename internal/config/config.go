// Package config reads server settings from the environment.
// A .env file, when present, is loaded first so local development needs no
// exported variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backends accepted by STATE_BACKEND.
const (
	BackendToken  = "token"
	BackendMemory = "memory"
)

const devSecret = "dev_secret_change_me"

// Config holds every tunable of the server.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty      bool          `env:"LOG_PRETTY" envDefault:"false"`
	BaseURL        string        `env:"BASE_URL" envDefault:"http://localhost:5175"`
	StateSecret    string        `env:"STATE_SECRET" envDefault:"dev_secret_change_me"`
	StateBackend   string        `env:"STATE_BACKEND" envDefault:"token"`
	StateTTL       time.Duration `env:"STATE_TTL" envDefault:"24h"`
	SessionSweep   time.Duration `env:"SESSION_SWEEP" envDefault:"10m"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"*"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BASE_URL must be an absolute URL, got %q", c.BaseURL)
	}
	switch c.StateBackend {
	case BackendToken, BackendMemory:
	default:
		return fmt.Errorf("STATE_BACKEND must be %q or %q, got %q", BackendToken, BackendMemory, c.StateBackend)
	}
	if c.StateBackend == BackendToken && c.StateSecret == "" {
		return errors.New("STATE_SECRET is required for the token backend")
	}
	if c.StateTTL <= 0 {
		return errors.New("STATE_TTL must be positive")
	}
	if c.SessionSweep <= 0 {
		return errors.New("SESSION_SWEEP must be positive")
	}
	return nil
}

// InsecureSecret reports whether the built-in development secret is in use.
func (c *Config) InsecureSecret() bool { return c.StateSecret == devSecret }

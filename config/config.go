// Package config loads and validates host config from env and an optional
// .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"dashboard-session-core/timeout"
)

// Config holds the library's configuration loaded from the environment.
type Config struct {
	// AuthBaseURL is the account service base URL (e.g. https://accounts.example.com).
	// Required unless the host injects its own Authenticator.
	AuthBaseURL string `mapstructure:"AUTH_BASE_URL"`
	// TokenDBPath is the SQLite file holding the per-role token slots; empty
	// selects an in-memory store (sessions then do not survive reloads).
	TokenDBPath string `mapstructure:"TOKEN_DB_PATH"`
	// SessionTTL is the non-admin absolute session lifetime (e.g. "30m").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// InactivityTTL is the non-admin inactivity deadline (e.g. "15m").
	InactivityTTL string `mapstructure:"INACTIVITY_TTL"`
	// AdminSessionTTL is the admin absolute session lifetime (e.g. "2h").
	AdminSessionTTL string `mapstructure:"ADMIN_SESSION_TTL"`
	// AdminInactivityTTL is the admin inactivity deadline (e.g. "45m").
	AdminInactivityTTL string `mapstructure:"ADMIN_INACTIVITY_TTL"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored; env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("AUTH_BASE_URL", "")
	v.SetDefault("TOKEN_DB_PATH", "")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("INACTIVITY_TTL", "15m")
	v.SetDefault("ADMIN_SESSION_TTL", "2h")
	v.SetDefault("ADMIN_INACTIVITY_TTL", "45m")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks duration fields parse when set. AuthBaseURL is checked at
// wiring time since hosts may inject their own Authenticator instead.
func (c *Config) Validate() error {
	for _, d := range []string{c.SessionTTL, c.InactivityTTL, c.AdminSessionTTL, c.AdminInactivityTTL} {
		if d == "" {
			continue
		}
		if parsed, err := time.ParseDuration(d); err != nil || parsed <= 0 {
			return errors.New("config: timeout durations must be positive Go durations")
		}
	}
	return nil
}

// Policies returns the timeout policy tiers from the config, falling back to
// the stock defaults for unset or invalid fields.
func (c *Config) Policies() timeout.Policies {
	return timeout.Policies{
		Standard: timeout.Policy{
			Session:    durationOr(c.SessionTTL, timeout.DefaultSession),
			Inactivity: durationOr(c.InactivityTTL, timeout.DefaultInactivity),
		},
		Admin: timeout.Policy{
			Session:    durationOr(c.AdminSessionTTL, timeout.DefaultAdminSession),
			Inactivity: durationOr(c.AdminInactivityTTL, timeout.DefaultAdminInactivity),
		},
	}
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Package config loads server configuration from the environment, with an
// optional .env overlay for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"DATABASE_DSN,required,notEmpty"`

	// SecretKey signs session and remember cookies. The app refuses to
	// start without it; it is not tagged required so utilities that never
	// issue cookies can share this config.
	SecretKey string `env:"SECRET_KEY"`

	// SessionTTL bounds the signed session envelope. The session cookie
	// itself is browser-session scoped.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// RememberTTL bounds persistent remember-me tokens.
	RememberTTL time.Duration `env:"REMEMBER_TTL" envDefault:"720h"`

	// CookieSecure marks auth cookies Secure. Disable only for local
	// plain-HTTP development.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`

	// RedisAddr enables the Redis-backed login rate limiter when set;
	// otherwise an in-process limiter is used.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"5m"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

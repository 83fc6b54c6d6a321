package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// JWTSecret may be left empty outside production, in which case a random
	// per-process secret is generated. That breaks token validation across
	// instances and restarts, so production requires an explicit value.
	JWTSecret       string `env:"JWT_SECRET" validate:"required_if=Env production,omitempty,min=32"`
	JWTAccessTTLMin int    `env:"JWT_ACCESS_TTL_MIN" envDefault:"15" validate:"min=1"`
	JWTLoginTTLMin  int    `env:"JWT_LOGIN_TTL_MIN" envDefault:"10080" validate:"min=1"`

	WorkerCount     int `env:"WORKER_COUNT" envDefault:"5" validate:"min=1,max=100"`
	PollIntervalSec int `env:"POLL_INTERVAL_SEC" envDefault:"1" validate:"min=1,max=60"`

	NotifyMaxRetries     int `env:"NOTIFY_MAX_RETRIES" envDefault:"3" validate:"min=0,max=10"`
	NotifyBackoffBaseSec int `env:"NOTIFY_BACKOFF_BASE_SEC" envDefault:"180" validate:"min=1"`
	NotifyBackoffCapSec  int `env:"NOTIFY_BACKOFF_CAP_SEC" envDefault:"720" validate:"min=1"`

	RetentionDays int    `env:"RETENTION_DAYS" envDefault:"30" validate:"min=1"`
	RetentionCron string `env:"RETENTION_CRON" envDefault:"0 3 * * *"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
	NotifyTo     string `env:"NOTIFY_TO" envDefault:"ops@meowfish.org" validate:"email"`

	// Seed accounts, consumed only by cmd/seed.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@meowfish.org" validate:"email"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"pw2023"`
	UserEmail     string `env:"USER_EMAIL" envDefault:"alice@meowfish.org" validate:"email"`
	UserPassword  string `env:"USER_PASSWORD" envDefault:"pw2023"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func randomSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

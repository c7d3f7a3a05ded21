// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/domain"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is the full runtime configuration of the server.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Store           string        `env:"STORE" envDefault:"postgres"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// RerequestPolicy is one of after_cancel or never.
	RerequestPolicy string `env:"BOOKING_REREQUEST_POLICY" envDefault:"after_cancel"`

	DB   DB   `envPrefix:"DB_"`
	Auth Auth `envPrefix:"AUTH_"`
	Log  Log  `envPrefix:"LOG_"`
}

// DB holds PostgreSQL connection settings.
type DB struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	Name     string `env:"NAME" envDefault:"pickupsports"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"20"`
	Migrate  bool   `env:"MIGRATE" envDefault:"true"`
}

// DSN builds a libpq-compatible connection string.
func (c DB) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type Auth struct {
	SigningSecret string `env:"SIGNING_SECRET"`
	Issuer        string `env:"ISSUER" envDefault:"pickup-sports"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.Auth.SigningSecret == "" {
		return fmt.Errorf("AUTH_SIGNING_SECRET is required (try `openssl rand -hex 32`)")
	}
	if _, err := domain.ParseRerequestPolicy(c.RerequestPolicy); err != nil {
		return fmt.Errorf("BOOKING_REREQUEST_POLICY: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Policy returns the parsed re-request policy. Validate has already run.
func (c Config) Policy() domain.RerequestPolicy {
	p, _ := domain.ParseRerequestPolicy(c.RerequestPolicy)
	return p
}

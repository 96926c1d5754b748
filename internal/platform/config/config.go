// Copyright (c) 2026 NutriSync. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Mongo) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nutrisync/nutrisync/pkg/query"
)

// # Configuration Schema

// Config holds all runtime configuration for the NutriSync API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL): accounts + reminders
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis): vision-analysis result cache
	RedisURL string `env:"REDIS_URL,required"`

	// Document Database (MongoDB): food logs + API usage events
	MongoURL      string `env:"MONGO_URL,required"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"nutrisync"`

	// TokenSecret signs session tokens (HS256). When empty, the fixed
	// development default from the sec package is used — a documented
	// security caveat for local setups, never acceptable in production.
	TokenSecret string `env:"TOKEN_SECRET"`

	// Reminder delivery
	ReminderPollInterval time.Duration `env:"REMINDER_POLL_INTERVAL" envDefault:"1s"`
	ReminderDestination  string        `env:"REMINDER_DESTINATION"`

	// Messaging gateway (Twilio WhatsApp). When the SID is empty the
	// server falls back to a log-only gateway for development.
	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `env:"TWILIO_FROM" envDefault:"whatsapp:+14155238886"`

	// Vision AI sidecar
	AIServiceURL string `env:"AI_SERVICE_URL" envDefault:"http://localhost:8000"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins configured beyond the
// first-party domain, parsed from a comma-separated list.
func (c *Config) AllowedOrigins() []string {
	return query.StringSlice(c.ExtraOrigins)
}

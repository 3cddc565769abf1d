// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the commands.
type Config struct {
	CanopyAPIKey  string
	CanopyBaseURL string
	PostgresDSN   string
	ClickhouseDSN string
	Marketplace   string
	LookbackDays  int
	ExportPath    string
}

// Load reads the configuration from the environment. A .env file in
// the working directory is merged in first when present; real
// environment variables win.
func Load() (*Config, error) {
	// Ignore a missing .env; containerized runs set the environment
	// directly.
	_ = godotenv.Load()

	cfg := &Config{
		CanopyAPIKey:  os.Getenv("CANOPY_API_KEY"),
		CanopyBaseURL: os.Getenv("CANOPY_BASE_URL"),
		PostgresDSN:   os.Getenv("DATABASE_URL"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_URL"),
		Marketplace:   envOr("MARKETPLACE", "US"),
		LookbackDays:  90,
		ExportPath:    envOr("EXPORT_PATH", "./exports"),
	}

	if raw := os.Getenv("LOOKBACK_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse LOOKBACK_DAYS: %w", err)
		}
		cfg.LookbackDays = days
	}

	return cfg, nil
}

// ValidateCollector checks the settings required to call the upstream
// API.
func (c *Config) ValidateCollector() error {
	if c.CanopyAPIKey == "" {
		return fmt.Errorf("CANOPY_API_KEY is required")
	}
	return nil
}

// ValidateStorage checks the settings required to reach PostgreSQL.
func (c *Config) ValidateStorage() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

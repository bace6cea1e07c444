package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backend names accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

// Config holds the full process configuration, populated from the
// environment. The port and intervals default to the values the original
// deployment ran with.
type Config struct {
	Port int `env:"PORT" envDefault:"4001"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DataDir      string `env:"DATA_DIR" envDefault:"./data"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	IngestInterval  time.Duration `env:"INGEST_INTERVAL" envDefault:"2s"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	RetentionWindow time.Duration `env:"RETENTION_WINDOW" envDefault:"24h"`

	MaxPathDepth int    `env:"MAX_PATH_DEPTH" envDefault:"5"`
	SignalsFile  string `env:"SIGNALS_FILE"`
}

// Load parses configuration from the environment and validates it.
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

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendBolt:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.IngestInterval <= 0 {
		return fmt.Errorf("INGEST_INTERVAL must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if c.RetentionWindow <= 0 {
		return fmt.Errorf("RETENTION_WINDOW must be positive")
	}
	if c.MaxPathDepth < 1 {
		return fmt.Errorf("MAX_PATH_DEPTH must be at least 1")
	}
	return nil
}

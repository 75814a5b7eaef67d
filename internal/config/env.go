// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is shared by the commander binaries. Command-line flags override
// individual fields after loading.
type Config struct {
	CatalogPath string `env:"COMMANDER_CATALOG" envDefault:"cards.yaml"`

	Store      string `env:"COMMANDER_STORE" envDefault:"file"`
	DataDir    string `env:"COMMANDER_DATA_DIR" envDefault:"sessions"`
	SQLitePath string `env:"COMMANDER_SQLITE_PATH" envDefault:"commander.db"`
	RedisURL   string `env:"COMMANDER_REDIS_URL" envDefault:"redis://localhost:6379/0"`

	Seed               int64    `env:"COMMANDER_SEED"`
	Faction            string   `env:"COMMANDER_FACTION" envDefault:"Imperial"`
	Expansions         []string `env:"COMMANDER_EXPANSIONS" envSeparator:"," envDefault:"Core"`
	AdaptiveDifficulty bool     `env:"COMMANDER_ADAPTIVE"`
	Threat             int      `env:"COMMANDER_THREAT" envDefault:"0"`
	ThreatLevel        int      `env:"COMMANDER_THREAT_LEVEL" envDefault:"3"`

	Addr string `env:"COMMANDER_ADDR" envDefault:":8080"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Dev      bool   `env:"DEV"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses a Config and checks the store backend.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings no command can run with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	if c.ThreatLevel < 0 {
		return fmt.Errorf("threat level must not be negative, got %d", c.ThreatLevel)
	}
	return nil
}

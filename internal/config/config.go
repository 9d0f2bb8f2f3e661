package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// DBDSN selects postgres; empty runs on the in-memory store.
	DBDSN         string `env:"DOMINION_DB_DSN"`
	HTTPAddr      string `env:"DOMINION_HTTP_ADDR" envDefault:":8080"`
	FeedAddr      string `env:"DOMINION_FEED_ADDR" envDefault:":8081"`
	ArchiveDir    string `env:"DOMINION_ARCHIVE_DIR"`
	TuningFile    string `env:"DOMINION_TUNING_FILE"`
	TurnWorkers   int    `env:"DOMINION_TURN_WORKERS" envDefault:"4"`
	LogLevel      string `env:"DOMINION_LOG_LEVEL" envDefault:"info"`
	LogPretty     bool   `env:"DOMINION_LOG_PRETTY" envDefault:"false"`
	GMKey         string `env:"DOMINION_GM_KEY"`
	MigrationsDir string `env:"DOMINION_MIGRATIONS_DIR"`
	SeedDemo      bool   `env:"DOMINION_SEED_DEMO" envDefault:"false"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.TurnWorkers <= 0 {
		return Config{}, fmt.Errorf("DOMINION_TURN_WORKERS must be positive, got %d", cfg.TurnWorkers)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

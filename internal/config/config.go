// Package config loads runtime configuration from EHJ_* environment
// variables. Command-line flags override individual fields after loading.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/catalog"
	"github.com/fatimatanveer/ethical-hackers-journey/internal/interpreter"
)

// Config holds the runtime configuration.
type Config struct {
	DBPath            string        `env:"EHJ_DB_PATH"            envDefault:"ehj.db"`
	CatalogDir        string        `env:"EHJ_CATALOG_DIR"`
	HintDelay         time.Duration `env:"EHJ_HINT_DELAY"         envDefault:"500ms"`
	RandomSeed        uint64        `env:"EHJ_RANDOM_SEED"`
	LeaderboardWindow time.Duration `env:"EHJ_LEADERBOARD_WINDOW" envDefault:"5m"`
	LogLevel          string        `env:"EHJ_LOG_LEVEL"          envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
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

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: EHJ_DB_PATH must not be empty")
	}
	if c.HintDelay < 0 {
		return fmt.Errorf("config: EHJ_HINT_DELAY must not be negative, got %s", c.HintDelay)
	}
	if c.LeaderboardWindow <= 0 {
		return fmt.Errorf("config: EHJ_LEADERBOARD_WINDOW must be positive, got %s", c.LeaderboardWindow)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: EHJ_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Catalog loads the mission catalog from CatalogDir, or the embedded
// catalog when it is empty.
func (c Config) Catalog() (*catalog.Catalog, error) {
	if c.CatalogDir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(c.CatalogDir)
}

// Random returns the command random source. A zero seed draws a fresh
// seed from crypto/rand.
func (c Config) Random() (interpreter.Random, error) {
	seed := c.RandomSeed
	if seed == 0 {
		s, err := interpreter.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("config: random seed: %w", err)
		}
		seed = s
	}
	return interpreter.NewSeeded(seed), nil
}

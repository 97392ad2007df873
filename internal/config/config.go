// Package config loads the stockticker application configuration from a
// YAML file, with environment variable overrides applied after parsing.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/michaelkernaghan/stockticker/internal/domain"
	"github.com/michaelkernaghan/stockticker/internal/engine"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the stockticker host.
type Config struct {
	Game    Game    `yaml:"game"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Game holds the rules a new game is created with. Zero values fall back
// to the engine defaults, except trading_interval_rolls where an explicit
// zero means the trading phase never reopens automatically.
type Game struct {
	StartingCashCents    int64   `yaml:"starting_cash_cents"`
	TradingIntervalRolls *int    `yaml:"trading_interval_rolls"`
	BlockSizes           []int64 `yaml:"block_sizes"`
	Seed                 *int64  `yaml:"seed"`
}

// Storage holds paths for save slots and history archives.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given: default
// game rules, storage under ./data, JSON logging at info.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/stockticker.db",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// GameConfig translates the configured rules into an engine GameConfig.
func (c *Config) GameConfig() engine.GameConfig {
	cfg := engine.DefaultConfig()
	if c.Game.StartingCashCents > 0 {
		cfg.StartingCash = domain.Cents(c.Game.StartingCashCents)
	}
	if c.Game.TradingIntervalRolls != nil {
		cfg.TradingIntervalRolls = *c.Game.TradingIntervalRolls
	}
	if len(c.Game.BlockSizes) > 0 {
		cfg.BlockSizes = append([]int64(nil), c.Game.BlockSizes...)
	}
	cfg.Seed = c.Game.Seed
	return cfg
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into
// a Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("STOCKTICKER_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("STOCKTICKER_SEED must be an integer: %w", err)
		}
		cfg.Game.Seed = &seed
	}

	return nil
}

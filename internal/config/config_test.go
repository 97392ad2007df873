package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stockticker.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

// clearEnv removes any overrides that might interfere with the test run.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATA_DIR", "SQLITE_PATH", "LOG_LEVEL", "STOCKTICKER_SEED"} {
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
game:
  starting_cash_cents: 1000000
  trading_interval_rolls: 3
  block_sizes: [100, 200]
  seed: 42
storage:
  data_dir: "/tmp/stockticker/data"
  sqlite_path: "/tmp/stockticker/stockticker.db"
logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Game --
	if cfg.Game.StartingCashCents != 1000000 {
		t.Errorf("Game.StartingCashCents = %d, want %d", cfg.Game.StartingCashCents, 1000000)
	}
	if cfg.Game.TradingIntervalRolls == nil || *cfg.Game.TradingIntervalRolls != 3 {
		t.Errorf("Game.TradingIntervalRolls = %v, want 3", cfg.Game.TradingIntervalRolls)
	}
	if len(cfg.Game.BlockSizes) != 2 || cfg.Game.BlockSizes[0] != 100 {
		t.Errorf("Game.BlockSizes = %v, want [100 200]", cfg.Game.BlockSizes)
	}
	if cfg.Game.Seed == nil || *cfg.Game.Seed != 42 {
		t.Errorf("Game.Seed = %v, want 42", cfg.Game.Seed)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/stockticker/data" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Storage.SQLitePath != "/tmp/stockticker/stockticker.db" {
		t.Errorf("Storage.SQLitePath = %q", cfg.Storage.SQLitePath)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
storage:
  data_dir: "/original/data"
  sqlite_path: "/original/db"
logging:
  level: "info"
`)

	t.Setenv("DATA_DIR", "/env/data")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STOCKTICKER_SEED", "1234")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want env override", cfg.Storage.DataDir)
	}
	// sqlite_path should remain from YAML since no env override was set.
	if cfg.Storage.SQLitePath != "/original/db" {
		t.Errorf("Storage.SQLitePath = %q, want value from YAML", cfg.Storage.SQLitePath)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want env override", cfg.Logging.Level)
	}
	if cfg.Game.Seed == nil || *cfg.Game.Seed != 1234 {
		t.Errorf("Game.Seed = %v, want 1234 from STOCKTICKER_SEED", cfg.Game.Seed)
	}
}

func TestLoadRejectsBadSeedEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "logging:\n  level: info\n")

	t.Setenv("STOCKTICKER_SEED", "not-a-number")

	if _, err := Load(path); err == nil {
		t.Error("Load should reject a non-integer STOCKTICKER_SEED")
	}
}

func TestGameConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	gameCfg := cfg.GameConfig()

	if gameCfg.StartingCash != 500000 {
		t.Errorf("StartingCash = %d, want 500000", gameCfg.StartingCash)
	}
	if gameCfg.TradingIntervalRolls != 1 {
		t.Errorf("TradingIntervalRolls = %d, want 1", gameCfg.TradingIntervalRolls)
	}
	if len(gameCfg.BlockSizes) != 4 {
		t.Errorf("BlockSizes = %v, want 4 defaults", gameCfg.BlockSizes)
	}
	if gameCfg.Seed != nil {
		t.Errorf("Seed = %v, want nil", gameCfg.Seed)
	}
}

func TestGameConfigExplicitZeroInterval(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "game:\n  trading_interval_rolls: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// An explicit zero disables automatic reopening rather than falling
	// back to the default cadence.
	if got := cfg.GameConfig().TradingIntervalRolls; got != 0 {
		t.Errorf("TradingIntervalRolls = %d, want 0", got)
	}
}

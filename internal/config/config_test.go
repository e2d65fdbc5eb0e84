package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.DBPath != "workouts.db" || cfg.Addr != ":3000" {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.HeatmapDays != 365 || cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("WORKOUT_DB_PATH", "data/custom.db")
	t.Setenv("WORKOUT_ADDR", "127.0.0.1:8080")
	t.Setenv("WORKOUT_HEATMAP_DAYS", "5000")
	t.Setenv("WORKOUT_LOG_LEVEL", "DEBUG")
	t.Setenv("WORKOUT_LOG_FORMAT", "json")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.DBPath != "data/custom.db" || cfg.Addr != "127.0.0.1:8080" {
		t.Fatalf("unexpected storage overrides: %+v", cfg)
	}
	if cfg.HeatmapDays != 730 {
		t.Fatalf("heatmap days must clamp, got %d", cfg.HeatmapDays)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected log overrides: %+v", cfg)
	}
}

func TestRuntimeConfigLegacyEnv(t *testing.T) {
	t.Setenv("WORKOUT_DB_PATH", "")
	t.Setenv("WORKOUT_ADDR", "")
	t.Setenv("DB_PATH", "legacy.db")
	t.Setenv("PORT", "4000")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.DBPath != "legacy.db" || cfg.Addr != ":4000" {
		t.Fatalf("unexpected legacy overrides: %+v", cfg)
	}
}

func TestLoadLayersFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workout.yaml")
	body := "db_path: from-file.db\nheatmap_days: 10\nlog_format: json\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WORKOUT_CONFIG", path)
	t.Setenv("WORKOUT_LOG_FORMAT", "text")
	t.Setenv("WORKOUT_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("WORKOUT_DB_PATH", "")
	t.Setenv("DB_PATH", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "from-file.db" || cfg.HeatmapDays != 30 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("env must win over file: %+v", cfg)
	}
	if cfg.Addr != ":3000" {
		t.Fatalf("unset keys must keep defaults: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

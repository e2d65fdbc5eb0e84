package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grantcko/workout-heatmap/internal/heatmap"
)

type RuntimeConfig struct {
	DBPath      string `yaml:"db_path"`
	Addr        string `yaml:"addr"`
	HeatmapDays int    `yaml:"heatmap_days"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DBPath:      "workouts.db",
		Addr:        ":3000",
		HeatmapDays: heatmap.DefaultDays,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load layers the optional YAML file named by WORKOUT_CONFIG (or path, when
// set) and then the environment over the defaults.
func Load(path string) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("WORKOUT_CONFIG"))
	}
	if path != "" {
		fromFile, err := RuntimeConfigFromFile(cfg, path)
		if err != nil {
			return RuntimeConfig{}, err
		}
		cfg = fromFile
	}
	return RuntimeConfigFromEnv(cfg), nil
}

// RuntimeConfigFromFile overlays keys present in the YAML file at path.
func RuntimeConfigFromFile(base RuntimeConfig, path string) (RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := base
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.HeatmapDays = heatmap.ClampDays(cfg.HeatmapDays)
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("WORKOUT_DB_PATH"); ok {
		cfg.DBPath = v
	} else if v, ok := getEnvString("DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("WORKOUT_ADDR"); ok {
		cfg.Addr = v
	} else if v, ok := getEnvInt("PORT"); ok && v > 0 {
		cfg.Addr = ":" + strconv.Itoa(v)
	}
	if v, ok := getEnvInt("WORKOUT_HEATMAP_DAYS"); ok && v > 0 {
		cfg.HeatmapDays = heatmap.ClampDays(v)
	}
	if v, ok := getEnvString("WORKOUT_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnvString("WORKOUT_LOG_FORMAT"); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	return cfg
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

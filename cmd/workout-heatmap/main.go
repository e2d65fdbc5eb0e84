package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/grantcko/workout-heatmap/internal/config"
	"github.com/grantcko/workout-heatmap/internal/heatmap"
	"github.com/grantcko/workout-heatmap/internal/logging"
	"github.com/grantcko/workout-heatmap/internal/planner"
	"github.com/grantcko/workout-heatmap/internal/reconcile"
	"github.com/grantcko/workout-heatmap/internal/storage"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "workout-heatmap",
		Short:         "Track daily workout and mobility checklists as a contribution heatmap",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "YAML config file (default $WORKOUT_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text|json")

	rootCmd.AddCommand(newServeCmd(), newTUICmd(), newPlanCmd(), newToggleCmd(), newLogCmd(), newHeatmapCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "workout-heatmap: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers CLI flags over file and environment config.
func loadConfig(cmd *cobra.Command) (config.RuntimeConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.RuntimeConfig{}, err
	}
	overrides := map[string]*string{
		"db":         &cfg.DBPath,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
		"addr":       &cfg.Addr,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	if f := cmd.Flags().Lookup("days"); f != nil && f.Changed {
		days, err := cmd.Flags().GetInt("days")
		if err != nil {
			return config.RuntimeConfig{}, err
		}
		cfg.HeatmapDays = heatmap.ClampDays(days)
	}
	return cfg, nil
}

type app struct {
	cfg        config.RuntimeConfig
	logger     *slog.Logger
	repo       *storage.SQLiteRepository
	reconciler *reconcile.Reconciler
	reader     *heatmap.Reader
}

// openApp opens the store and wires the services. Logs go to logOut.
func openApp(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}, logOut)

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	resolver := planner.NewResolver(logging.Component(logger, "planner"))
	rec := reconcile.New(repo, resolver, reconcile.WithLogger(logging.Component(logger, "reconcile")))
	reader := heatmap.NewReader(repo, logging.Component(logger, "heatmap"))
	return &app{cfg: cfg, logger: logger, repo: repo, reconciler: rec, reader: reader}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}

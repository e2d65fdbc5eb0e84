package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/grantcko/workout-heatmap/internal/api"
	"github.com/grantcko/workout-heatmap/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (default $WORKOUT_ADDR or :3000)")
	cmd.Flags().Int("days", 0, "Default heatmap window in days")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := &api.Deps{
		Reconciler:  a.reconciler,
		Heatmap:     a.reader,
		Logger:      logging.Component(a.logger, "api"),
		HeatmapDays: a.cfg.HeatmapDays,
	}
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           deps.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", srv.Addr, "db", a.cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

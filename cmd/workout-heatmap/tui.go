package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/update"
)

func newTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal checklist and heatmap",
		RunE:  runTUI,
	}
	cmd.Flags().String("channel", "workout", "Starting channel: workout|mobility")
	cmd.Flags().Int("days", 0, "Heatmap window in days")
	cmd.Flags().String("log-file", "", "Write logs to this file instead of discarding them")
	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ch, err := channelFlag(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs only go to an explicit file.
	var logOut io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	a, err := openApp(cmd, logOut)
	if err != nil {
		return err
	}
	defer a.Close()

	m := update.NewModel(update.Services{Reconciler: a.reconciler, Reader: a.reader}, update.Options{
		HeatmapDays: a.cfg.HeatmapDays,
		Channel:     ch,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func channelFlag(cmd *cobra.Command) (model.Channel, error) {
	raw, _ := cmd.Flags().GetString("channel")
	return model.ParseChannel(raw)
}

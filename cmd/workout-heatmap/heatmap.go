package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/views"
)

func newHeatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Print the intensity heatmap ending today",
		RunE:  runHeatmap,
	}
	cmd.Flags().String("channel", "workout", "Channel: workout|mobility")
	cmd.Flags().Int("days", 0, "Window length in days (30..730)")
	cmd.Flags().Bool("details", false, "Attach completed items per day (JSON only)")
	cmd.Flags().Bool("json", false, "Print the API JSON shape")
	return cmd
}

func runHeatmap(cmd *cobra.Command, _ []string) error {
	ch, err := channelFlag(cmd)
	if err != nil {
		return err
	}
	details, _ := cmd.Flags().GetBool("details")
	asJSON, _ := cmd.Flags().GetBool("json")
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	end := time.Now().Format(model.DateLayout)
	h, err := a.reader.Window(cmd.Context(), ch, end, a.cfg.HeatmapDays, details && asJSON)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	}

	data, err := views.NewHeatmapPanelData(h, end)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, views.RenderHeatmapPanel(data))
	return nil
}

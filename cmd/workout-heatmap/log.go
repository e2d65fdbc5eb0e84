package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <intensity>",
		Short: "Record a day total (0-4) without a checklist",
		Args:  cobra.ExactArgs(1),
		RunE:  runLog,
	}
	cmd.Flags().String("channel", "workout", "Channel: workout|mobility")
	cmd.Flags().String("date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().String("note", "", "Free-form note stored with the entry")
	return cmd
}

func runLog(cmd *cobra.Command, args []string) error {
	ch, err := channelFlag(cmd)
	if err != nil {
		return err
	}
	intensity, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("intensity must be 0-4, got %q", args[0])
	}
	note, _ := cmd.Flags().GetString("note")
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	date := dateFlag(cmd)
	res, err := a.reconciler.LogAgentTotal(cmd.Context(), ch, date, intensity, note)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: logged %d (entry #%d, total %d, level %d)\n", ch, date, intensity, res.ID, res.Total, res.Level)
	return nil
}

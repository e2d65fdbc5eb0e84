package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <exercise|N>",
		Short: "Mark an exercise of the day's plan done (or not, with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE:  runToggle,
	}
	cmd.Flags().String("channel", "workout", "Channel: workout|mobility")
	cmd.Flags().String("date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().Bool("undo", false, "Clear the completion flag instead of setting it")
	return cmd
}

func runToggle(cmd *cobra.Command, args []string) error {
	ch, err := channelFlag(cmd)
	if err != nil {
		return err
	}
	undo, _ := cmd.Flags().GetBool("undo")
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	date := dateFlag(cmd)
	view, err := a.reconciler.Today(ctx, ch, date)
	if err != nil {
		return err
	}

	key := args[0]
	if n, err := strconv.Atoi(key); err == nil {
		if n < 1 || n > len(view.Plan.Items) {
			return fmt.Errorf("no exercise #%d in the %s plan for %s", n, ch, date)
		}
		key = view.Plan.Items[n-1].Key
	}

	res, err := a.reconciler.SetCompletion(ctx, ch, date, view.Plan.ID, key, !undo)
	if err != nil {
		return err
	}
	state := "done"
	if undo {
		state = "not done"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s is %s (total %d, level %d)\n", ch, date, key, state, res.Total, res.Level)
	if res.AllCompleted {
		fmt.Fprintln(cmd.OutOrStdout(), "plan complete")
	}
	return nil
}

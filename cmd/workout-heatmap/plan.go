package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/grantcko/workout-heatmap/internal/config"
	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/reconcile"
)

func newPlanCmd() *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Author and inspect plans",
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append the plans of a YAML rotation file",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlanImport,
	}

	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Show a day's checklist",
		RunE:  runPlanToday,
	}
	todayCmd.Flags().String("channel", "workout", "Channel: workout|mobility")
	todayCmd.Flags().String("date", "", "Date YYYY-MM-DD (default today)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the rotation of a channel",
		RunE:  runPlanList,
	}
	listCmd.Flags().String("channel", "workout", "Channel: workout|mobility")
	listCmd.Flags().Int("limit", 0, "Show at most this many plans (0 = all)")
	listCmd.Flags().Int("offset", 0, "Skip this many plans")

	setCmd := &cobra.Command{
		Use:   "set <date> <exercise>...",
		Short: "Store a day-specific plan",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runPlanSet,
	}
	setCmd.Flags().String("channel", "workout", "Channel: workout|mobility")
	setCmd.Flags().String("focus", "", "Plan focus")
	setCmd.Flags().Int("difficulty", 0, "Plan difficulty (default per channel)")

	planCmd.AddCommand(importCmd, todayCmd, listCmd, setCmd)
	return planCmd
}

func runPlanImport(cmd *cobra.Command, args []string) error {
	file, err := config.LoadRotationFile(args[0])
	if err != nil {
		return err
	}
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	added := 0
	for _, ch := range model.Channels {
		for i, p := range file.ChannelPlans()[ch] {
			entries, err := p.Entries()
			if err != nil {
				return err
			}
			day := p.Day
			if day == 0 {
				day = i + 1
			}
			if _, err := a.reconciler.AddRotationPlan(cmd.Context(), ch, day, p.Focus, p.Difficulty, entries); err != nil {
				return fmt.Errorf("%s day %d: %w", ch, day, err)
			}
			added++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d plan(s) from %s\n", added, args[0])
	return nil
}

func runPlanToday(cmd *cobra.Command, _ []string) error {
	ch, err := channelFlag(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	date := dateFlag(cmd)
	view, err := a.reconciler.Today(cmd.Context(), ch, date)
	if err != nil {
		return err
	}
	printDay(cmd.OutOrStdout(), view)
	return nil
}

func runPlanList(cmd *cobra.Command, _ []string) error {
	ch, err := channelFlag(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	plans, err := a.reconciler.Rotation(cmd.Context(), ch, limit, offset)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(plans) == 0 && offset > 0 {
		fmt.Fprintf(out, "no %s plans past offset %d\n", ch, offset)
		return nil
	}
	if len(plans) == 0 {
		fmt.Fprintf(out, "no %s rotation; the default plan is used\n", ch)
		return nil
	}
	for _, p := range plans {
		entries, err := model.DecodeEntries([]byte(p.ItemsJSON))
		if err != nil {
			entries = nil
		}
		done := ""
		if p.CompletedAt != nil {
			done = " (completed " + p.CompletedAt.Local().Format(model.DateLayout) + ")"
		}
		fmt.Fprintf(out, "#%d day %d %s: %d exercise(s)%s\n", p.ID, p.DayNumber, p.Focus, len(entries), done)
	}
	return nil
}

func runPlanSet(cmd *cobra.Command, args []string) error {
	ch, err := channelFlag(cmd)
	if err != nil {
		return err
	}
	focus, _ := cmd.Flags().GetString("focus")
	difficulty, _ := cmd.Flags().GetInt("difficulty")
	entries := make([]model.RawEntry, 0, len(args)-1)
	for _, label := range args[1:] {
		entries = append(entries, model.PlainLabel(label))
	}

	a, err := openApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := a.reconciler.SetDayPlan(cmd.Context(), ch, args[0], focus, difficulty, entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s plan for %s: %s, %d exercise(s)\n", ch, args[0], plan.Focus, len(plan.Items))
	return nil
}

func dateFlag(cmd *cobra.Command) string {
	raw, _ := cmd.Flags().GetString("date")
	return model.ResolveDate(raw, time.Now())
}

func printDay(w io.Writer, view reconcile.DayView) {
	plan := view.Plan
	fmt.Fprintf(w, "%s %s: %s (difficulty %d)\n", view.Channel, view.Date, plan.Focus, plan.Difficulty)
	done := make(map[string]bool, len(view.Logs))
	for _, entry := range view.Logs {
		done[entry.Exercise] = entry.Completed
	}
	for i, item := range plan.Items {
		box := "[ ]"
		if done[item.Key] {
			box = "[x]"
		}
		line := item.Label
		if item.Detail != "" {
			line += " (" + item.Detail + ")"
		}
		fmt.Fprintf(w, "%2d. %s %s\n", i+1, box, line)
	}
	if len(plan.Items) == 0 {
		fmt.Fprintln(w, "(no exercises)")
	}
	fmt.Fprintf(w, "total %d, level %d\n", view.Total, view.Level)
}

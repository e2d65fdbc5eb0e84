package planner

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/storage"
)

var testNow = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "planner-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newResolver() *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func addPlan(t *testing.T, repo *storage.SQLiteRepository, ch model.Channel, day int, focus string, items ...string) int64 {
	t.Helper()
	entries := make([]model.RawEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, model.PlainLabel(item))
	}
	plan, err := newResolver().AddRotationPlan(context.Background(), repo, ch, day, focus, 3, entries, testNow)
	if err != nil {
		t.Fatalf("add plan: %v", err)
	}
	return plan.ID
}

func logRow(t *testing.T, repo *storage.SQLiteRepository, date string, planID int64, key string) {
	t.Helper()
	if err := repo.UpsertCompletionLog(context.Background(), storage.CompletionLog{
		Date: date, Channel: "workout", PlanID: planID, ExerciseKey: key, Completed: true, UpdatedAt: testNow,
	}); err != nil {
		t.Fatalf("log row: %v", err)
	}
}

func TestResolveFallsBackToDefaultPlan(t *testing.T) {
	repo := setupRepo(t)
	plan, err := newResolver().Resolve(context.Background(), repo, model.ChannelWorkout, "2026-02-09")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if plan.ID != 0 || plan.Focus != "full body" || len(plan.Items) != 3 {
		t.Fatalf("expected default plan, got %#v", plan)
	}
}

func TestResolveStartsRotationAndAdvances(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	r := newResolver()
	first := addPlan(t, repo, model.ChannelWorkout, 1, "push", "bench")
	second := addPlan(t, repo, model.ChannelWorkout, 2, "pull", "rows")

	plan, err := r.Resolve(ctx, repo, model.ChannelWorkout, "2026-02-09")
	if err != nil || plan.ID != first {
		t.Fatalf("expected first plan, got %#v %v", plan, err)
	}

	logRow(t, repo, "2026-02-09", first, "bench")
	plan, err = r.Resolve(ctx, repo, model.ChannelWorkout, "2026-02-10")
	if err != nil || plan.ID != second {
		t.Fatalf("expected second plan, got %#v %v", plan, err)
	}

	logRow(t, repo, "2026-02-10", second, "rows")
	plan, err = r.Resolve(ctx, repo, model.ChannelWorkout, "2026-02-12")
	if err != nil || plan.ID != first {
		t.Fatalf("expected rotation to wrap, got %#v %v", plan, err)
	}

	plan, err = r.Resolve(ctx, repo, model.ChannelWorkout, "2026-02-09")
	if err != nil || plan.ID != first {
		t.Fatalf("expected committed plan to stick, got %#v %v", plan, err)
	}
}

func TestResolveMissingPlanDegradesToFirst(t *testing.T) {
	repo := setupRepo(t)
	first := addPlan(t, repo, model.ChannelWorkout, 1, "push", "bench")
	logRow(t, repo, "2026-02-08", 999, "ghost")
	logRow(t, repo, "2026-02-09", 998, "ghost")

	r := newResolver()
	plan, err := r.Resolve(context.Background(), repo, model.ChannelWorkout, "2026-02-09")
	if err != nil || plan.ID != first {
		t.Fatalf("expected first plan for missing id, got %#v %v", plan, err)
	}
	plan, err = r.Resolve(context.Background(), repo, model.ChannelWorkout, "2026-02-10")
	if err != nil || plan.ID != first {
		t.Fatalf("expected first plan after missing id, got %#v %v", plan, err)
	}
}

func TestResolveOverrideWinsAndClearsOldPlanRows(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	r := newResolver()
	first := addPlan(t, repo, model.ChannelWorkout, 1, "push", "bench")
	logRow(t, repo, "2026-02-09", first, "bench")

	if _, err := r.SaveOverride(ctx, repo, model.ChannelWorkout, "2026-02-09", "", 0, []model.RawEntry{model.PlainLabel("yoga flow")}, testNow); err != nil {
		t.Fatalf("save override: %v", err)
	}

	plan, err := r.Resolve(ctx, repo, model.ChannelWorkout, "2026-02-09")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !plan.Override || plan.ID != 0 || plan.Focus != "custom" || plan.Difficulty != 3 {
		t.Fatalf("expected override plan, got %#v", plan)
	}
	if err := r.Materialize(ctx, repo, plan, "2026-02-09", testNow); err != nil {
		t.Fatalf("materialize: %v", err)
	}

	old, err := repo.ListCompletionLog(ctx, storage.CompletionLogKey{Date: "2026-02-09", Channel: "workout", PlanID: first})
	if err != nil || len(old) != 0 {
		t.Fatalf("old plan rows survived: %#v %v", old, err)
	}
	rows, err := repo.ListCompletionLog(ctx, storage.CompletionLogKey{Date: "2026-02-09", Channel: "workout", PlanID: 0})
	if err != nil || len(rows) != 1 || rows[0].ExerciseKey != "yoga flow" || rows[0].Completed {
		t.Fatalf("unexpected override rows: %#v %v", rows, err)
	}
}

func TestMaterializePrunesAndSeeds(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	r := newResolver()
	id := addPlan(t, repo, model.ChannelWorkout, 1, "push", "bench", "dips")
	logRow(t, repo, "2026-02-09", id, "bench")
	logRow(t, repo, "2026-02-09", id, "removed exercise")

	plan, err := r.Resolve(ctx, repo, model.ChannelWorkout, "2026-02-09")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := r.Materialize(ctx, repo, plan, "2026-02-09", testNow); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if err := r.Materialize(ctx, repo, plan, "2026-02-09", testNow.Add(time.Hour)); err != nil {
		t.Fatalf("second materialize: %v", err)
	}

	rows, err := repo.ListCompletionLog(ctx, storage.CompletionLogKey{Date: "2026-02-09", Channel: "workout", PlanID: id})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].ExerciseKey != "bench" || !rows[0].Completed || rows[1].ExerciseKey != "dips" || rows[1].Completed {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestMalformedItemsResolveAsEmpty(t *testing.T) {
	repo := setupRepo(t)
	if _, err := repo.CreatePlan(context.Background(), storage.RotationPlan{
		Channel: "workout", DayNumber: 1, Focus: "broken", ItemsJSON: `[{"name":`, CreatedAt: testNow,
	}); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	plan, err := newResolver().Resolve(context.Background(), repo, model.ChannelWorkout, "2026-02-09")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if plan.Focus != "broken" || len(plan.Items) != 0 {
		t.Fatalf("expected empty plan, got %#v", plan)
	}
}

func TestPlanForLogMissingPlanHasNoItems(t *testing.T) {
	repo := setupRepo(t)
	plan, err := newResolver().PlanForLog(context.Background(), repo, model.ChannelWorkout, "2026-02-09", 42)
	if err != nil {
		t.Fatalf("plan for log: %v", err)
	}
	if plan.ID != 42 || len(plan.Items) != 0 {
		t.Fatalf("unexpected plan: %#v", plan)
	}
}

func TestRecoveryRotationPlanDefaultsToZeroIntensity(t *testing.T) {
	repo := setupRepo(t)
	addPlan(t, repo, model.ChannelWorkout, 1, "Active Recovery", "walk")
	plan, err := newResolver().Resolve(context.Background(), repo, model.ChannelWorkout, "2026-02-09")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(plan.Items) != 1 || plan.Items[0].Intensity != 0 {
		t.Fatalf("expected zero intensity item, got %#v", plan.Items)
	}
}

func TestResolveRejectsInvalidDate(t *testing.T) {
	repo := setupRepo(t)
	if _, err := newResolver().Resolve(context.Background(), repo, model.ChannelWorkout, "02/09/2026"); !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

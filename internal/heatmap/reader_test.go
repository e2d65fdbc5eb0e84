package heatmap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/storage"
)

var testNow = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "heatmap-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func seedDay(t *testing.T, repo *storage.SQLiteRepository, date, channel string, total int, snapshot string) {
	t.Helper()
	ctx := context.Background()
	if err := repo.UpsertDayIntensity(ctx, storage.DayIntensity{Date: date, Channel: channel, Total: total, UpdatedAt: testNow}); err != nil {
		t.Fatalf("seed total: %v", err)
	}
	if snapshot == "" {
		return
	}
	if err := repo.UpsertSnapshot(ctx, storage.Snapshot{Date: date, Channel: channel, ItemsJSON: snapshot, UpdatedAt: testNow}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func TestClampDays(t *testing.T) {
	cases := map[int]int{0: 30, -5: 30, 10: 30, 30: 30, 90: 90, 730: 730, 5000: 730}
	for in, want := range cases {
		if got := ClampDays(in); got != want {
			t.Fatalf("ClampDays(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestWindowReadsLevels(t *testing.T) {
	repo := setupRepo(t)
	seedDay(t, repo, "2026-02-01", "workout", 3, "")
	seedDay(t, repo, "2026-02-05", "workout", 12, "")
	seedDay(t, repo, "2025-12-01", "workout", 9, "")
	seedDay(t, repo, "2026-02-05", "mobility", 2, "")

	h, err := NewReader(repo, nil).Window(context.Background(), model.ChannelWorkout, "2026-02-09", 30, false)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if h.Start != "2026-01-11" || h.End != "2026-02-09" || h.Days != 30 {
		t.Fatalf("unexpected window bounds: %#v", h)
	}
	if len(h.Data) != 2 || h.Data[0].Level != 1 || h.Data[1].Total != 12 || h.Data[1].Level != 4 {
		t.Fatalf("unexpected data: %#v", h.Data)
	}
	if h.Details != nil {
		t.Fatalf("details must be omitted: %#v", h.Details)
	}
}

func TestRangeDetailsCoverBothChannels(t *testing.T) {
	repo := setupRepo(t)
	seedDay(t, repo, "2026-02-03", "workout", 4, `[{"exercise":"rows","completed":true}]`)
	seedDay(t, repo, "2026-02-03", "mobility", 1, `["hip openers"]`)
	seedDay(t, repo, "2026-02-04", "workout", 2, `[{"exercise":"completed via api","completed":true}]`)
	seedDay(t, repo, "2026-02-05", "mobility", 2, `[{"exercise":"mobility completed via api","completed":true}]`)

	h, err := NewReader(repo, nil).Range(context.Background(), model.ChannelWorkout, "2026-02-01", "2026-02-09", true)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(h.Data) != 2 || h.Data[1].Date != "2026-02-04" || h.Data[1].Total != 2 {
		t.Fatalf("placeholder days must still count: %#v", h.Data)
	}
	if len(h.Details) != 1 {
		t.Fatalf("placeholder snapshots must be suppressed: %#v", h.Details)
	}
	detail := h.Details["2026-02-03"]
	if len(detail.Workout) != 1 || detail.Workout[0].Exercise != "rows" {
		t.Fatalf("unexpected workout detail: %#v", detail)
	}
	if len(detail.Mobility) != 1 || detail.Mobility[0].Exercise != "hip openers" {
		t.Fatalf("unexpected mobility detail: %#v", detail)
	}
}

func TestRangeRejectsBadInput(t *testing.T) {
	r := NewReader(setupRepo(t), nil)
	ctx := context.Background()
	if _, err := r.Range(ctx, model.Channel("cardio"), "2026-02-01", "2026-02-09", false); !model.IsValidation(err) {
		t.Fatalf("expected validation error for channel, got %v", err)
	}
	if _, err := r.Range(ctx, model.ChannelWorkout, "2026-02-10", "2026-02-09", false); !model.IsValidation(err) {
		t.Fatalf("expected validation error for reversed range, got %v", err)
	}
}

func TestGridPadsWeeks(t *testing.T) {
	h := Heatmap{
		Start: "2026-02-03",
		End:   "2026-02-10",
		Days:  8,
		Data:  []Cell{{Date: "2026-02-05", Total: 6, Level: 2}},
	}
	weeks, err := Grid(h)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	// 2026-02-03 is a Tuesday.
	if weeks[0][0].Date != "" || weeks[0][1].Date != "" || weeks[0][2].Date != "2026-02-03" {
		t.Fatalf("unexpected first week: %#v", weeks[0])
	}
	if weeks[0][4].Level != 2 {
		t.Fatalf("stored cell not placed: %#v", weeks[0][4])
	}
	if weeks[1][2].Date != "2026-02-10" || weeks[1][3].Date != "" {
		t.Fatalf("unexpected second week: %#v", weeks[1])
	}
}

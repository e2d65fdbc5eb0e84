package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecoveryFocusZeroesDefaultIntensity(t *testing.T) {
	for _, focus := range []string{"Mobility flow", "active RECOVERY", "Yoga", "rest day", "hip stretch"} {
		if got := DefaultIntensityForFocus(focus); got != 0 {
			t.Fatalf("focus %q default = %d, want 0", focus, got)
		}
	}
	if got := DefaultIntensityForFocus("upper body"); got != 1 {
		t.Fatalf("upper body default = %d, want 1", got)
	}
}

func TestDefaultPlans(t *testing.T) {
	workout := DefaultPlan(ChannelWorkout)
	if workout.ID != 0 || workout.Focus != "full body" || len(workout.Items) != 3 || workout.Difficulty != 3 {
		t.Fatalf("unexpected workout default: %#v", workout)
	}
	if workout.Items[0].Intensity != 1 {
		t.Fatalf("workout default intensity = %d", workout.Items[0].Intensity)
	}
	mobility := DefaultPlan(ChannelMobility)
	if len(mobility.Items) != 4 || mobility.Items[0].Intensity != 0 || mobility.Difficulty != 1 {
		t.Fatalf("unexpected mobility default: %#v", mobility)
	}
}

func TestParseChannel(t *testing.T) {
	if ch, err := ParseChannel(""); err != nil || ch != ChannelWorkout {
		t.Fatalf("empty channel: %v %v", ch, err)
	}
	if ch, err := ParseChannel("Mobility"); err != nil || ch != ChannelMobility {
		t.Fatalf("mobility channel: %v %v", ch, err)
	}
	if _, err := ParseChannel("cardio"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2026-02-09"); err != nil {
		t.Fatalf("valid date rejected: %v", err)
	}
	for _, bad := range []string{"", "2026-2-9", "2026-02-30", "yesterday"} {
		if err := ValidateDate(bad); !IsValidation(err) {
			t.Fatalf("date %q: expected validation error, got %v", bad, err)
		}
	}
}

func TestResolveDateFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 2, 9, 23, 30, 0, 0, time.Local)
	if got := ResolveDate("bad", now); got != "2026-02-09" {
		t.Fatalf("ResolveDate fallback = %q", got)
	}
	if got := ResolveDate("2025-12-31", now); got != "2025-12-31" {
		t.Fatalf("ResolveDate kept = %q", got)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2026-03-01", -1)
	if err != nil || got != "2026-02-28" {
		t.Fatalf("AddDays = %q %v", got, err)
	}
}

func TestChecklistItemDecoding(t *testing.T) {
	var items []ChecklistItem
	raw := `["deadlift", {"name":"lunges","intensity":3,"completed":true,"extra":"x"}, {"completed":true}]`
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	items = SanitizeChecklist(items)
	if len(items) != 2 {
		t.Fatalf("expected unlabeled item dropped, got %#v", items)
	}
	if items[0].Exercise != "deadlift" || items[0].Completed {
		t.Fatalf("unexpected string item: %#v", items[0])
	}
	if items[1].Exercise != "lunges" || items[1].Intensity != "3" || !items[1].Completed {
		t.Fatalf("unexpected record item: %#v", items[1])
	}
}

func TestSnapshotHelpers(t *testing.T) {
	entries := []LogEntry{{Exercise: "a", Completed: true}, {Exercise: "b"}, {Exercise: "c", Completed: true}}
	snap := CompletedSnapshot(entries)
	if len(snap) != 2 || snap[0].Exercise != "a" || snap[1].Exercise != "c" {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
	text, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}
	decoded := DecodeSnapshot([]byte(text))
	if len(decoded) != 2 || decoded[1].Exercise != "c" || !decoded[1].Completed {
		t.Fatalf("unexpected decoded snapshot: %#v", decoded)
	}
	legacy := DecodeSnapshot([]byte(`["deadlift", {"title":"rows"}, {"completed":true}]`))
	if len(legacy) != 2 || legacy[0].Exercise != "deadlift" || legacy[1].Exercise != "rows" {
		t.Fatalf("unexpected legacy snapshot: %#v", legacy)
	}
}

func TestIsPlaceholderSnapshot(t *testing.T) {
	placeholder := []CompletedItem{{Exercise: "completed via api", Completed: true}}
	if !IsPlaceholderSnapshot(placeholder, ChannelWorkout) {
		t.Fatal("expected workout placeholder")
	}
	if IsPlaceholderSnapshot(placeholder, ChannelMobility) {
		t.Fatal("workout sentinel is not a mobility placeholder")
	}
	if IsPlaceholderSnapshot([]CompletedItem{{Exercise: "real", Completed: true}}, ChannelWorkout) {
		t.Fatal("real item treated as placeholder")
	}
}

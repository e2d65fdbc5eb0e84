package model

import "testing"

func TestMapIntensityToLevelThresholds(t *testing.T) {
	cases := map[int]int{-3: 0, 0: 0, 1: 1, 4: 1, 5: 2, 7: 2, 8: 3, 10: 3, 11: 4, 400: 4}
	for total, want := range cases {
		if got := MapIntensityToLevel(total); got != want {
			t.Fatalf("MapIntensityToLevel(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestMapIntensityToLevelMonotonic(t *testing.T) {
	prev := 0
	for total := 0; total <= 50; total++ {
		level := MapIntensityToLevel(total)
		if level < prev {
			t.Fatalf("level dropped at %d: %d < %d", total, level, prev)
		}
		prev = level
	}
}

func TestClampNeverNegative(t *testing.T) {
	if got := ClampIntensity(-5); got != 0 {
		t.Fatalf("ClampIntensity(-5) = %d", got)
	}
	if got := ParseIntensity("-2", 1); got != 0 {
		t.Fatalf("ParseIntensity(-2) = %d", got)
	}
	if got := ParseIntensity("abc", 7); got != 7 {
		t.Fatalf("ParseIntensity(abc) = %d, want fallback", got)
	}
	if got := ParseIntensity(" 12kg", 1); got != 12 {
		t.Fatalf("ParseIntensity(12kg) = %d", got)
	}
	if got := ParseIntensity("", 3); got != 3 {
		t.Fatalf("ParseIntensity(empty) = %d", got)
	}
}

func TestAccumulateIntensity(t *testing.T) {
	items := NormalizeExercises(decodeEntries(t, `[{"name":"rows","intensity":4},"plank",{"name":"stretch","intensity":0}]`), 1)
	entries := []LogEntry{
		{Exercise: "rows", Completed: true},
		{Exercise: "plank", Completed: false},
		{Exercise: "stretch", Completed: true},
		{Exercise: "stale", Completed: true},
	}
	if got := AccumulateIntensity(entries, items); got != 5 {
		t.Fatalf("total = %d, want 5", got)
	}
	if got := AccumulateIntensity(nil, items); got != 0 {
		t.Fatalf("empty total = %d", got)
	}
}

func TestAllCompleted(t *testing.T) {
	if AllCompleted(nil) {
		t.Fatal("empty log must not count as all completed")
	}
	if AllCompleted([]LogEntry{{Exercise: "a", Completed: true}, {Exercise: "b"}}) {
		t.Fatal("partial log reported complete")
	}
	if !AllCompleted([]LogEntry{{Exercise: "a", Completed: true}}) {
		t.Fatal("complete log not reported")
	}
}

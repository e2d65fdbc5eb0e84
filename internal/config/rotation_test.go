package config

import (
	"testing"

	"github.com/grantcko/workout-heatmap/internal/model"
)

const rotationYAML = `
workout:
  - day: 1
    focus: push
    difficulty: 4
    exercises:
      - bench press
      - {name: dips, sets: 3, reps: 10, intensity: 2}
  - day: 2
    focus: pull
    exercises:
      - rows
mobility:
  - day: 1
    focus: mobility
    exercises:
      - cat cow
`

func TestParseRotationYAML(t *testing.T) {
	f, err := ParseRotationYAML([]byte(rotationYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(f.Workout) != 2 || len(f.Mobility) != 1 {
		t.Fatalf("unexpected plan counts: %+v", f)
	}
	if f.Workout[0].Difficulty != 4 || f.Workout[0].Focus != "push" {
		t.Fatalf("unexpected first plan: %+v", f.Workout[0])
	}

	entries, err := f.Workout[0].Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	items := model.NormalizeExercises(entries, 1)
	if len(items) != 2 || items[0].Key != "bench press" {
		t.Fatalf("unexpected items: %#v", items)
	}
	if items[1].Key != "dips (3 sets · 10 reps)" || items[1].Intensity != 2 || !items[1].ExplicitIntensity() {
		t.Fatalf("unexpected record item: %#v", items[1])
	}
}

func TestParseRotationYAMLRejectsEmptyPlans(t *testing.T) {
	if _, err := ParseRotationYAML([]byte("workout:\n  - day: 1\n    focus: rest\n")); err == nil {
		t.Fatal("expected error for plan without exercises")
	}
	if _, err := ParseRotationYAML([]byte("  ")); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

package storage

import "time"

type RotationPlan struct {
	ID          int64
	Channel     string
	DayNumber   int
	Focus       string
	Difficulty  int
	ItemsJSON   string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

type OverridePlan struct {
	Date       string
	Channel    string
	Focus      string
	Difficulty int
	ItemsJSON  string
	UpdatedAt  time.Time
}

type CompletionLog struct {
	ID          int64
	Date        string
	Channel     string
	PlanID      int64
	ExerciseKey string
	Completed   bool
	UpdatedAt   time.Time
}

// AgentLog is a day total reported without item detail.
type AgentLog struct {
	ID        int64
	Date      string
	Channel   string
	Intensity int
	Note      string
	CreatedAt time.Time
}

type DayIntensity struct {
	Date      string
	Channel   string
	Total     int
	UpdatedAt time.Time
}

type Snapshot struct {
	Date      string
	Channel   string
	ItemsJSON string
	UpdatedAt time.Time
}

// HeatmapDay is a stored total with the snapshot written alongside it.
type HeatmapDay struct {
	Date         string
	Total        int
	SnapshotJSON string
	HasSnapshot  bool
}

type RotationPlanListFilter struct {
	Channel string
	Limit   int
	Offset  int
}

// CompletionLogKey addresses the rows of one plan on one date.
type CompletionLogKey struct {
	Date    string
	Channel string
	PlanID  int64
}

package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Queries is the row-level contract shared by the repository and its
// transaction scope.
type Queries interface {
	GetPlan(ctx context.Context, channel string, id int64) (RotationPlan, error)
	FirstPlanInRotation(ctx context.Context, channel string) (RotationPlan, error)
	NextPlanAfter(ctx context.Context, channel string, dayNumber int) (RotationPlan, error)
	CreatePlan(ctx context.Context, in RotationPlan) (int64, error)
	ListPlans(ctx context.Context, filter RotationPlanListFilter) ([]RotationPlan, error)
	MarkPlanCompleted(ctx context.Context, channel string, id int64, at time.Time) (bool, error)

	GetOverridePlan(ctx context.Context, date, channel string) (OverridePlan, error)
	UpsertOverridePlan(ctx context.Context, in OverridePlan) error

	LatestPlanIDOn(ctx context.Context, date, channel string) (int64, error)
	LatestPlanIDBefore(ctx context.Context, date, channel string) (string, int64, error)

	UpsertCompletionLog(ctx context.Context, in CompletionLog) error
	InsertCompletionLogIfMissing(ctx context.Context, in CompletionLog) error
	DeleteCompletionLogKeysNotIn(ctx context.Context, key CompletionLogKey, keys []string) (int64, error)
	DeleteCompletionLogOtherPlans(ctx context.Context, key CompletionLogKey) (int64, error)
	DeleteCompletionLogForDate(ctx context.Context, date, channel string) (int64, error)
	ListCompletionLog(ctx context.Context, key CompletionLogKey) ([]CompletionLog, error)
	CountCompletionLog(ctx context.Context, key CompletionLogKey) (total int, completed int, err error)

	InsertAgentLog(ctx context.Context, in AgentLog) (int64, error)
	SumAgentLog(ctx context.Context, date, channel string) (int, error)

	GetDayIntensity(ctx context.Context, date, channel string) (DayIntensity, error)
	UpsertDayIntensity(ctx context.Context, in DayIntensity) error
	DeleteDayIntensity(ctx context.Context, date, channel string) error
	ReadHeatmapRange(ctx context.Context, channel, start, end string) ([]DayIntensity, error)
	ReadHeatmapDetail(ctx context.Context, channel, start, end string) ([]HeatmapDay, error)

	GetSnapshot(ctx context.Context, date, channel string) (Snapshot, error)
	UpsertSnapshot(ctx context.Context, in Snapshot) error
	DeleteSnapshot(ctx context.Context, date, channel string) error
}

type Repository interface {
	Queries
	// WithTx runs fn against a transaction scope. fn's error rolls the
	// transaction back.
	WithTx(ctx context.Context, fn func(q Queries) error) error
	Close() error
}

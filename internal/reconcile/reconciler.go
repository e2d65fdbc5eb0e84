package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/planner"
	"github.com/grantcko/workout-heatmap/internal/storage"
)

// Reconciler owns the completion log and the day totals and snapshots derived
// from it. Every mutation runs as one transaction that ends with a recompute.
type Reconciler struct {
	repo     storage.Repository
	resolver *planner.Resolver
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Reconciler)

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(repo storage.Repository, resolver *planner.Resolver, opts ...Option) *Reconciler {
	r := &Reconciler{
		repo:     repo,
		resolver: resolver,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.resolver == nil {
		r.resolver = planner.NewResolver(r.logger)
	}
	return r
}

// DayView is a channel's plan for a date with its log rows.
type DayView struct {
	Date    string           `json:"date"`
	Channel model.Channel    `json:"channel"`
	Plan    model.Plan       `json:"plan"`
	Logs    []model.LogEntry `json:"logs"`
	Total   int              `json:"total"`
	Level   int              `json:"level"`
}

type CompletionResult struct {
	AllCompleted bool `json:"allCompleted"`
	Total        int  `json:"total"`
	Level        int  `json:"level"`
}

type AgentLogResult struct {
	ID    int64 `json:"id"`
	Total int   `json:"total"`
	Level int   `json:"level"`
}

type ReplaceResult struct {
	Plan     model.Plan            `json:"plan"`
	Total    int                   `json:"total"`
	Level    int                   `json:"level"`
	Snapshot []model.CompletedItem `json:"snapshot"`
}

// Today resolves the plan for date, materializes its log rows and returns
// both.
func (r *Reconciler) Today(ctx context.Context, ch model.Channel, date string) (DayView, error) {
	if err := validate(ch, date); err != nil {
		return DayView{}, err
	}
	var view DayView
	err := r.repo.WithTx(ctx, func(q storage.Queries) error {
		now := r.now()
		plan, err := r.resolver.Resolve(ctx, q, ch, date)
		if err != nil {
			return err
		}
		if err := r.resolver.Materialize(ctx, q, plan, date, now); err != nil {
			return err
		}
		state, err := r.recompute(ctx, q, plan, date, now)
		if err != nil {
			return err
		}
		view = DayView{Date: date, Channel: ch, Plan: plan, Logs: state.logs, Total: state.total, Level: model.MapIntensityToLevel(state.total)}
		return nil
	})
	if err != nil {
		return DayView{}, fmt.Errorf("today %s %s: %w", ch, date, err)
	}
	return view, nil
}

// SetCompletion records one exercise flag for (date, planID). Replaying the
// same call leaves every row as the first call left it.
func (r *Reconciler) SetCompletion(ctx context.Context, ch model.Channel, date string, planID int64, key string, completed bool) (CompletionResult, error) {
	if err := validate(ch, date); err != nil {
		return CompletionResult{}, err
	}
	if planID < 0 {
		return CompletionResult{}, &model.ValidationError{Field: "planId", Message: "plan id must not be negative"}
	}
	if strings.TrimSpace(key) == "" {
		return CompletionResult{}, &model.ValidationError{Field: "exercise", Message: "exercise is required"}
	}

	var result CompletionResult
	err := r.repo.WithTx(ctx, func(q storage.Queries) error {
		now := r.now()
		logKey := storage.CompletionLogKey{Date: date, Channel: string(ch), PlanID: planID}
		if err := q.UpsertCompletionLog(ctx, storage.CompletionLog{
			Date:        date,
			Channel:     string(ch),
			PlanID:      planID,
			ExerciseKey: key,
			Completed:   completed,
			UpdatedAt:   now,
		}); err != nil {
			return fmt.Errorf("upsert completion: %w", err)
		}

		total, done, err := q.CountCompletionLog(ctx, logKey)
		if err != nil {
			return fmt.Errorf("count completion: %w", err)
		}
		result.AllCompleted = total > 0 && total == done
		if result.AllCompleted && planID != 0 {
			stamped, err := q.MarkPlanCompleted(ctx, string(ch), planID, now)
			if err != nil {
				return fmt.Errorf("mark plan completed: %w", err)
			}
			if stamped {
				r.logger.Info("plan completed", "channel", ch, "date", date, "plan_id", planID)
			}
		}

		plan, err := r.resolver.PlanForLog(ctx, q, ch, date, planID)
		if err != nil {
			return err
		}
		state, err := r.recompute(ctx, q, plan, date, now)
		if err != nil {
			return err
		}
		result.Total = state.total
		result.Level = model.MapIntensityToLevel(state.total)
		return nil
	})
	if err != nil {
		return CompletionResult{}, fmt.Errorf("set completion %s %s: %w", ch, date, err)
	}
	r.logger.Debug("completion set", "channel", ch, "date", date, "plan_id", planID, "exercise", key, "completed", completed, "total", result.Total)
	return result, nil
}

// ReplaceChecklist stores items as the date's override plan and rebuilds the
// date's log from the submitted flags.
func (r *Reconciler) ReplaceChecklist(ctx context.Context, ch model.Channel, date, focus string, items []model.ChecklistItem) (ReplaceResult, error) {
	if err := validate(ch, date); err != nil {
		return ReplaceResult{}, err
	}
	items = model.SanitizeChecklist(items)
	entries := make([]model.RawEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, item.Entry())
	}

	var result ReplaceResult
	err := r.repo.WithTx(ctx, func(q storage.Queries) error {
		now := r.now()
		plan, err := r.resolver.SaveOverride(ctx, q, ch, date, focus, 0, entries, now)
		if err != nil {
			return err
		}
		if _, err := q.DeleteCompletionLogForDate(ctx, date, string(ch)); err != nil {
			return fmt.Errorf("clear log: %w", err)
		}
		for i, item := range plan.Items {
			if err := q.UpsertCompletionLog(ctx, storage.CompletionLog{
				Date:        date,
				Channel:     string(ch),
				PlanID:      0,
				ExerciseKey: item.Key,
				Completed:   items[i].Completed,
				UpdatedAt:   now,
			}); err != nil {
				return fmt.Errorf("seed log row %q: %w", item.Key, err)
			}
		}
		state, err := r.recompute(ctx, q, plan, date, now)
		if err != nil {
			return err
		}
		result = ReplaceResult{
			Plan:     plan,
			Total:    state.total,
			Level:    model.MapIntensityToLevel(state.total),
			Snapshot: state.snapshot,
		}
		return nil
	})
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("replace checklist %s %s: %w", ch, date, err)
	}
	r.logger.Debug("checklist replaced", "channel", ch, "date", date, "items", len(items), "total", result.Total)
	return result, nil
}

// SetDayPlan stores an authored plan for date. The log is reconciled on the
// next Today call.
func (r *Reconciler) SetDayPlan(ctx context.Context, ch model.Channel, date, focus string, difficulty int, entries []model.RawEntry) (model.Plan, error) {
	if err := validate(ch, date); err != nil {
		return model.Plan{}, err
	}
	if len(entries) == 0 {
		return model.Plan{}, &model.ValidationError{Field: "exercises", Message: "exercises must be a non-empty array"}
	}
	var plan model.Plan
	err := r.repo.WithTx(ctx, func(q storage.Queries) error {
		var err error
		plan, err = r.resolver.SaveOverride(ctx, q, ch, date, focus, difficulty, entries, r.now())
		return err
	})
	if err != nil {
		return model.Plan{}, fmt.Errorf("set day plan %s %s: %w", ch, date, err)
	}
	return plan, nil
}

// DayPlan returns the authored plan for date, if any.
func (r *Reconciler) DayPlan(ctx context.Context, ch model.Channel, date string) (model.Plan, bool, error) {
	if err := validate(ch, date); err != nil {
		return model.Plan{}, false, err
	}
	return r.resolver.Override(ctx, r.repo, ch, date)
}

// AddRotationPlan appends a plan to the channel's rotation.
func (r *Reconciler) AddRotationPlan(ctx context.Context, ch model.Channel, dayNumber int, focus string, difficulty int, entries []model.RawEntry) (model.Plan, error) {
	if !ch.IsValid() {
		return model.Plan{}, &model.ValidationError{Field: "channel", Message: fmt.Sprintf("unknown channel %q", ch)}
	}
	var plan model.Plan
	err := r.repo.WithTx(ctx, func(q storage.Queries) error {
		var err error
		plan, err = r.resolver.AddRotationPlan(ctx, q, ch, dayNumber, focus, difficulty, entries, r.now())
		return err
	})
	return plan, err
}

// Rotation lists the channel's authored plans in rotation order. A zero
// limit means no limit.
func (r *Reconciler) Rotation(ctx context.Context, ch model.Channel, limit, offset int) ([]storage.RotationPlan, error) {
	return r.repo.ListPlans(ctx, storage.RotationPlanListFilter{Channel: string(ch), Limit: limit, Offset: offset})
}

// LogAgentTotal records intensity for (date, ch) without item detail and
// folds it into the stored day total.
func (r *Reconciler) LogAgentTotal(ctx context.Context, ch model.Channel, date string, intensity int, note string) (AgentLogResult, error) {
	if err := validate(ch, date); err != nil {
		return AgentLogResult{}, err
	}
	if intensity < 0 || intensity > model.MaxAgentIntensity {
		return AgentLogResult{}, &model.ValidationError{Field: "intensity", Message: fmt.Sprintf("intensity must be 0-%d", model.MaxAgentIntensity)}
	}

	var result AgentLogResult
	err := r.repo.WithTx(ctx, func(q storage.Queries) error {
		now := r.now()
		id, err := q.InsertAgentLog(ctx, storage.AgentLog{Date: date, Channel: string(ch), Intensity: intensity, Note: note, CreatedAt: now})
		if err != nil {
			return fmt.Errorf("insert agent log: %w", err)
		}
		plan, err := r.resolver.Resolve(ctx, q, ch, date)
		if err != nil {
			return err
		}
		state, err := r.recompute(ctx, q, plan, date, now)
		if err != nil {
			return err
		}
		result = AgentLogResult{ID: id, Total: state.total, Level: model.MapIntensityToLevel(state.total)}
		return nil
	})
	if err != nil {
		return AgentLogResult{}, fmt.Errorf("log agent total %s %s: %w", ch, date, err)
	}
	r.logger.Info("agent total logged", "channel", ch, "date", date, "intensity", intensity, "total", result.Total)
	return result, nil
}

type dayState struct {
	logs     []model.LogEntry
	total    int
	snapshot []model.CompletedItem
}

// recompute derives the day total and completed snapshot of plan's rows and
// stores them, deleting both when the total is zero.
func (r *Reconciler) recompute(ctx context.Context, q storage.Queries, plan model.Plan, date string, now time.Time) (dayState, error) {
	ch := string(plan.Channel)
	rows, err := q.ListCompletionLog(ctx, storage.CompletionLogKey{Date: date, Channel: ch, PlanID: plan.ID})
	if err != nil {
		return dayState{}, fmt.Errorf("list completion: %w", err)
	}
	logs := make([]model.LogEntry, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, model.LogEntry{Exercise: row.ExerciseKey, Completed: row.Completed})
	}

	agent, err := q.SumAgentLog(ctx, date, ch)
	if err != nil {
		return dayState{}, fmt.Errorf("sum agent log: %w", err)
	}
	state := dayState{
		logs:     logs,
		total:    model.AccumulateIntensity(logs, plan.Items) + agent,
		snapshot: model.CompletedSnapshot(logs),
	}

	if state.total <= 0 {
		if err := q.DeleteDayIntensity(ctx, date, ch); err != nil {
			return dayState{}, fmt.Errorf("delete day intensity: %w", err)
		}
		if err := q.DeleteSnapshot(ctx, date, ch); err != nil {
			return dayState{}, fmt.Errorf("delete snapshot: %w", err)
		}
		return state, nil
	}

	if err := q.UpsertDayIntensity(ctx, storage.DayIntensity{Date: date, Channel: ch, Total: state.total, UpdatedAt: now}); err != nil {
		return dayState{}, fmt.Errorf("store day intensity: %w", err)
	}
	stored := state.snapshot
	if len(stored) == 0 {
		// Only agent totals: the sentinel keeps the total without item detail.
		stored = []model.CompletedItem{{Exercise: plan.Channel.PlaceholderLabel(), Completed: true}}
	}
	itemsJSON, err := model.EncodeSnapshot(stored)
	if err != nil {
		return dayState{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := q.UpsertSnapshot(ctx, storage.Snapshot{Date: date, Channel: ch, ItemsJSON: itemsJSON, UpdatedAt: now}); err != nil {
		return dayState{}, fmt.Errorf("store snapshot: %w", err)
	}
	return state, nil
}

func validate(ch model.Channel, date string) error {
	if !ch.IsValid() {
		return &model.ValidationError{Field: "channel", Message: fmt.Sprintf("unknown channel %q", ch)}
	}
	return model.ValidateDate(date)
}

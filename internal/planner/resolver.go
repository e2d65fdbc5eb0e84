package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/storage"
)

// Resolver picks the plan that applies to a date on one channel and keeps the
// completion log in step with it.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve evaluates, in order: the date's override, the plan already logged
// on the date, the successor of the most recent earlier logged plan, and the
// start of the rotation.
func (r *Resolver) Resolve(ctx context.Context, q storage.Queries, ch model.Channel, date string) (model.Plan, error) {
	if err := model.ValidateDate(date); err != nil {
		return model.Plan{}, err
	}

	if plan, ok, err := r.Override(ctx, q, ch, date); err != nil || ok {
		return plan, err
	}

	id, err := q.LatestPlanIDOn(ctx, date, string(ch))
	switch {
	case err == nil:
		return r.planByIDOrFirst(ctx, q, ch, id)
	case !errors.Is(err, storage.ErrNotFound):
		return model.Plan{}, fmt.Errorf("latest plan on %s: %w", date, err)
	}

	_, prevID, err := q.LatestPlanIDBefore(ctx, date, string(ch))
	switch {
	case err == nil:
		prev, found, lookupErr := r.planByID(ctx, q, ch, prevID)
		if lookupErr != nil {
			return model.Plan{}, lookupErr
		}
		if !found {
			return r.first(ctx, q, ch)
		}
		return r.next(ctx, q, ch, prev.DayNumber)
	case !errors.Is(err, storage.ErrNotFound):
		return model.Plan{}, fmt.Errorf("latest plan before %s: %w", date, err)
	}

	return r.first(ctx, q, ch)
}

// PlanForLog returns the plan whose items give intensities to the log rows
// of (date, planID). A rotation plan that no longer exists yields no items, so
// every completed key counts as 1.
func (r *Resolver) PlanForLog(ctx context.Context, q storage.Queries, ch model.Channel, date string, planID int64) (model.Plan, error) {
	if planID == 0 {
		if plan, ok, err := r.Override(ctx, q, ch, date); err != nil || ok {
			return plan, err
		}
		return model.DefaultPlan(ch), nil
	}
	plan, found, err := r.planByID(ctx, q, ch, planID)
	if err != nil {
		return model.Plan{}, err
	}
	if !found {
		r.logger.Warn("completion log references missing plan", "channel", ch, "date", date, "plan_id", planID)
		return model.Plan{ID: planID, Channel: ch, Difficulty: ch.DefaultDifficulty(), Items: []model.ExerciseItem{}}, nil
	}
	return plan, nil
}

// Materialize aligns the completion log of date with plan: an override drops
// rows owned by any other plan, keys missing from the plan are pruned and
// every plan key gets a row.
func (r *Resolver) Materialize(ctx context.Context, q storage.Queries, plan model.Plan, date string, now time.Time) error {
	key := storage.CompletionLogKey{Date: date, Channel: string(plan.Channel), PlanID: plan.ID}
	if plan.Override {
		removed, err := q.DeleteCompletionLogOtherPlans(ctx, key)
		if err != nil {
			return fmt.Errorf("clear superseded plan rows: %w", err)
		}
		if removed > 0 {
			r.logger.Debug("override superseded logged plan", "date", date, "channel", plan.Channel, "rows", removed)
		}
	}

	keys := plan.Keys()
	removed, err := q.DeleteCompletionLogKeysNotIn(ctx, key, keys)
	if err != nil {
		return fmt.Errorf("prune stale keys: %w", err)
	}
	if removed > 0 {
		r.logger.Debug("pruned stale log rows", "date", date, "channel", plan.Channel, "plan_id", plan.ID, "rows", removed)
	}

	for _, k := range keys {
		if err := q.InsertCompletionLogIfMissing(ctx, storage.CompletionLog{
			Date:        date,
			Channel:     string(plan.Channel),
			PlanID:      plan.ID,
			ExerciseKey: k,
			UpdatedAt:   now,
		}); err != nil {
			return fmt.Errorf("seed log row %q: %w", k, err)
		}
	}
	return nil
}

// Override returns the day-specific plan for date when one is stored.
func (r *Resolver) Override(ctx context.Context, q storage.Queries, ch model.Channel, date string) (model.Plan, bool, error) {
	row, err := q.GetOverridePlan(ctx, date, string(ch))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Plan{}, false, nil
		}
		return model.Plan{}, false, fmt.Errorf("get override plan: %w", err)
	}
	plan := model.NewPlan(ch, 0, 0, row.Focus, row.Difficulty, r.decodeItems(ch, 0, row.ItemsJSON))
	plan.Override = true
	return plan, true, nil
}

func (r *Resolver) planByIDOrFirst(ctx context.Context, q storage.Queries, ch model.Channel, id int64) (model.Plan, error) {
	plan, found, err := r.planByID(ctx, q, ch, id)
	if err != nil {
		return model.Plan{}, err
	}
	if !found {
		return r.first(ctx, q, ch)
	}
	return plan, nil
}

// planByID treats id 0 as the channel's default plan.
func (r *Resolver) planByID(ctx context.Context, q storage.Queries, ch model.Channel, id int64) (model.Plan, bool, error) {
	if id == 0 {
		return model.DefaultPlan(ch), true, nil
	}
	row, err := q.GetPlan(ctx, string(ch), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Plan{}, false, nil
		}
		return model.Plan{}, false, fmt.Errorf("get plan %d: %w", id, err)
	}
	return r.fromRotation(ch, row), true, nil
}

func (r *Resolver) first(ctx context.Context, q storage.Queries, ch model.Channel) (model.Plan, error) {
	row, err := q.FirstPlanInRotation(ctx, string(ch))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.DefaultPlan(ch), nil
		}
		return model.Plan{}, fmt.Errorf("first plan: %w", err)
	}
	return r.fromRotation(ch, row), nil
}

// next advances past dayNumber and wraps to the start of the rotation.
func (r *Resolver) next(ctx context.Context, q storage.Queries, ch model.Channel, dayNumber int) (model.Plan, error) {
	row, err := q.NextPlanAfter(ctx, string(ch), dayNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return r.first(ctx, q, ch)
		}
		return model.Plan{}, fmt.Errorf("next plan after day %d: %w", dayNumber, err)
	}
	return r.fromRotation(ch, row), nil
}

func (r *Resolver) fromRotation(ch model.Channel, row storage.RotationPlan) model.Plan {
	plan := model.NewPlan(ch, row.ID, row.DayNumber, row.Focus, row.Difficulty, r.decodeItems(ch, row.ID, row.ItemsJSON))
	plan.CompletedAt = row.CompletedAt
	return plan
}

func (r *Resolver) decodeItems(ch model.Channel, id int64, itemsJSON string) []model.RawEntry {
	entries, err := model.DecodeEntries([]byte(itemsJSON))
	if err != nil {
		r.logger.Warn("plan items unreadable, using empty list", "channel", ch, "plan_id", id, "error", err)
		return nil
	}
	return entries
}

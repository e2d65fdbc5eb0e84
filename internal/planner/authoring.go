package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/storage"
)

const defaultOverrideFocus = "custom"

// SaveOverride stores entries as the day-specific plan for date, replacing
// any earlier override. The completion log is left alone; the next resolve of
// the date materializes the new plan.
func (r *Resolver) SaveOverride(ctx context.Context, q storage.Queries, ch model.Channel, date, focus string, difficulty int, entries []model.RawEntry, now time.Time) (model.Plan, error) {
	if err := model.ValidateDate(date); err != nil {
		return model.Plan{}, err
	}
	focus = strings.TrimSpace(focus)
	if focus == "" {
		focus = defaultOverrideFocus
	}
	if difficulty <= 0 {
		difficulty = ch.DefaultDifficulty()
	}
	itemsJSON, err := model.EncodeEntries(entries)
	if err != nil {
		return model.Plan{}, fmt.Errorf("encode override items: %w", err)
	}
	if err := q.UpsertOverridePlan(ctx, storage.OverridePlan{
		Date:       date,
		Channel:    string(ch),
		Focus:      focus,
		Difficulty: difficulty,
		ItemsJSON:  itemsJSON,
		UpdatedAt:  now,
	}); err != nil {
		return model.Plan{}, fmt.Errorf("upsert override plan: %w", err)
	}
	r.logger.Debug("override plan saved", "date", date, "channel", ch, "items", len(entries))

	plan := model.NewPlan(ch, 0, 0, focus, difficulty, entries)
	plan.Override = true
	return plan, nil
}

// AddRotationPlan appends an authored plan to the channel's rotation.
func (r *Resolver) AddRotationPlan(ctx context.Context, q storage.Queries, ch model.Channel, dayNumber int, focus string, difficulty int, entries []model.RawEntry, now time.Time) (model.Plan, error) {
	if dayNumber < 0 {
		return model.Plan{}, &model.ValidationError{Field: "dayNumber", Message: "day number must not be negative"}
	}
	itemsJSON, err := model.EncodeEntries(entries)
	if err != nil {
		return model.Plan{}, fmt.Errorf("encode rotation items: %w", err)
	}
	id, err := q.CreatePlan(ctx, storage.RotationPlan{
		Channel:    string(ch),
		DayNumber:  dayNumber,
		Focus:      strings.TrimSpace(focus),
		Difficulty: difficulty,
		ItemsJSON:  itemsJSON,
		CreatedAt:  now,
	})
	if err != nil {
		return model.Plan{}, fmt.Errorf("create rotation plan: %w", err)
	}
	r.logger.Debug("rotation plan added", "channel", ch, "plan_id", id, "day_number", dayNumber)
	return model.NewPlan(ch, id, dayNumber, strings.TrimSpace(focus), difficulty, entries), nil
}

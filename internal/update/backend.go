package update

import (
	"context"

	"github.com/grantcko/workout-heatmap/internal/heatmap"
	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/reconcile"
)

// Services binds the UI to the reconciler and heatmap reader.
type Services struct {
	Reconciler *reconcile.Reconciler
	Reader     *heatmap.Reader
}

func (s Services) Today(ctx context.Context, ch model.Channel, date string) (reconcile.DayView, error) {
	return s.Reconciler.Today(ctx, ch, date)
}

func (s Services) SetCompletion(ctx context.Context, ch model.Channel, date string, planID int64, key string, completed bool) (reconcile.CompletionResult, error) {
	return s.Reconciler.SetCompletion(ctx, ch, date, planID, key, completed)
}

// Heatmap always reads details so the selected day can show both channels.
func (s Services) Heatmap(ctx context.Context, ch model.Channel, end string, days int) (heatmap.Heatmap, error) {
	return s.Reader.Window(ctx, ch, end, days, true)
}

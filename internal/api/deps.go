package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/grantcko/workout-heatmap/internal/heatmap"
	"github.com/grantcko/workout-heatmap/internal/reconcile"
)

// Deps holds all handler dependencies.
type Deps struct {
	Reconciler  *reconcile.Reconciler
	Heatmap     *heatmap.Reader
	Logger      *slog.Logger
	Now         func() time.Time
	HeatmapDays int
}

// Routes registers every endpoint and wraps the mux with request logging.
func (d *Deps) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", d.HandleHealth)

	mux.HandleFunc("GET /api/today-plan", d.HandleTodayPlan)
	mux.HandleFunc("GET /api/today-mobility", d.HandleTodayMobility)
	mux.HandleFunc("POST /api/exercise-log", d.HandleExerciseLog)
	mux.HandleFunc("POST /api/mobility-log", d.HandleMobilityLog)
	mux.HandleFunc("PUT /api/checklist/{channel}", d.HandleReplaceChecklist)
	mux.HandleFunc("POST /api/workouts", d.HandleAgentLog)

	mux.HandleFunc("POST /api/daily-plan", d.HandleSaveDayPlan)
	mux.HandleFunc("GET /api/daily-plan/{date}", d.HandleGetDayPlan)

	mux.HandleFunc("GET /api/heatmap", d.HandleHeatmap)

	return d.logRequests(mux)
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

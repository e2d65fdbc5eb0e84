package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/grantcko/workout-heatmap/internal/heatmap"
	"github.com/grantcko/workout-heatmap/internal/model"
)

const maxBodyBytes = 1 << 20

func (d *Deps) HandleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]bool{"ok": true})
}

// --- today ---

func (d *Deps) HandleTodayPlan(w http.ResponseWriter, r *http.Request) {
	d.today(w, r, model.ChannelWorkout)
}

func (d *Deps) HandleTodayMobility(w http.ResponseWriter, r *http.Request) {
	d.today(w, r, model.ChannelMobility)
}

func (d *Deps) today(w http.ResponseWriter, r *http.Request, ch model.Channel) {
	date := model.ResolveDate(r.URL.Query().Get("date"), d.now())
	view, err := d.Reconciler.Today(r.Context(), ch, date)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	jsonOK(w, view)
}

// --- completion ---

type logRequest struct {
	Date      string          `json:"date"`
	PlanID    json.RawMessage `json:"planId"`
	Exercise  json.RawMessage `json:"exercise"`
	Completed json.RawMessage `json:"completed"`
}

func (d *Deps) HandleExerciseLog(w http.ResponseWriter, r *http.Request) {
	d.setCompletion(w, r, model.ChannelWorkout)
}

func (d *Deps) HandleMobilityLog(w http.ResponseWriter, r *http.Request) {
	d.setCompletion(w, r, model.ChannelMobility)
}

func (d *Deps) setCompletion(w http.ResponseWriter, r *http.Request, ch model.Channel) {
	var req logRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	planID, err := parsePlanID(req.PlanID)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	res, err := d.Reconciler.SetCompletion(r.Context(), ch, req.Date, planID, jsonText(req.Exercise), model.Truthy(req.Completed))
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{
		"ok":           true,
		"allCompleted": res.AllCompleted,
		"total":        res.Total,
		"level":        res.Level,
	})
}

// --- agent log ---

type agentLogRequest struct {
	Date      string          `json:"date"`
	Channel   string          `json:"channel"`
	Intensity json.RawMessage `json:"intensity"`
	Note      json.RawMessage `json:"note"`
}

// HandleAgentLog records a day total reported without a checklist.
func (d *Deps) HandleAgentLog(w http.ResponseWriter, r *http.Request) {
	var req agentLogRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ch, err := model.ParseChannel(req.Channel)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	intensity, err := parseAgentIntensity(req.Intensity)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	note := ""
	if model.Truthy(req.Note) {
		note = jsonText(req.Note)
	}
	res, err := d.Reconciler.LogAgentTotal(r.Context(), ch, req.Date, intensity, note)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{
		"ok":    true,
		"id":    res.ID,
		"total": res.Total,
		"level": res.Level,
	})
}

// --- checklist ---

type checklistRequest struct {
	Date  string                `json:"date"`
	Focus string                `json:"focus"`
	Items []model.ChecklistItem `json:"items"`
}

func (d *Deps) HandleReplaceChecklist(w http.ResponseWriter, r *http.Request) {
	ch, err := model.ParseChannel(r.PathValue("channel"))
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	var req checklistRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := d.Reconciler.ReplaceChecklist(r.Context(), ch, req.Date, req.Focus, req.Items)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{
		"ok":       true,
		"plan":     res.Plan,
		"total":    res.Total,
		"level":    res.Level,
		"snapshot": res.Snapshot,
	})
}

// --- day plans ---

type dayPlanRequest struct {
	Date       string          `json:"date"`
	Channel    string          `json:"channel"`
	Focus      string          `json:"focus"`
	Exercises  json.RawMessage `json:"exercises"`
	Difficulty int             `json:"difficulty"`
}

func (d *Deps) HandleSaveDayPlan(w http.ResponseWriter, r *http.Request) {
	var req dayPlanRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ch, err := model.ParseChannel(req.Channel)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	entries, err := model.DecodeEntries(req.Exercises)
	if err != nil {
		jsonError(w, "exercises must be an array", http.StatusBadRequest)
		return
	}
	plan, err := d.Reconciler.SetDayPlan(r.Context(), ch, req.Date, req.Focus, req.Difficulty, entries)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{
		"ok":            true,
		"date":          req.Date,
		"channel":       ch,
		"exerciseCount": len(plan.Items),
	})
}

type authoredPlan struct {
	Focus      string               `json:"focus"`
	Exercises  []model.ExerciseItem `json:"exercises"`
	Difficulty int                  `json:"difficulty"`
}

func (d *Deps) HandleGetDayPlan(w http.ResponseWriter, r *http.Request) {
	ch, err := model.ParseChannel(r.URL.Query().Get("channel"))
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	date := r.PathValue("date")
	plan, ok, err := d.Reconciler.DayPlan(r.Context(), ch, date)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	resp := map[string]any{
		"date":         date,
		"channel":      ch,
		"plan":         nil,
		"usingDefault": !ok,
	}
	if ok {
		resp["plan"] = authoredPlan{Focus: plan.Focus, Exercises: plan.Items, Difficulty: plan.Difficulty}
	}
	jsonOK(w, resp)
}

// --- heatmap ---

func (d *Deps) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := d.HeatmapDays
	if days == 0 {
		days = heatmap.DefaultDays
	}
	if raw := q.Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			days = n
		}
	}
	ch, err := model.ParseChannel(q.Get("type"))
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	details := q.Get("details")
	withDetails := details == "1" || strings.EqualFold(details, "true")

	end := d.now().Format(model.DateLayout)
	h, err := d.Heatmap.Window(r.Context(), ch, end, heatmap.ClampDays(days), withDetails)
	if err != nil {
		d.writeError(w, r, err)
		return
	}
	jsonOK(w, h)
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeError maps validation failures to 400 and hides everything else.
func (d *Deps) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		jsonError(w, ve.Message, http.StatusBadRequest)
		return
	}
	d.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	jsonError(w, "internal error", http.StatusInternalServerError)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

// parsePlanID accepts a JSON number or numeric string.
func parsePlanID(raw json.RawMessage) (int64, error) {
	text := jsonText(raw)
	if text == "" {
		return 0, &model.ValidationError{Field: "planId", Message: "planId is required"}
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: "planId", Message: "planId must be numeric"}
	}
	return id, nil
}

// parseAgentIntensity accepts a number or numeric string; absent means 0.
// Fractions truncate.
func parseAgentIntensity(raw json.RawMessage) (int, error) {
	text := strings.TrimSpace(jsonText(raw))
	if text == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: "intensity", Message: "intensity must be 0-4"}
	}
	return int(f), nil
}

// jsonText renders a scalar as text; strings lose their quotes.
func jsonText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}

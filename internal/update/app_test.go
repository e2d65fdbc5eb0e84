package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grantcko/workout-heatmap/internal/heatmap"
	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/reconcile"
)

var testNow = time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)

type setCall struct {
	ch        model.Channel
	date      string
	planID    int64
	key       string
	completed bool
}

type fakeBackend struct {
	logs    map[string]bool
	sets    []setCall
	reads   []string
	failing error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{logs: make(map[string]bool)}
}

func (f *fakeBackend) Today(_ context.Context, ch model.Channel, date string) (reconcile.DayView, error) {
	if f.failing != nil {
		return reconcile.DayView{}, f.failing
	}
	f.reads = append(f.reads, string(ch)+" "+date)
	plan := model.DefaultPlan(ch)
	view := reconcile.DayView{Date: date, Channel: ch, Plan: plan}
	for _, item := range plan.Items {
		done := f.logs[string(ch)+"/"+item.Key]
		view.Logs = append(view.Logs, model.LogEntry{Exercise: item.Key, Completed: done})
		if done {
			view.Total += item.Intensity
		}
	}
	view.Level = model.MapIntensityToLevel(view.Total)
	return view, nil
}

func (f *fakeBackend) SetCompletion(_ context.Context, ch model.Channel, date string, planID int64, key string, completed bool) (reconcile.CompletionResult, error) {
	f.sets = append(f.sets, setCall{ch: ch, date: date, planID: planID, key: key, completed: completed})
	f.logs[string(ch)+"/"+key] = completed
	return reconcile.CompletionResult{Total: 1, Level: 1}, nil
}

func (f *fakeBackend) Heatmap(_ context.Context, ch model.Channel, end string, days int) (heatmap.Heatmap, error) {
	start, _ := model.AddDays(end, -(days - 1))
	return heatmap.Heatmap{
		Start:   start,
		End:     end,
		Days:    days,
		Channel: ch,
		Data:    []heatmap.Cell{{Date: end, Total: 3, Level: 1}},
		Details: map[string]heatmap.DayDetail{
			end: {Workout: []model.CompletedItem{{Exercise: "squats", Completed: true}}, Mobility: []model.CompletedItem{}},
		},
	}, nil
}

func newTestModel(t *testing.T, backend Backend) Model {
	t.Helper()
	m := NewModel(backend, Options{Now: func() time.Time { return testNow }, HeatmapDays: 30})
	return run(t, m, m.Init())
}

// run feeds cmd's message back into the model until no command is left.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 10 {
			t.Fatal("command chain did not settle")
		}
		msg := cmd()
		if msg == nil {
			return m
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(k)
		m = run(t, next.(Model), cmd)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeCommand(t *testing.T, m Model, command string) Model {
	t.Helper()
	m = press(t, m, runes("/"))
	for _, part := range strings.Split(command, " ") {
		if m.Palette.Input != "" {
			m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		}
		m = press(t, m, runes(part))
	}
	return press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(nil, Options{Now: func() time.Time { return testNow }})
	if m.Channel != model.ChannelWorkout || m.Date != "2026-02-09" {
		t.Fatalf("unexpected defaults: %s %s", m.Channel, m.Date)
	}
	if m.days != heatmap.DefaultDays {
		t.Fatalf("expected default window, got %d", m.days)
	}
	if m.Keys.Quit != "q" || m.Init() != nil {
		t.Fatalf("unexpected keys or init without backend")
	}
}

func TestInitLoadsDayAndHeatmap(t *testing.T) {
	backend := newFakeBackend()
	m := newTestModel(t, backend)
	if len(m.Day.Plan.Items) != 3 || m.Heatmap.Days != 30 || m.Loading {
		t.Fatalf("unexpected load: %#v", m.Day)
	}
	detail := m.dayDetailMarkdown()
	if !strings.Contains(detail, "### Workout\n\n- squats") || strings.Contains(detail, "Mobility") {
		t.Fatalf("unexpected day detail: %q", detail)
	}
}

func TestToggleSelectedExercise(t *testing.T) {
	backend := newFakeBackend()
	m := newTestModel(t, backend)
	m = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if len(backend.sets) != 1 {
		t.Fatalf("expected one completion write, got %#v", backend.sets)
	}
	call := backend.sets[0]
	if call.key != "push-ups" || !call.completed || call.date != "2026-02-09" || call.planID != 0 {
		t.Fatalf("unexpected call: %#v", call)
	}
	if !m.completed("push-ups") {
		t.Fatalf("expected reloaded log to show push-ups done: %#v", m.Day.Logs)
	}
	if !strings.Contains(m.Status.Text, "push-ups done") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if backend.sets[1].completed {
		t.Fatalf("second toggle must uncheck: %#v", backend.sets[1])
	}
}

func TestTabSwitchesChannel(t *testing.T) {
	backend := newFakeBackend()
	m := newTestModel(t, backend)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Channel != model.ChannelMobility || len(m.Day.Plan.Items) != 4 {
		t.Fatalf("expected mobility plan, got %s with %d items", m.Channel, len(m.Day.Plan.Items))
	}
	if backend.reads[len(backend.reads)-1] != "mobility 2026-02-09" {
		t.Fatalf("unexpected reads: %#v", backend.reads)
	}
}

func TestDayNavigation(t *testing.T) {
	m := newTestModel(t, newFakeBackend())
	m = press(t, m, runes("h"), runes("h"))
	if m.Date != "2026-02-07" {
		t.Fatalf("expected two days back, got %s", m.Date)
	}
	m = press(t, m, runes("l"))
	if m.Date != "2026-02-08" {
		t.Fatalf("expected one day forward, got %s", m.Date)
	}
}

func TestStaleLoadIsIgnored(t *testing.T) {
	m := newTestModel(t, newFakeBackend())
	next, _ := m.Update(DayLoadedMsg{Channel: model.ChannelWorkout, Date: "2020-01-01"})
	if got := next.(Model); len(got.Day.Plan.Items) != 3 {
		t.Fatalf("stale load replaced the day: %#v", got.Day)
	}
}

func TestPaletteCommands(t *testing.T) {
	backend := newFakeBackend()
	m := newTestModel(t, backend)

	m = typeCommand(t, m, "date 2026-01-31")
	if m.Date != "2026-01-31" || m.Palette.Active {
		t.Fatalf("date command not applied: %s active=%v", m.Date, m.Palette.Active)
	}

	m = typeCommand(t, m, "done 3")
	if len(backend.sets) != 1 || backend.sets[0].key != "plank" || backend.sets[0].date != "2026-01-31" {
		t.Fatalf("unexpected done call: %#v", backend.sets)
	}

	m = typeCommand(t, m, "channel mobility")
	if m.Channel != model.ChannelMobility {
		t.Fatalf("channel command not applied: %s", m.Channel)
	}

	m = typeCommand(t, m, "date today")
	if m.Date != "2026-02-09" {
		t.Fatalf("expected today, got %s", m.Date)
	}

	m = typeCommand(t, m, "done 9")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "#9") {
		t.Fatalf("expected out of range error, got %+v", m.Status)
	}

	m = typeCommand(t, m, "jump")
	if !m.Status.IsError {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}
}

func TestPaletteEscCloses(t *testing.T) {
	m := newTestModel(t, newFakeBackend())
	m = press(t, m, runes("/"), runes("dat"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Palette.Input != "" {
		t.Fatalf("expected closed palette: %+v", m.Palette)
	}
}

func TestBackendErrorSetsStatus(t *testing.T) {
	backend := newFakeBackend()
	backend.failing = errors.New("database is locked")
	m := newTestModel(t, backend)
	if m.LastError == nil || !m.Status.IsError || m.Status.Text != "database is locked" {
		t.Fatalf("unexpected error state: %+v %v", m.Status, m.LastError)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := NewModel(nil, Options{})
	updated, cmd := m.Update(runes("q"))
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := newTestModel(t, newFakeBackend())
	m = press(t, m, runes("?"))
	out := m.View()
	for _, want := range []string{"channel: workout", "date: 2026-02-09", "squats", "workout heatmap", "toggle exercise", "done N / undo N"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/grantcko/workout-heatmap/internal/heatmap"
	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/reconcile"
)

// Backend is what the terminal UI reads and writes through.
type Backend interface {
	Today(ctx context.Context, ch model.Channel, date string) (reconcile.DayView, error)
	SetCompletion(ctx context.Context, ch model.Channel, date string, planID int64, key string, completed bool) (reconcile.CompletionResult, error)
	Heatmap(ctx context.Context, ch model.Channel, end string, days int) (heatmap.Heatmap, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Toggle  string
	Channel string
	PrevDay string
	NextDay string
	Refresh string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	Channel     model.Channel
	Date        string
	Day         reconcile.DayView
	Heatmap     heatmap.Heatmap
	Cursor      int
	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Loading     bool
	Quitting    bool
	LastError   error

	backend      Backend
	now          func() time.Time
	days         int
	timeout      time.Duration
	commandInput textinput.Model
	helpModel    help.Model
	detailView   viewport.Model
}

type Options struct {
	Now         func() time.Time
	HeatmapDays int
	Channel     model.Channel
}

// DayLoadedMsg carries a fresh read of the selected day and the heatmap.
type DayLoadedMsg struct {
	Channel model.Channel
	Date    string
	Day     reconcile.DayView
	Heatmap heatmap.Heatmap
}

type CompletionSetMsg struct {
	Key       string
	Completed bool
	Result    reconcile.CompletionResult
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(backend Backend, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	days := opts.HeatmapDays
	if days == 0 {
		days = heatmap.DefaultDays
	}
	ch := opts.Channel
	if !ch.IsValid() {
		ch = model.ChannelWorkout
	}
	m := Model{
		Channel: ch,
		Date:    now().Format(model.DateLayout),
		Keys: GlobalKeyMap{
			Toggle:  " ",
			Channel: "tab",
			PrevDay: "h",
			NextDay: "l",
			Refresh: "r",
			Help:    "?",
			Quit:    "q",
		},
		backend: backend,
		now:     now,
		days:    heatmap.ClampDays(days),
		timeout: 5 * time.Second,
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/ "
	m.commandInput.Placeholder = "date 2026-02-09 | channel mobility | done 1 | undo 1 | refresh"
	m.commandInput.CharLimit = 64

	m.helpModel = help.New()
	m.helpModel.ShowAll = true

	m.detailView = viewport.New(56, 12)
}

// selectedItem returns the checklist row under the cursor.
func (m Model) selectedItem() (model.ExerciseItem, bool) {
	items := m.Day.Plan.Items
	if m.Cursor < 0 || m.Cursor >= len(items) {
		return model.ExerciseItem{}, false
	}
	return items[m.Cursor], true
}

func (m Model) completed(key string) bool {
	for _, entry := range m.Day.Logs {
		if entry.Exercise == key {
			return entry.Completed
		}
	}
	return false
}

func (m *Model) clampCursor() {
	n := len(m.Day.Plan.Items)
	switch {
	case n == 0:
		m.Cursor = 0
	case m.Cursor >= n:
		m.Cursor = n - 1
	case m.Cursor < 0:
		m.Cursor = 0
	}
}

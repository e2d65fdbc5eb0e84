package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/views"
)

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		case m.Keys.Channel:
			return m.switchChannel(m.Channel.Other())
		case "j", "down":
			m.Cursor++
			m.clampCursor()
			return m, nil
		case "k", "up":
			m.Cursor--
			m.clampCursor()
			return m, nil
		case m.Keys.Toggle:
			item, ok := m.selectedItem()
			if !ok {
				m.Status = StatusBar{Text: "no exercise selected", IsError: true}
				return m, nil
			}
			return m, m.toggleCmd(item.Key, !m.completed(item.Key))
		case m.Keys.PrevDay:
			return m.shiftDate(-1)
		case m.Keys.NextDay:
			return m.shiftDate(1)
		case m.Keys.Refresh:
			m.Loading = true
			return m, m.loadCmd()
		}
		if typed.Type == tea.KeyPgUp || typed.Type == tea.KeyPgDown {
			var cmd tea.Cmd
			m.detailView, cmd = m.detailView.Update(typed)
			return m, cmd
		}
	case DayLoadedMsg:
		if typed.Channel != m.Channel || typed.Date != m.Date {
			return m, nil
		}
		m.Day = typed.Day
		m.Heatmap = typed.Heatmap
		m.Loading = false
		m.clampCursor()
		m.detailView.SetContent(views.RenderMarkdown(m.dayDetailMarkdown()))
		return m, nil
	case CompletionSetMsg:
		verb := "undone"
		if typed.Completed {
			verb = "done"
		}
		text := fmt.Sprintf("%s %s (total %d, level %d)", typed.Key, verb, typed.Result.Total, typed.Result.Level)
		if typed.Result.AllCompleted {
			text += " | plan complete"
		}
		m.Status = StatusBar{Text: text}
		return m, m.loadCmd()
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		m.Loading = false
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) switchChannel(ch model.Channel) (Model, tea.Cmd) {
	if ch == m.Channel {
		return m, nil
	}
	m.Channel = ch
	m.Cursor = 0
	m.Loading = true
	m.Status = StatusBar{Text: fmt.Sprintf("channel: %s", ch)}
	return m, m.loadCmd()
}

func (m Model) setDate(date string) (Model, tea.Cmd) {
	if err := model.ValidateDate(date); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Date = date
	m.Cursor = 0
	m.Loading = true
	return m, m.loadCmd()
}

func (m Model) shiftDate(days int) (Model, tea.Cmd) {
	date, err := model.AddDays(m.Date, days)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	return m.setDate(date)
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

// loadCmd reads the selected day and the heatmap window ending today.
func (m Model) loadCmd() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	ch, date, end := m.Channel, m.Date, m.now().Format(model.DateLayout)
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		day, err := m.backend.Today(ctx, ch, date)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		hm, err := m.backend.Heatmap(ctx, ch, end, m.days)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return DayLoadedMsg{Channel: ch, Date: date, Day: day, Heatmap: hm}
	}
}

func (m Model) toggleCmd(key string, completed bool) tea.Cmd {
	if m.backend == nil {
		return nil
	}
	ch, date, planID := m.Channel, m.Date, m.Day.Plan.ID
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		res, err := m.backend.SetCompletion(ctx, ch, date, planID, key, completed)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return CompletionSetMsg{Key: key, Completed: completed, Result: res}
	}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	if m.Loading {
		status = "loading..."
	}

	rightPane := m.renderHeatmapPane() + "\n\n" + m.detailView.View()
	if help := m.renderHelpIfVisible(); help != "" {
		rightPane += "\n\n" + help
	}

	return views.RenderApp(views.AppData{
		Header:      fmt.Sprintf("workout-heatmap | channel: %s | date: %s", m.Channel, m.Date),
		LeftPane:    m.renderChecklistPane(),
		RightPane:   rightPane,
		Palette:     m.renderCommandPalette(),
		StatusLine:  status,
		StatusError: m.Status.IsError,
		Footer:      fmt.Sprintf("keys: tab channel | j/k move | space toggle | %s/%s day | / cmd | %s help | %s quit", m.Keys.PrevDay, m.Keys.NextDay, m.Keys.Help, m.Keys.Quit),
	})
}

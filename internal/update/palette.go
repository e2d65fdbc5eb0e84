package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grantcko/workout-heatmap/internal/commands"
	"github.com/grantcko/workout-heatmap/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		case tea.KeySpace:
			m.commandInput.SetValue(m.commandInput.Value() + " ")
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
	return m, nil
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var next tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Date: func(a commands.DateArgs) (commands.Result, error) {
			date := a.Date
			switch {
			case a.Today:
				date = m.now().Format(model.DateLayout)
			case a.Offset != 0:
				shifted, err := model.AddDays(m.Date, a.Offset)
				if err != nil {
					return commands.Result{}, err
				}
				date = shifted
			}
			m, next = m.setDate(date)
			return commands.Result{Message: fmt.Sprintf("date: %s", date)}, nil
		},
		Channel: func(a commands.ChannelArgs) (commands.Result, error) {
			m, next = m.switchChannel(a.Channel)
			return commands.Result{Message: fmt.Sprintf("channel: %s", a.Channel)}, nil
		},
		Mark: func(a commands.MarkArgs) (commands.Result, error) {
			items := m.Day.Plan.Items
			if a.Index > len(items) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no exercise #%d in today's plan", a.Index)}
			}
			item := items[a.Index-1]
			m.Cursor = a.Index - 1
			next = m.toggleCmd(item.Key, a.Completed)
			verb := "undo"
			if a.Completed {
				verb = "done"
			}
			return commands.Result{Message: fmt.Sprintf("%s: %s", verb, item.Key)}, nil
		},
		Refresh: func() (commands.Result, error) {
			m.Loading = true
			next = m.loadCmd()
			return commands.Result{Message: "refreshing"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, next
}

func (m Model) renderCommandPalette() string {
	if !m.Palette.Active {
		return ""
	}
	return m.commandInput.View()
}

package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/grantcko/workout-heatmap/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.paletteBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Channel:  string(m.Channel),
		Commands: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Channel, Action: "switch channel"},
		{Key: "j/k", Action: "move selection"},
		{Key: "space", Action: "toggle exercise"},
		{Key: m.Keys.PrevDay + "/" + m.Keys.NextDay, Action: "previous/next day"},
		{Key: m.Keys.Refresh, Action: "reload"},
		{Key: "pgup/pgdn", Action: "scroll day detail"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) paletteBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "date YYYY-MM-DD|today|+N|-N", Action: "show another day"},
		{Key: "channel workout|mobility", Action: "switch channel"},
		{Key: "done N / undo N", Action: "set exercise N"},
		{Key: "refresh", Action: "reload from the store"},
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}

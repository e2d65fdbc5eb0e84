package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grantcko/workout-heatmap/internal/heatmap"
)

type ChecklistRowData struct {
	Label     string
	Detail    string
	Intensity int
	Completed bool
	Selected  bool
}

type ChecklistPanelData struct {
	Channel    string
	Date       string
	Focus      string
	Difficulty int
	Source     string
	Rows       []ChecklistRowData
	Total      int
	Level      int
}

type HeatCellData struct {
	Date  string
	Level int
}

type HeatmapPanelData struct {
	Channel  string
	Start    string
	End      string
	Selected string
	Weeks    [][7]HeatCellData
}

// NewHeatmapPanelData lays h out as calendar weeks.
func NewHeatmapPanelData(h heatmap.Heatmap, selected string) (HeatmapPanelData, error) {
	data := HeatmapPanelData{Channel: string(h.Channel), Start: h.Start, End: h.End, Selected: selected}
	if h.Start == "" {
		return data, nil
	}
	weeks, err := heatmap.Grid(h)
	if err != nil {
		return HeatmapPanelData{}, err
	}
	data.Weeks = make([][7]HeatCellData, 0, len(weeks))
	for _, week := range weeks {
		var row [7]HeatCellData
		for i, cell := range week {
			row[i] = HeatCellData{Date: cell.Date, Level: cell.Level}
		}
		data.Weeks = append(data.Weeks, row)
	}
	return data, nil
}

type HelpPanelData struct {
	Channel  string
	Commands []string
	HelpView string
}

// levelColors are 256-color codes for levels 0..4.
var levelColors = map[string][5]string{
	"workout":  {"237", "22", "28", "34", "46"},
	"mobility": {"237", "18", "25", "32", "45"},
}

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var weekdayLabels = [7]string{"S", "M", "T", "W", "T", "F", "S"}

func RenderChecklistPanel(data ChecklistPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", data.Channel, data.Date))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("focus: %s | difficulty %d | %s", data.Focus, data.Difficulty, data.Source)) + "\n\n")
	if len(data.Rows) == 0 {
		b.WriteString("(no exercises)\n")
	}
	for i, row := range data.Rows {
		box := "[ ]"
		if row.Completed {
			box = "[x]"
		}
		label := row.Label
		if row.Detail != "" {
			label = fmt.Sprintf("%s (%s)", row.Label, row.Detail)
		}
		line := fmt.Sprintf("%2d. %s %s", i+1, box, label)
		if row.Intensity != 1 {
			line += mutedStyle.Render(fmt.Sprintf(" +%d", row.Intensity))
		}
		switch {
		case row.Selected:
			line = selectedStyle.Render("> " + line)
		case row.Completed:
			line = "  " + doneStyle.Render(line)
		default:
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("total %d | level %d %s", data.Total, data.Level, LevelSwatch(data.Channel, data.Level)))
	return strings.TrimSpace(b.String())
}

// LevelSwatch renders one heatmap cell for a level.
func LevelSwatch(channel string, level int) string {
	colors, ok := levelColors[channel]
	if !ok {
		colors = levelColors["workout"]
	}
	if level < 0 {
		level = 0
	}
	if level > 4 {
		level = 4
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colors[level])).Render("■")
}

// RenderHeatmapPanel draws weeks as columns and weekdays as rows.
func RenderHeatmapPanel(data HeatmapPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s heatmap", data.Channel))
	if data.Start != "" {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" %s .. %s", data.Start, data.End)))
	}
	b.WriteString("\n")
	if len(data.Weeks) == 0 {
		b.WriteString("(no data)")
		return b.String()
	}
	for day := 0; day < 7; day++ {
		b.WriteString(mutedStyle.Render(weekdayLabels[day]) + " ")
		for _, week := range data.Weeks {
			cell := week[day]
			switch {
			case cell.Date == "":
				b.WriteString(" ")
			case cell.Date == data.Selected:
				b.WriteString(selectedStyle.Render("◆"))
			default:
				b.WriteString(LevelSwatch(data.Channel, cell.Level))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("less "))
	for level := 0; level <= 4; level++ {
		b.WriteString(LevelSwatch(data.Channel, level))
	}
	b.WriteString(mutedStyle.Render(" more"))
	return b.String()
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("help (%s):\n", data.Channel))
	b.WriteString(data.HelpView + "\n")
	b.WriteString("commands:\n")
	for _, line := range data.Commands {
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

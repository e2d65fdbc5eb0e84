package update

import (
	"fmt"
	"strings"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/views"
)

func (m Model) renderChecklistPane() string {
	plan := m.Day.Plan
	rows := make([]views.ChecklistRowData, 0, len(plan.Items))
	for i, item := range plan.Items {
		rows = append(rows, views.ChecklistRowData{
			Label:     item.Label,
			Detail:    item.Detail,
			Intensity: item.Intensity,
			Completed: m.completed(item.Key),
			Selected:  i == m.Cursor,
		})
	}
	return views.RenderChecklistPanel(views.ChecklistPanelData{
		Channel:    string(m.Channel),
		Date:       m.Date,
		Focus:      plan.Focus,
		Difficulty: plan.Difficulty,
		Source:     planSource(plan),
		Rows:       rows,
		Total:      m.Day.Total,
		Level:      m.Day.Level,
	})
}

func planSource(plan model.Plan) string {
	switch {
	case plan.Override:
		return "day plan"
	case plan.IsSynthetic():
		return "default"
	default:
		return fmt.Sprintf("rotation day %d", plan.DayNumber)
	}
}

func (m Model) renderHeatmapPane() string {
	data, err := views.NewHeatmapPanelData(m.Heatmap, m.Date)
	if err != nil {
		return fmt.Sprintf("heatmap unavailable: %v", err)
	}
	data.Channel = string(m.Channel)
	return views.RenderHeatmapPanel(data)
}

// dayDetailMarkdown describes the selected date from the heatmap details.
func (m Model) dayDetailMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", m.Date)
	if focus := strings.TrimSpace(m.Day.Plan.Focus); focus != "" {
		fmt.Fprintf(&b, "**%s** plan: %s (difficulty %d)\n\n", m.Channel, focus, m.Day.Plan.Difficulty)
	}
	detail, ok := m.Heatmap.Details[m.Date]
	if !ok {
		b.WriteString("_Nothing completed yet._\n")
		return b.String()
	}
	writeCompleted(&b, "Workout", detail.Workout)
	writeCompleted(&b, "Mobility", detail.Mobility)
	return b.String()
}

func writeCompleted(b *strings.Builder, title string, items []model.CompletedItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item.Exercise)
	}
	b.WriteString("\n")
}

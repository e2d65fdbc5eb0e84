package heatmap

import (
	"time"

	"github.com/grantcko/workout-heatmap/internal/model"
)

// Week is seven cells starting on Sunday. Padding cells outside the range
// have an empty Date.
type Week [7]Cell

// Grid lays the heatmap out as calendar weeks, filling unstored days with
// zero cells.
func Grid(h Heatmap) ([]Week, error) {
	start, err := parseDate(h.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(h.End)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]Cell, len(h.Data))
	for _, cell := range h.Data {
		byDate[cell.Date] = cell
	}

	weeks := make([]Week, 0, h.Days/7+2)
	var week Week
	col := int(start.Weekday())
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(model.DateLayout)
		cell, ok := byDate[date]
		if !ok {
			cell = Cell{Date: date}
		}
		week[col] = cell
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = Week{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks, nil
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return t, nil
}

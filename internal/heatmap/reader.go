package heatmap

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/grantcko/workout-heatmap/internal/model"
	"github.com/grantcko/workout-heatmap/internal/storage"
)

const (
	DefaultDays = 365
	MinDays     = 30
	MaxDays     = 730
)

// Cell is one stored day. Days without a cell have a zero total.
type Cell struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
	Level int    `json:"level"`
}

// DayDetail holds the completed items of both channels for one date.
type DayDetail struct {
	Workout  []model.CompletedItem `json:"workout"`
	Mobility []model.CompletedItem `json:"mobility"`
}

type Heatmap struct {
	Start   string               `json:"start"`
	End     string               `json:"end"`
	Days    int                  `json:"days"`
	Channel model.Channel        `json:"type"`
	Data    []Cell               `json:"data"`
	Details map[string]DayDetail `json:"details,omitempty"`
}

// Source is the read side of the store the heatmap needs.
type Source interface {
	ReadHeatmapRange(ctx context.Context, channel, start, end string) ([]storage.DayIntensity, error)
	ReadHeatmapDetail(ctx context.Context, channel, start, end string) ([]storage.HeatmapDay, error)
}

type Reader struct {
	src    Source
	logger *slog.Logger
}

func NewReader(src Source, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{src: src, logger: logger}
}

// ClampDays bounds a window length to MinDays..MaxDays.
func ClampDays(days int) int {
	switch {
	case days < MinDays:
		return MinDays
	case days > MaxDays:
		return MaxDays
	default:
		return days
	}
}

// Window reads the days-long range that ends on end, inclusive.
func (r *Reader) Window(ctx context.Context, ch model.Channel, end string, days int, withDetails bool) (Heatmap, error) {
	if err := model.ValidateDate(end); err != nil {
		return Heatmap{}, err
	}
	days = ClampDays(days)
	start, err := model.AddDays(end, -(days - 1))
	if err != nil {
		return Heatmap{}, err
	}
	out, err := r.Range(ctx, ch, start, end, withDetails)
	if err != nil {
		return Heatmap{}, err
	}
	out.Days = days
	return out, nil
}

// Range reads stored totals for ch between start and end. With details it
// also reads both channels' snapshots; each channel is one query so a total
// is never paired with a snapshot from another write.
func (r *Reader) Range(ctx context.Context, ch model.Channel, start, end string, withDetails bool) (Heatmap, error) {
	if !ch.IsValid() {
		return Heatmap{}, &model.ValidationError{Field: "type", Message: fmt.Sprintf("unknown channel %q", ch)}
	}
	if err := model.ValidateDate(start); err != nil {
		return Heatmap{}, err
	}
	if err := model.ValidateDate(end); err != nil {
		return Heatmap{}, err
	}
	if start > end {
		return Heatmap{}, &model.ValidationError{Field: "start", Message: "start must not be after end"}
	}
	out := Heatmap{Start: start, End: end, Days: daysBetween(start, end), Channel: ch, Data: []Cell{}}

	if !withDetails {
		rows, err := r.src.ReadHeatmapRange(ctx, string(ch), start, end)
		if err != nil {
			return Heatmap{}, fmt.Errorf("read heatmap range: %w", err)
		}
		for _, row := range rows {
			out.Data = append(out.Data, newCell(row.Date, row.Total))
		}
		return out, nil
	}

	byChannel := make([][]storage.HeatmapDay, len(model.Channels))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range model.Channels {
		g.Go(func() error {
			rows, err := r.src.ReadHeatmapDetail(gctx, string(c), start, end)
			if err != nil {
				return fmt.Errorf("read %s detail: %w", c, err)
			}
			byChannel[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Heatmap{}, err
	}

	out.Details = make(map[string]DayDetail)
	for i, c := range model.Channels {
		for _, row := range byChannel[i] {
			if c == ch {
				out.Data = append(out.Data, newCell(row.Date, row.Total))
			}
			items := r.detailItems(c, row)
			if len(items) == 0 {
				continue
			}
			detail := out.Details[row.Date]
			if detail.Workout == nil {
				detail.Workout = []model.CompletedItem{}
			}
			if detail.Mobility == nil {
				detail.Mobility = []model.CompletedItem{}
			}
			if c == model.ChannelMobility {
				detail.Mobility = items
			} else {
				detail.Workout = items
			}
			out.Details[row.Date] = detail
		}
	}
	return out, nil
}

// detailItems decodes a day's snapshot, dropping placeholder-only lists.
func (r *Reader) detailItems(ch model.Channel, row storage.HeatmapDay) []model.CompletedItem {
	if !row.HasSnapshot {
		return nil
	}
	items := model.DecodeSnapshot([]byte(row.SnapshotJSON))
	if model.IsPlaceholderSnapshot(items, ch) {
		return nil
	}
	return items
}

func newCell(date string, total int) Cell {
	return Cell{Date: date, Total: total, Level: model.MapIntensityToLevel(total)}
}

func daysBetween(start, end string) int {
	s, errS := parseDate(start)
	e, errE := parseDate(end)
	if errS != nil || errE != nil {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

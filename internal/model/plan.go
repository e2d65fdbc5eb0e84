package model

import (
	"fmt"
	"strings"
	"time"
)

type Channel string

const (
	ChannelWorkout  Channel = "workout"
	ChannelMobility Channel = "mobility"
)

var Channels = []Channel{ChannelWorkout, ChannelMobility}

func (c Channel) IsValid() bool {
	switch c {
	case ChannelWorkout, ChannelMobility:
		return true
	default:
		return false
	}
}

// ParseChannel accepts a channel name; empty input means workout.
func ParseChannel(raw string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" {
		return ChannelWorkout, nil
	}
	if !c.IsValid() {
		return "", &ValidationError{Field: "channel", Message: fmt.Sprintf("unknown channel %q", raw)}
	}
	return c, nil
}

// Other returns the opposite channel.
func (c Channel) Other() Channel {
	if c == ChannelMobility {
		return ChannelWorkout
	}
	return ChannelMobility
}

// PlaceholderLabel is the sentinel item written by agent-only logging.
func (c Channel) PlaceholderLabel() string {
	if c == ChannelMobility {
		return "mobility completed via api"
	}
	return "completed via api"
}

// DefaultDifficulty is the difficulty shown for plans that do not carry one.
func (c Channel) DefaultDifficulty() int {
	if c == ChannelMobility {
		return 1
	}
	return 3
}

var recoveryKeywords = []string{"mobility", "recovery", "stretch", "yoga", "rest"}

// IsRecoveryFocus matches rest-day style focus labels.
func IsRecoveryFocus(focus string) bool {
	lower := strings.ToLower(focus)
	for _, kw := range recoveryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DefaultIntensityForFocus is the per-item intensity used when an entry has
// none of its own.
func DefaultIntensityForFocus(focus string) int {
	if IsRecoveryFocus(focus) {
		return 0
	}
	return 1
}

// Plan is a resolved checklist for one channel. ID 0 is the synthetic default
// or a day-specific override.
type Plan struct {
	ID          int64          `json:"id"`
	Channel     Channel        `json:"channel"`
	DayNumber   int            `json:"dayNumber"`
	Focus       string         `json:"focus"`
	Difficulty  int            `json:"difficulty"`
	Items       []ExerciseItem `json:"exercises"`
	Override    bool           `json:"override"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// NewPlan normalizes entries with the focus-derived default intensity.
func NewPlan(ch Channel, id int64, dayNumber int, focus string, difficulty int, entries []RawEntry) Plan {
	if difficulty <= 0 {
		difficulty = ch.DefaultDifficulty()
	}
	return Plan{
		ID:         id,
		Channel:    ch,
		DayNumber:  dayNumber,
		Focus:      focus,
		Difficulty: difficulty,
		Items:      NormalizeExercises(entries, DefaultIntensityForFocus(focus)),
	}
}

func (p Plan) Keys() []string {
	keys := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		keys = append(keys, item.Key)
	}
	return keys
}

func (p Plan) IsSynthetic() bool {
	return p.ID == 0
}

var defaultPlanEntries = map[Channel]struct {
	focus string
	items []string
}{
	ChannelWorkout:  {focus: "full body", items: []string{"squats", "push-ups", "plank"}},
	ChannelMobility: {focus: "mobility", items: []string{"ankle circles", "hip openers", "thoracic rotations", "hamstring stretch"}},
}

// DefaultPlan is the single-day plan used when no rotation exists.
func DefaultPlan(ch Channel) Plan {
	def := defaultPlanEntries[ch]
	entries := make([]RawEntry, 0, len(def.items))
	for _, label := range def.items {
		entries = append(entries, PlainLabel(label))
	}
	return NewPlan(ch, 0, 0, def.focus, ch.DefaultDifficulty(), entries)
}

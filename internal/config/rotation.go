package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/grantcko/workout-heatmap/internal/model"
)

// RotationFile is an authored rotation for both channels.
//
//	workout:
//	  - day: 1
//	    focus: push
//	    exercises:
//	      - bench press
//	      - {name: dips, sets: 3, reps: 10, intensity: 2}
type RotationFile struct {
	Workout  []RotationPlan `yaml:"workout"`
	Mobility []RotationPlan `yaml:"mobility"`
}

type RotationPlan struct {
	Day        int    `yaml:"day"`
	Focus      string `yaml:"focus"`
	Difficulty int    `yaml:"difficulty"`
	Exercises  []any  `yaml:"exercises"`
}

// ChannelPlans pairs each channel with its plans in file order.
func (f RotationFile) ChannelPlans() map[model.Channel][]RotationPlan {
	return map[model.Channel][]RotationPlan{
		model.ChannelWorkout:  f.Workout,
		model.ChannelMobility: f.Mobility,
	}
}

// Entries converts the YAML exercise list into raw plan entries. Mappings
// become detailed records and everything else a plain label.
func (p RotationPlan) Entries() ([]model.RawEntry, error) {
	out := make([]model.RawEntry, 0, len(p.Exercises))
	for i, ex := range p.Exercises {
		encoded, err := json.Marshal(normalizeYAML(ex))
		if err != nil {
			return nil, fmt.Errorf("config: day %d exercise %d: %w", p.Day, i+1, err)
		}
		var entry model.RawEntry
		if err := entry.UnmarshalJSON(encoded); err != nil {
			return nil, fmt.Errorf("config: day %d exercise %d: %w", p.Day, i+1, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func ParseRotationYAML(data []byte) (RotationFile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return RotationFile{}, fmt.Errorf("config: rotation payload is empty")
	}
	var f RotationFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RotationFile{}, fmt.Errorf("config: decode rotation: %w", err)
	}
	for ch, plans := range f.ChannelPlans() {
		for _, plan := range plans {
			if plan.Day < 0 {
				return RotationFile{}, fmt.Errorf("config: %s day %d: day must not be negative", ch, plan.Day)
			}
			if len(plan.Exercises) == 0 {
				return RotationFile{}, fmt.Errorf("config: %s day %d: exercises must not be empty", ch, plan.Day)
			}
		}
	}
	return f, nil
}

func LoadRotationFile(path string) (RotationFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RotationFile{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	f, err := ParseRotationYAML(data)
	if err != nil {
		return RotationFile{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// normalizeYAML rewrites map[any]any nodes so encoding/json can marshal them.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

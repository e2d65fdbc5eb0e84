package model

import (
	"bytes"
	"encoding/json"
)

// ChecklistItem is one row of a client-edited day checklist.
type ChecklistItem struct {
	Exercise  string `json:"exercise"`
	Intensity string `json:"intensity,omitempty"`
	Completed bool   `json:"completed"`
}

// UnmarshalJSON accepts a bare label or a record using the same aliases as
// plan entries.
func (c *ChecklistItem) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = ChecklistItem{Exercise: s}
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*c = ChecklistItem{}
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}
	rec := recordFromFields(fields)
	out := ChecklistItem{Exercise: rec.Name}
	if rec.HasIntensity {
		out.Intensity = rec.Intensity
	}
	if raw, ok := fields["completed"]; ok {
		out.Completed = Truthy(raw)
	}
	*c = out
	return nil
}

// Entry converts the item into a stored plan entry.
func (c ChecklistItem) Entry() RawEntry {
	return DetailedRecord(ExerciseRecord{
		Name:         c.Exercise,
		Intensity:    c.Intensity,
		HasIntensity: c.Intensity != "",
	})
}

// SanitizeChecklist drops items without a label.
func SanitizeChecklist(items []ChecklistItem) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(items))
	for _, item := range items {
		if item.Exercise == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Truthy reports whether a JSON value is set: null, false, 0 and "" are not.
func Truthy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isJSONNull(trimmed) {
		return false
	}
	if trimmed[0] == '"' {
		return rawText(trimmed) != ""
	}
	_, ok := scalarText(trimmed)
	return ok
}

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedEntries = errors.New("model: malformed exercise entries")

// Name aliases in precedence order.
var nameFields = []string{"exercise", "name", "title", "label"}

var intensityFields = []string{"intensity", "level", "rating"}

type detailField struct {
	name   string
	suffix string
}

// detailFields is the fixed render order for the human-readable detail.
var detailFields = []detailField{
	{name: "sets", suffix: " sets"},
	{name: "reps", suffix: " reps"},
	{name: "rounds", suffix: " rounds"},
	{name: "minutes", suffix: " min"},
	{name: "seconds", suffix: " sec"},
	{name: "duration"},
	{name: "distance"},
	{name: "hold", suffix: " hold"},
	{name: "detail"},
	{name: "note"},
	{name: "notes"},
}

const detailSeparator = " · "

// ExerciseRecord is the structured flavor of a raw plan entry. Absent optional
// fields are empty strings.
type ExerciseRecord struct {
	Key      string
	Name     string
	Sets     string
	Reps     string
	Rounds   string
	Minutes  string
	Seconds  string
	Duration string
	Distance string
	Hold     string
	Detail   string
	Note     string
	Notes    string

	// Intensity holds the raw text of the first present intensity-like field.
	Intensity    string
	HasIntensity bool

	fields map[string]json.RawMessage
}

// RawEntry is either a plain label or a detailed record.
type RawEntry struct {
	Label  string
	Record *ExerciseRecord
}

func PlainLabel(label string) RawEntry {
	return RawEntry{Label: label}
}

func DetailedRecord(rec ExerciseRecord) RawEntry {
	return RawEntry{Record: &rec}
}

func (e RawEntry) IsRecord() bool {
	return e.Record != nil
}

func (e *RawEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ErrMalformedEntries
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*e = PlainLabel(s)
		return nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		*e = RawEntry{Record: recordFromFields(fields)}
		return nil
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			return err
		}
		*e = PlainLabel(compact.String())
		return nil
	}
}

func (e RawEntry) MarshalJSON() ([]byte, error) {
	if e.Record == nil {
		return json.Marshal(e.Label)
	}
	return json.Marshal(e.Record.attributes())
}

func recordFromFields(fields map[string]json.RawMessage) *ExerciseRecord {
	rec := &ExerciseRecord{fields: fields}
	for _, name := range nameFields {
		if v, ok := scalarText(fields[name]); ok {
			rec.Name = v
			break
		}
	}
	rec.Key, _ = scalarText(fields["key"])
	rec.Sets, _ = scalarText(fields["sets"])
	rec.Reps, _ = scalarText(fields["reps"])
	rec.Rounds, _ = scalarText(fields["rounds"])
	rec.Minutes, _ = scalarText(fields["minutes"])
	rec.Seconds, _ = scalarText(fields["seconds"])
	rec.Duration, _ = scalarText(fields["duration"])
	rec.Distance, _ = scalarText(fields["distance"])
	rec.Hold, _ = scalarText(fields["hold"])
	rec.Detail, _ = scalarText(fields["detail"])
	rec.Note, _ = scalarText(fields["note"])
	rec.Notes, _ = scalarText(fields["notes"])
	for _, name := range intensityFields {
		raw, ok := fields[name]
		if !ok || isJSONNull(raw) {
			continue
		}
		rec.Intensity = rawText(raw)
		rec.HasIntensity = true
		break
	}
	return rec
}

// attributes returns the record as a field bag. Records decoded from JSON keep
// their original fields.
func (r *ExerciseRecord) attributes() map[string]json.RawMessage {
	if r.fields != nil {
		return r.fields
	}
	out := make(map[string]json.RawMessage)
	put := func(name, value string) {
		if value == "" {
			return
		}
		encoded, _ := json.Marshal(value)
		out[name] = encoded
	}
	put("key", r.Key)
	put("exercise", r.Name)
	for _, f := range detailFields {
		put(f.name, r.value(f.name))
	}
	if r.HasIntensity {
		if n, err := strconv.Atoi(strings.TrimSpace(r.Intensity)); err == nil {
			out["intensity"] = json.RawMessage(strconv.Itoa(n))
		} else {
			encoded, _ := json.Marshal(r.Intensity)
			out["intensity"] = encoded
		}
	}
	return out
}

func (r *ExerciseRecord) value(field string) string {
	switch field {
	case "sets":
		return r.Sets
	case "reps":
		return r.Reps
	case "rounds":
		return r.Rounds
	case "minutes":
		return r.Minutes
	case "seconds":
		return r.Seconds
	case "duration":
		return r.Duration
	case "distance":
		return r.Distance
	case "hold":
		return r.Hold
	case "detail":
		return r.Detail
	case "note":
		return r.Note
	case "notes":
		return r.Notes
	default:
		return ""
	}
}

// fallbackLabel serializes an anonymous record with sorted keys so the derived
// key is stable across calls.
func (r *ExerciseRecord) fallbackLabel() string {
	encoded, err := json.Marshal(r.attributes())
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// ExerciseItem is a normalized plan entry.
type ExerciseItem struct {
	Key              string   `json:"key"`
	Label            string   `json:"exercise"`
	Detail           string   `json:"detail,omitempty"`
	Intensity        int      `json:"intensity"`
	DisplayIntensity *int     `json:"displayIntensity,omitempty"`
	Raw              RawEntry `json:"-"`
}

// ExplicitIntensity reports whether the source entry set an intensity itself.
func (i ExerciseItem) ExplicitIntensity() bool {
	return i.DisplayIntensity != nil
}

// NormalizeExercises turns raw entries into items with unique keys. Duplicate
// base keys get " #N" suffixes in first-seen order.
func NormalizeExercises(entries []RawEntry, defaultIntensity int) []ExerciseItem {
	seen := make(map[string]int, len(entries))
	out := make([]ExerciseItem, 0, len(entries))
	for _, entry := range entries {
		item := ExerciseItem{Raw: entry, Intensity: defaultIntensity}
		if entry.Record == nil {
			item.Label = entry.Label
			item.Key = nextKey(seen, entry.Label)
			out = append(out, item)
			continue
		}

		rec := entry.Record
		item.Label = rec.Name
		if item.Label == "" {
			item.Label = rec.fallbackLabel()
		}
		item.Detail = buildDetail(rec)
		if rec.Key != "" {
			item.Key = rec.Key
		} else {
			base := item.Label
			if item.Detail != "" {
				base = fmt.Sprintf("%s (%s)", item.Label, item.Detail)
			}
			item.Key = nextKey(seen, base)
		}
		if rec.HasIntensity {
			intensity := ParseIntensity(rec.Intensity, defaultIntensity)
			item.Intensity = intensity
			item.DisplayIntensity = &intensity
		}
		out = append(out, item)
	}
	return out
}

func nextKey(seen map[string]int, base string) string {
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("%s #%d", base, n)
	}
	return base
}

func buildDetail(rec *ExerciseRecord) string {
	parts := make([]string, 0, 4)
	for _, f := range detailFields {
		if v := rec.value(f.name); v != "" {
			parts = append(parts, v+f.suffix)
		}
	}
	return strings.Join(parts, detailSeparator)
}

// DecodeEntries parses a stored item list. Valid JSON that is not an array
// yields no entries.
func DecodeEntries(data []byte) ([]RawEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, ErrMalformedEntries
		}
		return nil, nil
	}
	var out []RawEntry
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntries, err)
	}
	return out, nil
}

func EncodeEntries(entries []RawEntry) (string, error) {
	if entries == nil {
		entries = []RawEntry{}
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// scalarText renders a JSON value the way a label detail shows it. Falsy values
// (null, false, 0, "") are absent; any non-empty string is present.
func scalarText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isJSONNull(trimmed) {
		return "", false
	}
	text := rawText(trimmed)
	switch {
	case text == "":
		return "", false
	case trimmed[0] == '"':
		return text, true
	case text == "false":
		return "", false
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == 0 {
		return "", false
	}
	return text, true
}

func rawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case c == '-' || (c >= '0' && c <= '9'):
		// 3.0 and 3 render alike.
		if f, err := strconv.ParseFloat(string(trimmed), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

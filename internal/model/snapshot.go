package model

import (
	"bytes"
	"encoding/json"
)

// CompletedItem is one entry of a completed-items snapshot.
type CompletedItem struct {
	Exercise  string `json:"exercise"`
	Completed bool   `json:"completed"`
}

// CompletedSnapshot lists completed entries in log order.
func CompletedSnapshot(entries []LogEntry) []CompletedItem {
	out := make([]CompletedItem, 0, len(entries))
	for _, entry := range entries {
		if entry.Completed {
			out = append(out, CompletedItem{Exercise: entry.Exercise, Completed: true})
		}
	}
	return out
}

func EncodeSnapshot(items []CompletedItem) (string, error) {
	if items == nil {
		items = []CompletedItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// DecodeSnapshot reads a stored snapshot. Legacy rows may hold bare strings or
// records keyed by any label alias; unreadable rows decode as empty.
func DecodeSnapshot(data []byte) []CompletedItem {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return []CompletedItem{}
	}
	out := make([]CompletedItem, 0, len(raw))
	for _, item := range raw {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '"':
			out = append(out, CompletedItem{Exercise: rawText(trimmed), Completed: true})
		case '{':
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(trimmed, &fields); err != nil {
				continue
			}
			label := ""
			for _, name := range nameFields {
				if v, ok := scalarText(fields[name]); ok {
					label = v
					break
				}
			}
			if label == "" {
				continue
			}
			out = append(out, CompletedItem{Exercise: label, Completed: true})
		}
	}
	return out
}

// IsPlaceholderSnapshot reports whether items carry no real detail: empty, or
// made only of the channel's agent sentinel label.
func IsPlaceholderSnapshot(items []CompletedItem, ch Channel) bool {
	if len(items) == 0 {
		return true
	}
	sentinel := ch.PlaceholderLabel()
	for _, item := range items {
		if item.Exercise != sentinel {
			return false
		}
	}
	return true
}

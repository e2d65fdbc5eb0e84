package model

import "strings"

// MaxAgentIntensity bounds a single agent-reported day entry.
const MaxAgentIntensity = 4

// ParseIntensity reads a leading integer from text. Non-numeric text yields the
// fallback and negative values clamp to zero.
func ParseIntensity(text string, fallback int) int {
	s := strings.TrimSpace(text)
	if s == "" {
		return fallback
	}
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n < 1<<30 {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return fallback
	}
	if negative {
		return 0
	}
	return n
}

// ClampIntensity floors v at zero.
func ClampIntensity(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// MapIntensityToLevel buckets a raw day total onto the 0..4 display scale.
func MapIntensityToLevel(total int) int {
	switch {
	case total <= 0:
		return 0
	case total <= 4:
		return 1
	case total <= 7:
		return 2
	case total <= 10:
		return 3
	default:
		return 4
	}
}

// LogEntry is one completion flag for an exercise key.
type LogEntry struct {
	Exercise  string `json:"exercise"`
	Completed bool   `json:"completed"`
}

// AccumulateIntensity sums the intensity of completed entries. Keys missing
// from items count as 1.
func AccumulateIntensity(entries []LogEntry, items []ExerciseItem) int {
	byKey := make(map[string]int, len(items))
	for _, item := range items {
		byKey[item.Key] = ClampIntensity(item.Intensity)
	}
	total := 0
	for _, entry := range entries {
		if !entry.Completed {
			continue
		}
		if v, ok := byKey[entry.Exercise]; ok {
			total += v
			continue
		}
		total++
	}
	return ClampIntensity(total)
}

// AllCompleted reports whether there is at least one entry and every entry is
// completed.
func AllCompleted(entries []LogEntry) bool {
	if len(entries) == 0 {
		return false
	}
	for _, entry := range entries {
		if !entry.Completed {
			return false
		}
	}
	return true
}

package model

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidationError rejects a request before any state changes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model: invalid %s: %s", e.Field, e.Message)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateDate checks the YYYY-MM-DD form and that the day exists.
func ValidateDate(date string) error {
	if date == "" {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if !datePattern.MatchString(date) {
		return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("no such day %q", date)}
	}
	return nil
}

// ResolveDate returns requested when it is valid and otherwise the local
// calendar date of now.
func ResolveDate(requested string, now time.Time) string {
	if ValidateDate(requested) == nil {
		return requested
	}
	return now.Format(DateLayout)
}

// AddDays shifts a valid date string by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

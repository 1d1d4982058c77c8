package records

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports a malformed or out-of-enumeration input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DecodeError reports a stored item that matches no known entity shape.
type DecodeError struct {
	SK    string
	Cause error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %q: %v", e.SK, e.Cause) }
func (e *DecodeError) Unwrap() error { return e.Cause }

// ParseMood validates a client-supplied feeling.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &ValidationError{Field: "feeling", Reason: fmt.Sprintf("%q is not one of %v", s, Moods)}
	}
	return m, nil
}

// ParseDayPeriod validates a client-supplied day period.
func ParseDayPeriod(s string) (DayPeriod, error) {
	p := DayPeriod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", &ValidationError{Field: "dayPeriod", Reason: fmt.Sprintf("%q is not morning or evening", s)}
	}
	return p, nil
}

// ValidateEnergy checks e against [MinEnergy, MaxEnergy].
func ValidateEnergy(e int) error {
	if e < MinEnergy || e > MaxEnergy {
		return &ValidationError{Field: "energy", Reason: fmt.Sprintf("%d is outside [%d, %d]", e, MinEnergy, MaxEnergy)}
	}
	return nil
}

// ParseDateField parses a client-supplied date, reporting failures as a ValidationError.
func ParseDateField(field, s string) (time.Time, error) {
	t, err := ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: err.Error()}
	}
	return t, nil
}

// Package cycle infers the current menstrual-cycle position from reported
// period start dates.
package cycle

import (
	"sort"
	"time"

	"github.com/mikecbrant/glowcycle/internal/records"
)

// Phase is one of the four coarse cycle bands.
type Phase string

const (
	Menstrual  Phase = "menstrual"
	Follicular Phase = "follicular"
	Ovulation  Phase = "ovulation"
	Luteal     Phase = "luteal"
)

const (
	DefaultDay    = 14
	DefaultLength = 28
	MinLength     = 21
	MaxLength     = 40
	// MenstrualDays is the fixed length of the menstrual band.
	MenstrualDays = 5
)

// Estimate is the inferred cycle position. The Defaulted flags report when a
// value is a substitute rather than derived from the user's history.
type Estimate struct {
	Day                 int
	Length              int
	Phase               Phase
	DaysSinceLastPeriod int
	DayDefaulted        bool
	LengthDefaulted     bool
}

// Defaulted reports whether any part of e was substituted.
func (e Estimate) Defaulted() bool { return e.DayDefaulted || e.LengthDefaulted }

// PhaseFor classifies day within a cycle of the given length. Bands are
// evaluated in order and the first match wins.
func PhaseFor(day, length int) Phase {
	switch {
	case day <= MenstrualDays:
		return Menstrual
	case day <= length*43/100:
		return Follicular
	case day <= length*57/100:
		return Ovulation
	default:
		return Luteal
	}
}

// Estimate derives the cycle position at now from periods. It never fails:
// missing history yields the default day and length, and an implausible gap
// between the two latest periods leaves the default length in place.
func Estimate(periods []records.PeriodEntry, now time.Time) Estimate {
	if len(periods) == 0 {
		return Estimate{
			Day:             DefaultDay,
			Length:          DefaultLength,
			Phase:           PhaseFor(DefaultDay, DefaultLength),
			DayDefaulted:    true,
			LengthDefaulted: true,
		}
	}

	// store order is not trusted; legacy keys do not sort chronologically
	sorted := make([]records.PeriodEntry, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	// a date stored under both key encodings is one period
	sorted = dedupeDates(sorted)

	est := Estimate{Length: DefaultLength, LengthDefaulted: true}
	est.DaysSinceLastPeriod = daysBetween(sorted[0].Date, now)
	if est.DaysSinceLastPeriod < 0 {
		est.DaysSinceLastPeriod = 0
	}
	if len(sorted) >= 2 {
		if gap := daysBetween(sorted[1].Date, sorted[0].Date); gap >= MinLength && gap <= MaxLength {
			est.Length = gap
			est.LengthDefaulted = false
		}
	}
	est.Day = est.DaysSinceLastPeriod%est.Length + 1
	est.Phase = PhaseFor(est.Day, est.Length)
	return est
}

func dedupeDates(sorted []records.PeriodEntry) []records.PeriodEntry {
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if !records.Day(p.Date).Equal(records.Day(out[len(out)-1].Date)) {
			out = append(out, p)
		}
	}
	return out
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	return int(records.Day(b).Sub(records.Day(a)).Hours() / 24)
}

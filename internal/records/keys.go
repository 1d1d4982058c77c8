package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikecbrant/glowcycle/internal/store"
)

// Sort-key literals and prefixes.
const (
	ProfileSK    = "USER_PROFILE"
	JudgeSetupSK = "JUDGE_SETUP"
	PeriodPrefix = "PERIOD#"
	SkinPrefix   = "SKIN#"
)

// DateLayout is the order-preserving date encoding used in new sort keys.
// LegacyDateLayout (day-month-year) is only accepted when decoding.
const (
	DateLayout       = "2006-01-02"
	LegacyDateLayout = "02-01-2006"
	clockLayout      = "15-04-05"
)

// JournalSlotPolicy documents the journal uniqueness invariant: one entry per
// (date, day-period); saving the same slot again replaces it.
const JournalSlotPolicy = "date#day-period"

// JournalPrefix is empty: journal keys are the only ones starting with a digit.
const JournalPrefix = ""

// DatedQueries splits the keys under prefix whose next segment is a date. The
// first query covers ISO dates in the years 2000-2099, which sort
// chronologically, and is capped at limit. Legacy day-month-year keys
// interleave with those (PERIOD#21-01-2024 sorts above PERIOD#2025-03-17), so
// the remaining queries cover every other key under prefix without a cap.
// Callers merge, re-sort by date and apply limit themselves.
func DatedQueries(prefix string, limit int) []store.Query {
	lo, hi := prefix, prefix+"\uffff"
	if prefix == JournalPrefix {
		lo, hi = "0", "9\uffff"
	}
	return []store.Query{
		{Condition: store.Between(prefix+"200", prefix+"209\uffff"), Descending: true, Limit: limit},
		{Condition: store.Between(lo, prefix+"20-\uffff"), Descending: true},
		{Condition: store.Between(prefix+"21", hi), Descending: true},
	}
}

// QueryDated runs DatedQueries for user and concatenates the results.
func QueryDated(ctx context.Context, r store.Reader, user, prefix string, limit int) ([]store.Item, error) {
	var out []store.Item
	for _, q := range DatedQueries(prefix, limit) {
		items, err := r.Query(ctx, user, q)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

// JournalSK returns the sort key of the journal slot for date and period.
func JournalSK(date time.Time, period DayPeriod) string {
	return fmt.Sprintf("%s#%s", date.Format(DateLayout), period)
}

// PeriodSK returns the sort key of a period entry.
func PeriodSK(date time.Time) string { return PeriodPrefix + date.Format(DateLayout) }

// LegacyPeriodSK returns the day-month-year sort key earlier deployments wrote
// for a period starting on date.
func LegacyPeriodSK(date time.Time) string { return PeriodPrefix + date.Format(LegacyDateLayout) }

// SkinSK returns the sort key of a skin analysis captured at t (UTC, second precision).
func SkinSK(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%s#%s", SkinPrefix, t.Format(DateLayout), t.Format(clockLayout))
}

// ParseDate parses an ISO or legacy day-month-year date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(LegacyDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is neither YYYY-MM-DD nor DD-MM-YYYY", s)
	}
	return t, nil
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type sortKey struct {
	kind   Kind
	date   time.Time
	period DayPeriod
	at     time.Time
}

func parseSortKey(sk string) (sortKey, error) {
	switch {
	case sk == ProfileSK:
		return sortKey{kind: KindProfile}, nil
	case sk == JudgeSetupSK:
		return sortKey{kind: KindJudgeSetup}, nil
	case strings.HasPrefix(sk, PeriodPrefix):
		d, err := ParseDate(strings.TrimPrefix(sk, PeriodPrefix))
		if err != nil {
			return sortKey{}, err
		}
		return sortKey{kind: KindPeriod, date: d}, nil
	case strings.HasPrefix(sk, SkinPrefix):
		parts := strings.Split(strings.TrimPrefix(sk, SkinPrefix), "#")
		if len(parts) != 2 {
			return sortKey{}, fmt.Errorf("skin key needs date#time")
		}
		d, err := ParseDate(parts[0])
		if err != nil {
			return sortKey{}, err
		}
		clock, err := time.Parse(clockLayout, parts[1])
		if err != nil {
			return sortKey{}, fmt.Errorf("skin time %q is not HH-MM-SS", parts[1])
		}
		at := d.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute + time.Duration(clock.Second())*time.Second)
		return sortKey{kind: KindSkin, date: d, at: at}, nil
	default:
		parts := strings.Split(sk, "#")
		if len(parts) != 2 {
			return sortKey{}, fmt.Errorf("unknown sort key shape")
		}
		d, err := ParseDate(parts[0])
		if err != nil {
			return sortKey{}, err
		}
		p := DayPeriod(parts[1])
		if !p.Valid() {
			return sortKey{}, fmt.Errorf("unknown day period %q", parts[1])
		}
		return sortKey{kind: KindJournal, date: d, period: p}, nil
	}
}

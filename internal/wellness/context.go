package wellness

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mikecbrant/glowcycle/internal/cycle"
	"github.com/mikecbrant/glowcycle/internal/patterns"
	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/store"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
)

// Limits bound the three context queries. Zero fields use DefaultLimits.
type Limits struct {
	Periods  int
	Journals int
	Skins    int
}

// DefaultLimits are the query caps used by the service.
var DefaultLimits = Limits{Periods: 10, Journals: 20, Skins: 5}

func (l Limits) withDefaults() Limits {
	if l.Periods <= 0 {
		l.Periods = DefaultLimits.Periods
	}
	if l.Journals <= 0 {
		l.Journals = DefaultLimits.Journals
	}
	if l.Skins <= 0 {
		l.Skins = DefaultLimits.Skins
	}
	return l
}

// UserContext is the merged summary of a user's recent history.
type UserContext struct {
	User     string
	Now      time.Time
	Cycle    cycle.Estimate
	Patterns patterns.Summary
	// LatestJournal and LatestSkin are nil when the user has none.
	LatestJournal *records.JournalEntry
	LatestSkin    *records.SkinAnalysis

	PeriodCount  int
	JournalCount int
	SkinCount    int
	// Skipped counts stored items that failed to decode.
	Skipped int
}

// HasAnyData reports whether the user has at least one period, journal or
// skin record.
func (u UserContext) HasAnyData() bool {
	return u.PeriodCount > 0 || u.JournalCount > 0 || u.SkinCount > 0
}

// ContextBuilder assembles a UserContext from the store.
type ContextBuilder struct {
	reader   store.Reader
	limits   Limits
	logger   logging.Logger
	observer Observer
}

// NewContextBuilder returns a builder reading from r.
func NewContextBuilder(r store.Reader, limits Limits, logger logging.Logger, observer Observer) *ContextBuilder {
	return &ContextBuilder{
		reader:   r,
		limits:   limits.withDefaults(),
		logger:   logging.OrNop(logger),
		observer: observerOrNop(observer),
	}
}

// Build reads the user's recent periods, journals and skin analyses and merges
// them. Items that fail to decode are logged and skipped; store failures are
// returned as *UpstreamError.
func (b *ContextBuilder) Build(ctx context.Context, user string, now time.Time) (UserContext, error) {
	if user == "" {
		return UserContext{}, &records.ValidationError{Field: "user", Reason: "must not be empty"}
	}
	queries := []struct {
		prefix string
		limit  int
	}{
		{records.PeriodPrefix, b.limits.Periods},
		{records.JournalPrefix, b.limits.Journals},
		{records.SkinPrefix, b.limits.Skins},
	}
	results := make([][]store.Item, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			items, err := records.QueryDated(gctx, b.reader, user, q.prefix, q.limit)
			results[i] = items
			return err
		})
	}
	if err := g.Wait(); err != nil {
		b.logger.Error("wellness.context.query", logging.Fields{"user": user, "error": err.Error()})
		return UserContext{}, &UpstreamError{Op: "store.query", Cause: err}
	}

	uc := UserContext{User: user, Now: now}
	var (
		periods  []records.PeriodEntry
		journals []records.JournalEntry
		skins    []records.SkinAnalysis
	)
	for _, items := range results {
		for _, it := range items {
			rec, err := records.Decode(it)
			if err != nil {
				uc.Skipped++
				b.observer.RecordSkipped(skipReason(err))
				b.logger.Warn("wellness.context.skip", logging.Fields{"user": user, "sk": it.SK, "error": err.Error()})
				continue
			}
			switch r := rec.(type) {
			case records.PeriodEntry:
				periods = append(periods, r)
			case records.JournalEntry:
				journals = append(journals, r)
			case records.SkinAnalysis:
				skins = append(skins, r)
			}
		}
	}

	// legacy day-month-year keys come back out of order
	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Date.After(periods[j].Date) })
	sort.SliceStable(journals, func(i, j int) bool { return journalAfter(journals[i], journals[j]) })
	sort.SliceStable(skins, func(i, j int) bool { return skins[i].TakenAt.After(skins[j].TakenAt) })
	periods = capAt(periods, b.limits.Periods)
	journals = capAt(journals, b.limits.Journals)
	skins = capAt(skins, b.limits.Skins)

	uc.PeriodCount, uc.JournalCount, uc.SkinCount = len(periods), len(journals), len(skins)
	uc.Cycle = cycle.Estimate(periods, now)
	uc.Patterns = patterns.Aggregate(journals)
	if len(journals) > 0 {
		uc.LatestJournal = &journals[0]
	}
	if len(skins) > 0 {
		uc.LatestSkin = &skins[0]
	}
	b.logger.Debug("wellness.context.built", logging.Fields{
		"user":     user,
		"periods":  uc.PeriodCount,
		"journals": uc.JournalCount,
		"skins":    uc.SkinCount,
		"skipped":  uc.Skipped,
		"phase":    string(uc.Cycle.Phase),
	})
	return uc, nil
}

func journalAfter(a, b records.JournalEntry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.DayPeriod == records.Evening && b.DayPeriod == records.Morning
}

func capAt[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func skipReason(err error) string {
	var ve *records.ValidationError
	if errors.As(err, &ve) {
		return "invalid_" + ve.Field
	}
	return "decode"
}

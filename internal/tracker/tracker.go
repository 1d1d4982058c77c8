// Package tracker implements the record operations behind the journal, period,
// skin and profile endpoints.
package tracker

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/store"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
)

// ErrUserExists is returned by CreateProfile when the user id is taken.
var ErrUserExists = errors.New("tracker: user already exists")

// clearConcurrency bounds parallel deletes in ClearUser.
const clearConcurrency = 8

// Tracker reads and writes one user's records.
type Tracker struct {
	store  store.Store
	logger logging.Logger
	now    func() time.Time
}

// New returns a Tracker over s.
func New(s store.Store, logger logging.Logger) *Tracker {
	return &Tracker{store: s, logger: logging.OrNop(logger), now: time.Now}
}

// JournalInput is a client-supplied journal entry.
type JournalInput struct {
	User     string
	Date     string
	Night    bool
	Feeling  string
	Energy   int
	Thoughts string
	Tags     []string
}

// SaveJournal validates in and writes it to its (date, day-period) slot,
// replacing any entry already there.
func (t *Tracker) SaveJournal(ctx context.Context, in JournalInput) (records.JournalEntry, error) {
	if err := requireUser(in.User); err != nil {
		return records.JournalEntry{}, err
	}
	date, err := records.ParseDateField("date", in.Date)
	if err != nil {
		return records.JournalEntry{}, err
	}
	mood, err := records.ParseMood(in.Feeling)
	if err != nil {
		return records.JournalEntry{}, err
	}
	if err := records.ValidateEnergy(in.Energy); err != nil {
		return records.JournalEntry{}, err
	}
	e := records.JournalEntry{
		User:      in.User,
		Date:      date,
		DayPeriod: records.DayPeriodFor(in.Night),
		Mood:      mood,
		Energy:    in.Energy,
		Thoughts:  strings.TrimSpace(in.Thoughts),
		Tags:      cleanTags(in.Tags),
	}
	if err := t.store.Put(ctx, records.Encode(e)); err != nil {
		return records.JournalEntry{}, err
	}
	t.logger.Info("tracker.journal.saved", logging.Fields{"user": e.User, "slot": records.JournalSK(e.Date, e.DayPeriod)})
	return e, nil
}

// ListJournal returns up to limit journal entries, newest first.
func (t *Tracker) ListJournal(ctx context.Context, user string, limit int) ([]records.JournalEntry, error) {
	recs, err := t.listDated(ctx, user, records.JournalPrefix, limit)
	if err != nil {
		return nil, err
	}
	out := collect[records.JournalEntry](recs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].DayPeriod == records.Evening && out[j].DayPeriod == records.Morning
	})
	return capAt(out, limit), nil
}

// PeriodInput is a client-supplied period start.
type PeriodInput struct {
	User        string
	Date        string
	UserAge     int
	CycleLength int
	Notes       string
}

// SavePeriod records a period start date.
func (t *Tracker) SavePeriod(ctx context.Context, in PeriodInput) (records.PeriodEntry, error) {
	if err := requireUser(in.User); err != nil {
		return records.PeriodEntry{}, err
	}
	date, err := records.ParseDateField("period_date", in.Date)
	if err != nil {
		return records.PeriodEntry{}, err
	}
	if in.UserAge < 0 {
		return records.PeriodEntry{}, &records.ValidationError{Field: "user_age", Reason: "must not be negative"}
	}
	if in.CycleLength < 0 {
		return records.PeriodEntry{}, &records.ValidationError{Field: "cycle_length", Reason: "must not be negative"}
	}
	e := records.PeriodEntry{
		User:        in.User,
		Date:        date,
		UserAge:     in.UserAge,
		CycleLength: in.CycleLength,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   t.now().UTC(),
	}
	if err := t.store.Put(ctx, records.Encode(e)); err != nil {
		return records.PeriodEntry{}, err
	}
	// drop a day-month-year copy of the same date so it is not listed twice
	if err := t.store.Delete(ctx, e.User, records.LegacyPeriodSK(e.Date)); err != nil {
		return records.PeriodEntry{}, err
	}
	t.logger.Info("tracker.period.saved", logging.Fields{"user": e.User, "date": e.Date.Format(records.DateLayout)})
	return e, nil
}

// ListPeriods returns every period entry, newest first. Malformed entries are
// skipped.
func (t *Tracker) ListPeriods(ctx context.Context, user string) ([]records.PeriodEntry, error) {
	recs, err := t.list(ctx, user, store.Query{Condition: store.BeginsWith(records.PeriodPrefix), Descending: true})
	if err != nil {
		return nil, err
	}
	out := collect[records.PeriodEntry](recs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// DeletePeriod removes the period entry for date under both the current and
// the legacy key encoding.
func (t *Tracker) DeletePeriod(ctx context.Context, user, date string) error {
	if err := requireUser(user); err != nil {
		return err
	}
	d, err := records.ParseDateField("period_date", date)
	if err != nil {
		return err
	}
	for _, sk := range []string{records.PeriodSK(d), records.LegacyPeriodSK(d)} {
		if err := t.store.Delete(ctx, user, sk); err != nil {
			return err
		}
	}
	t.logger.Info("tracker.period.deleted", logging.Fields{"user": user, "date": d.Format(records.DateLayout)})
	return nil
}

// SaveSkinAnalysis stores a, stamping TakenAt with the current time when unset.
func (t *Tracker) SaveSkinAnalysis(ctx context.Context, a records.SkinAnalysis) (records.SkinAnalysis, error) {
	if err := requireUser(a.User); err != nil {
		return records.SkinAnalysis{}, err
	}
	if a.TakenAt.IsZero() {
		a.TakenAt = t.now()
	}
	a.TakenAt = a.TakenAt.UTC().Truncate(time.Second)
	if a.OverallHealth < 0 || a.OverallHealth > 100 {
		return records.SkinAnalysis{}, &records.ValidationError{Field: "overall_skin_health", Reason: "must be within [0, 100]"}
	}
	if err := t.store.Put(ctx, records.Encode(a)); err != nil {
		return records.SkinAnalysis{}, err
	}
	t.logger.Info("tracker.skin.saved", logging.Fields{"user": a.User, "sk": records.SkinSK(a.TakenAt)})
	return a, nil
}

// ListSkinAnalyses returns up to limit analyses, newest first.
func (t *Tracker) ListSkinAnalyses(ctx context.Context, user string, limit int) ([]records.SkinAnalysis, error) {
	recs, err := t.listDated(ctx, user, records.SkinPrefix, limit)
	if err != nil {
		return nil, err
	}
	out := collect[records.SkinAnalysis](recs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return capAt(out, limit), nil
}

// CreateProfile registers user. passwordHash is stored as given.
func (t *Tracker) CreateProfile(ctx context.Context, user, displayName, passwordHash string) (records.Profile, error) {
	if err := requireUser(user); err != nil {
		return records.Profile{}, err
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = user
	}
	p := records.Profile{User: user, DisplayName: name, PasswordHash: passwordHash}
	if err := t.store.Create(ctx, records.Encode(p)); err != nil {
		if errors.Is(err, store.ErrExists) {
			return records.Profile{}, ErrUserExists
		}
		return records.Profile{}, err
	}
	t.logger.Info("tracker.profile.created", logging.Fields{"user": user})
	return p, nil
}

// GetProfile returns the profile of user or store.ErrNotFound.
func (t *Tracker) GetProfile(ctx context.Context, user string) (records.Profile, error) {
	it, err := t.store.Get(ctx, user, records.ProfileSK)
	if err != nil {
		return records.Profile{}, err
	}
	rec, err := records.Decode(it)
	if err != nil {
		return records.Profile{}, err
	}
	return rec.(records.Profile), nil
}

// CompleteSetup marks the user's onboarding as done.
func (t *Tracker) CompleteSetup(ctx context.Context, user string) (records.Profile, error) {
	p, err := t.GetProfile(ctx, user)
	if err != nil {
		return records.Profile{}, err
	}
	p.SetupCompleted = true
	if err := t.store.Put(ctx, records.Encode(p)); err != nil {
		return records.Profile{}, err
	}
	return p, nil
}

// SaveJudgeSetup records completed onboarding data for a demo account.
func (t *Tracker) SaveJudgeSetup(ctx context.Context, user string, profileData map[string]string) (records.JudgeSetup, error) {
	if err := requireUser(user); err != nil {
		return records.JudgeSetup{}, err
	}
	j := records.JudgeSetup{
		User:        user,
		Completed:   true,
		Timestamp:   t.now().UTC().Format(time.RFC3339),
		ProfileData: profileData,
	}
	if err := t.store.Put(ctx, records.Encode(j)); err != nil {
		return records.JudgeSetup{}, err
	}
	return j, nil
}

// JudgeSetupCompleted reports whether user has a completed setup record.
func (t *Tracker) JudgeSetupCompleted(ctx context.Context, user string) (bool, error) {
	it, err := t.store.Get(ctx, user, records.JudgeSetupSK)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	rec, err := records.Decode(it)
	if err != nil {
		return false, err
	}
	return rec.(records.JudgeSetup).Completed, nil
}

// ClearUser deletes every record in the user's partition and returns how many
// were removed.
func (t *Tracker) ClearUser(ctx context.Context, user string) (int, error) {
	if err := requireUser(user); err != nil {
		return 0, err
	}
	items, err := t.store.Query(ctx, user, store.Query{})
	if err != nil {
		return 0, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(clearConcurrency)
	for _, it := range items {
		g.Go(func() error { return t.store.Delete(gctx, user, it.SK) })
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	t.logger.Warn("tracker.user.cleared", logging.Fields{"user": user, "items": len(items)})
	return len(items), nil
}

func (t *Tracker) list(ctx context.Context, user string, q store.Query) ([]records.Record, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	items, err := t.store.Query(ctx, user, q)
	if err != nil {
		return nil, err
	}
	return t.decodeAll(user, items), nil
}

// listDated reads the dated records under prefix. The result is uncapped and
// unordered until the caller sorts it.
func (t *Tracker) listDated(ctx context.Context, user, prefix string, limit int) ([]records.Record, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	items, err := records.QueryDated(ctx, t.store, user, prefix, limit)
	if err != nil {
		return nil, err
	}
	return t.decodeAll(user, items), nil
}

func (t *Tracker) decodeAll(user string, items []store.Item) []records.Record {
	out := make([]records.Record, 0, len(items))
	for _, it := range items {
		rec, err := records.Decode(it)
		if err != nil {
			t.logger.Warn("tracker.list.skip", logging.Fields{"user": user, "sk": it.SK, "error": err.Error()})
			continue
		}
		out = append(out, rec)
	}
	return out
}

func capAt[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func collect[T records.Record](recs []records.Record) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func requireUser(user string) error {
	if strings.TrimSpace(user) == "" {
		return &records.ValidationError{Field: "user", Reason: "must not be empty"}
	}
	return nil
}

func cleanTags(tags []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/tracker"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
)

// Stats summarises a seed run.
type Stats struct {
	Users  int
	Writes int
}

// Seeder writes fixtures through a Tracker, one limiter token per write.
type Seeder struct {
	tracker *tracker.Tracker
	limiter *rate.Limiter
	logger  logging.Logger
	now     func() time.Time
}

// NewSeeder returns a Seeder; a nil limiter does not throttle.
func NewSeeder(tr *tracker.Tracker, limiter *rate.Limiter, logger logging.Logger) *Seeder {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Seeder{tracker: tr, limiter: limiter, logger: logging.OrNop(logger), now: time.Now}
}

// Seed writes every user's records. Existing profiles are kept; journal slots
// and period or skin keys already present are overwritten.
func (s *Seeder) Seed(ctx context.Context, users []User) (Stats, error) {
	var st Stats
	now := s.now()
	for _, u := range users {
		n, err := s.seedUser(ctx, u, now)
		st.Writes += n
		if err != nil {
			return st, fmt.Errorf("seed %s: %w", u.User, err)
		}
		st.Users++
		s.logger.Info("fixtures.user.seeded", logging.Fields{"user": u.User, "writes": n})
	}
	return st, nil
}

func (s *Seeder) seedUser(ctx context.Context, u User, now time.Time) (int, error) {
	writes := 0
	write := func(f func() error) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := f(); err != nil {
			return err
		}
		writes++
		return nil
	}

	if u.DisplayName != "" {
		err := write(func() error {
			_, err := s.tracker.CreateProfile(ctx, u.User, u.DisplayName, "")
			return err
		})
		if errors.Is(err, tracker.ErrUserExists) {
			s.logger.Debug("fixtures.profile.exists", logging.Fields{"user": u.User})
		} else if err != nil {
			return writes, err
		}
		if u.SetupCompleted {
			if err := write(func() error {
				_, err := s.tracker.CompleteSetup(ctx, u.User)
				return err
			}); err != nil {
				return writes, err
			}
		}
	}
	if u.JudgeSetup != nil {
		if err := write(func() error {
			_, err := s.tracker.SaveJudgeSetup(ctx, u.User, u.JudgeSetup)
			return err
		}); err != nil {
			return writes, err
		}
	}
	for i, p := range u.Periods {
		day, err := p.Resolve(now)
		if err != nil {
			return writes, fmt.Errorf("period #%d: %w", i+1, err)
		}
		if err := write(func() error {
			_, err := s.tracker.SavePeriod(ctx, tracker.PeriodInput{
				User:        u.User,
				Date:        day.Format(records.DateLayout),
				UserAge:     p.UserAge,
				CycleLength: p.CycleLength,
				Notes:       p.Notes,
			})
			return err
		}); err != nil {
			return writes, err
		}
	}
	for i, j := range u.Journals {
		day, err := j.Resolve(now)
		if err != nil {
			return writes, fmt.Errorf("journal #%d: %w", i+1, err)
		}
		if err := write(func() error {
			_, err := s.tracker.SaveJournal(ctx, tracker.JournalInput{
				User:     u.User,
				Date:     day.Format(records.DateLayout),
				Night:    j.Night,
				Feeling:  j.Feeling,
				Energy:   j.Energy,
				Thoughts: j.Thoughts,
				Tags:     j.Tags,
			})
			return err
		}); err != nil {
			return writes, err
		}
	}
	for i, sk := range u.Skins {
		day, err := sk.Resolve(now)
		if err != nil {
			return writes, fmt.Errorf("skin #%d: %w", i+1, err)
		}
		if err := write(func() error {
			_, err := s.tracker.SaveSkinAnalysis(ctx, records.SkinAnalysis{
				User:          u.User,
				TakenAt:       day.Add(12 * time.Hour),
				Summary:       sk.Summary,
				OverallHealth: sk.Health,
				Concerns:      sk.Concerns,
				Issues:        records.SkinIssues{Acne: sk.Acne, Dryness: sk.Dryness, Oiliness: sk.Oiliness, Redness: sk.Redness},
			})
			return err
		}); err != nil {
			return writes, err
		}
	}
	return writes, nil
}

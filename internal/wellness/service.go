package wellness

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mikecbrant/glowcycle/internal/cycle"
	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/store"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
)

// Message sources reported on a Result.
const (
	SourceWelcome   = "welcome"
	SourceGenerator = "generator"
)

// Request asks for a support message for User. DisplayName and Now are optional.
type Request struct {
	User        string
	DisplayName string
	Now         time.Time
}

// Basis is the slice of context a message was generated from.
type Basis struct {
	CyclePhase     cycle.Phase
	CycleDay       int
	CycleLength    int
	Feeling        string
	Energy         int
	CycleDefaulted bool
}

// Result is the caller-facing outcome of Generate.
type Result struct {
	Message     string
	GeneratedAt time.Time
	Source      string
	Basis       Basis
}

// Namer is implemented by generators that report their own source name.
type Namer interface {
	Name() string
}

// Service produces support messages.
type Service struct {
	reader    store.Reader
	builder   *ContextBuilder
	generator MessageGenerator
	logger    logging.Logger
	observer  Observer
	now       func() time.Time
	maxTokens int
	source    string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards.
func WithLogger(l logging.Logger) Option { return func(s *Service) { s.logger = logging.OrNop(l) } }

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option { return func(s *Service) { s.observer = observerOrNop(o) } }

// WithLimits overrides the context query caps.
func WithLimits(l Limits) Option {
	return func(s *Service) { s.builder.limits = l.withDefaults() }
}

// WithClock overrides the time source used when a Request has no Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithMaxOutputTokens overrides DefaultMaxOutputTokens.
func WithMaxOutputTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// NewService wires a Service over r and gen.
func NewService(r store.Reader, gen MessageGenerator, opts ...Option) *Service {
	s := &Service{
		reader:    r,
		generator: gen,
		logger:    logging.NopLogger{},
		observer:  nopObserver{},
		now:       time.Now,
		maxTokens: DefaultMaxOutputTokens,
		source:    SourceGenerator,
	}
	if n, ok := gen.(Namer); ok {
		s.source = n.Name()
	}
	s.builder = NewContextBuilder(r, DefaultLimits, nil, nil)
	for _, opt := range opts {
		opt(s)
	}
	s.builder.logger, s.builder.observer = s.logger, s.observer
	return s
}

// Context builds the UserContext for user without generating a message.
func (s *Service) Context(ctx context.Context, user string, now time.Time) (UserContext, error) {
	return s.builder.Build(ctx, user, now)
}

// Generate returns a support message for req.User. Users without any history
// get WelcomeMessage and the generator is not called. Generator failures and
// empty output are returned as *UpstreamError.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	now := req.Now
	if now.IsZero() {
		now = s.now()
	}
	uc, err := s.builder.Build(ctx, req.User, now)
	if err != nil {
		return Result{}, err
	}
	name := s.DisplayName(ctx, req.User, req.DisplayName)
	feeling, energy := Feeling(uc)
	res := Result{
		GeneratedAt: now,
		Basis: Basis{
			CyclePhase:     uc.Cycle.Phase,
			CycleDay:       uc.Cycle.Day,
			CycleLength:    uc.Cycle.Length,
			Feeling:        feeling,
			Energy:         energy,
			CycleDefaulted: uc.Cycle.Defaulted(),
		},
	}

	if !uc.HasAnyData() {
		res.Message, res.Source = WelcomeMessage(name), SourceWelcome
		s.observer.RecordMessage(SourceWelcome)
		s.logger.Info("wellness.generate.welcome", logging.Fields{"user": req.User})
		return res, nil
	}

	p := BuildPrompt(uc, name)
	p.MaxOutputTokens = s.maxTokens
	start := time.Now()
	raw, err := s.generator.Generate(ctx, p.Text, p.MaxOutputTokens)
	s.observer.ObserveGeneration(s.source, time.Since(start).Seconds(), err)
	if err != nil {
		s.logger.Error("wellness.generate.error", logging.Fields{"user": req.User, "source": s.source, "error": err.Error()})
		return Result{}, &UpstreamError{Op: "generate", Cause: err}
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, &UpstreamError{Op: "generate", Cause: errors.New("empty generator output")}
	}
	msg := Sanitize(raw)
	if msg == "" {
		s.logger.Warn("wellness.generate.unusable", logging.Fields{"user": req.User, "raw": raw})
		return Result{}, &UpstreamError{Op: "generate", Cause: errors.New("generator output has no words after sanitizing")}
	}
	if WordCount(raw) > MaxWords {
		s.logger.Info("wellness.generate.truncated", logging.Fields{"user": req.User, "words": WordCount(raw)})
	}
	res.Message, res.Source = msg, s.source
	s.observer.RecordMessage(s.source)
	s.logger.Info("wellness.generate.ok", logging.Fields{
		"user":  req.User,
		"phase": string(uc.Cycle.Phase),
		"day":   uc.Cycle.Day,
		"words": WordCount(msg),
	})
	return res, nil
}

// DisplayName resolves the name to address user by: the requested name, then
// the stored profile, then DefaultName.
func (s *Service) DisplayName(ctx context.Context, user, requested string) string {
	if n := strings.TrimSpace(requested); n != "" {
		return n
	}
	it, err := s.reader.Get(ctx, user, records.ProfileSK)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("wellness.name.lookup", logging.Fields{"user": user, "error": err.Error()})
		}
		return DefaultName
	}
	rec, err := records.Decode(it)
	if err != nil {
		s.logger.Warn("wellness.name.decode", logging.Fields{"user": user, "error": err.Error()})
		return DefaultName
	}
	if p, ok := rec.(records.Profile); ok && strings.TrimSpace(p.DisplayName) != "" {
		return strings.TrimSpace(p.DisplayName)
	}
	return DefaultName
}

package wellness

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mikecbrant/glowcycle/internal/cycle"
	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/store"
	"github.com/mikecbrant/glowcycle/internal/testutil"
)

var now = time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	out     string
	err     error
	calls   int
	prompt  string
	maxToks int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, maxOutputTokens int) (string, error) {
	f.calls++
	f.prompt, f.maxToks = prompt, maxOutputTokens
	return f.out, f.err
}

func (f *fakeGenerator) Name() string { return "fake" }

type countingObserver struct {
	skipped  map[string]int
	messages map[string]int
	gens     int
	genErrs  int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{skipped: map[string]int{}, messages: map[string]int{}}
}

func (o *countingObserver) RecordSkipped(kind string)  { o.skipped[kind]++ }
func (o *countingObserver) RecordMessage(source string) { o.messages[source]++ }
func (o *countingObserver) ObserveGeneration(_ string, _ float64, err error) {
	o.gens++
	if err != nil {
		o.genErrs++
	}
}

type failingReader struct{ err error }

func (f failingReader) Get(context.Context, string, string) (store.Item, error) {
	return store.Item{}, f.err
}

func (f failingReader) Query(context.Context, string, store.Query) ([]store.Item, error) {
	return nil, f.err
}

func seed(t *testing.T, s store.Store, recs ...records.Record) {
	t.Helper()
	for _, r := range recs {
		require.NoError(t, s.Put(context.Background(), records.Encode(r)))
	}
}

func day(daysAgo int) time.Time { return records.Day(now).AddDate(0, 0, -daysAgo) }

func TestGenerate_NoDataReturnsWelcome(t *testing.T) {
	mem := store.NewMemory()
	// a profile alone is not wellness history
	seed(t, mem, records.Profile{User: "sofia", DisplayName: "Sofia"})
	gen := &fakeGenerator{out: "should not be used"}
	obs := newCountingObserver()
	res, err := NewService(mem, gen, WithObserver(obs)).Generate(context.Background(), Request{User: "sofia", Now: now})
	require.NoError(t, err)
	assert.Equal(t, "Sofia, the more I know about you, the better I can support you", res.Message)
	assert.Equal(t, SourceWelcome, res.Source)
	assert.Zero(t, gen.calls)
	assert.Equal(t, 1, obs.messages[SourceWelcome])
	assert.True(t, res.Basis.CycleDefaulted)
	assert.Equal(t, DefaultFeeling, res.Basis.Feeling)
}

func TestGenerate_NameResolution(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, records.Profile{User: "sofia", DisplayName: "Sofia"})
	svc := NewService(mem, &fakeGenerator{})
	ctx := context.Background()
	assert.Equal(t, "Sof", svc.DisplayName(ctx, "sofia", " Sof "))
	assert.Equal(t, "Sofia", svc.DisplayName(ctx, "sofia", ""))
	assert.Equal(t, DefaultName, svc.DisplayName(ctx, "nobody", ""))
}

func TestGenerate_WithHistory(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem,
		records.PeriodEntry{User: "sofia", Date: day(10)},
		records.PeriodEntry{User: "sofia", Date: day(40)},
		records.JournalEntry{User: "sofia", Date: day(1), DayPeriod: records.Morning, Mood: records.MoodHappy, Energy: 80, Thoughts: "Good run"},
		records.JournalEntry{User: "sofia", Date: day(1), DayPeriod: records.Evening, Mood: records.MoodTired, Energy: 40, Tags: []string{"work"}},
		records.SkinAnalysis{User: "sofia", TakenAt: now.Add(-time.Hour), Issues: records.SkinIssues{Dryness: true}},
	)
	gen := &fakeGenerator{out: "✨ You are doing great today, truly and wonderfully so! ✨"}
	obs := newCountingObserver()
	l := &testutil.BufferLogger{}
	svc := NewService(mem, gen, WithObserver(obs), WithLogger(l), WithMaxOutputTokens(64))
	res, err := svc.Generate(context.Background(), Request{User: "sofia", DisplayName: "Sofia", Now: now})
	require.NoError(t, err)

	assert.Equal(t, "You are doing great today, truly and wonderfully so", res.Message)
	assert.Equal(t, "fake", res.Source)
	assert.Equal(t, now, res.GeneratedAt)
	assert.Equal(t, Basis{CyclePhase: cycle.Follicular, CycleDay: 11, CycleLength: 30, Feeling: "tired", Energy: 40}, res.Basis)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 64, gen.maxToks)
	assert.Contains(t, gen.prompt, "Mood: Tired")
	assert.Contains(t, gen.prompt, "Skin: dryness")
	assert.Equal(t, 1, obs.gens)
	assert.Equal(t, 1, obs.messages["fake"])
	assert.True(t, l.Has("info", "wellness.generate.ok"))
}

func TestGenerate_GeneratorErrorPropagates(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, records.PeriodEntry{User: "sofia", Date: day(3)})
	boom := errors.New("model timeout")
	obs := newCountingObserver()
	_, err := NewService(mem, &fakeGenerator{err: boom}, WithObserver(obs)).Generate(context.Background(), Request{User: "sofia", Now: now})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, obs.genErrs)
}

func TestGenerate_UnusableOutputIsUpstreamError(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, records.PeriodEntry{User: "sofia", Date: day(3)})
	for _, out := range []string{"", "   ", "✨🌸", `""`} {
		_, err := NewService(mem, &fakeGenerator{out: out}).Generate(context.Background(), Request{User: "sofia", Now: now})
		var ue *UpstreamError
		assert.ErrorAs(t, err, &ue, "output %q", out)
	}
}

func TestGenerate_StoreErrorIsUpstreamError(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := NewService(failingReader{err: errors.New("unreachable")}, gen).Generate(context.Background(), Request{User: "sofia", Now: now})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "store.query", ue.Op)
	assert.Zero(t, gen.calls)
}

func TestGenerate_UsesClockWhenNowUnset(t *testing.T) {
	mem := store.NewMemory()
	res, err := NewService(mem, &fakeGenerator{}, WithClock(func() time.Time { return now })).Generate(context.Background(), Request{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, now, res.GeneratedAt)
	assert.Equal(t, WelcomeMessage(DefaultName), res.Message)
}

func TestBuild_HasAnyDataIffRecords(t *testing.T) {
	recs := map[string]records.Record{
		"period":  records.PeriodEntry{User: "u", Date: day(2)},
		"journal": records.JournalEntry{User: "u", Date: day(2), DayPeriod: records.Morning, Mood: records.MoodOkay, Energy: 50},
		"skin":    records.SkinAnalysis{User: "u", TakenAt: now},
	}
	empty, err := NewContextBuilder(store.NewMemory(), Limits{}, nil, nil).Build(context.Background(), "u", now)
	require.NoError(t, err)
	assert.False(t, empty.HasAnyData())
	for name, r := range recs {
		mem := store.NewMemory()
		seed(t, mem, r, records.JudgeSetup{User: "u", Completed: true})
		uc, err := NewContextBuilder(mem, Limits{}, nil, nil).Build(context.Background(), "u", now)
		require.NoError(t, err)
		assert.True(t, uc.HasAnyData(), name)
	}
}

func TestBuild_SkipsUndecodableAndResorts(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem,
		records.JournalEntry{User: "u", Date: day(5), DayPeriod: records.Evening, Mood: records.MoodSad, Energy: 10},
		records.JournalEntry{User: "u", Date: day(0), DayPeriod: records.Morning, Mood: records.MoodAmazing, Energy: 90},
	)
	ctx := context.Background()
	// legacy key from a later month sorts before the ISO keys above
	require.NoError(t, mem.Put(ctx, store.Item{PK: "u", SK: "31-01-2025#morning", Attrs: store.Attributes{
		"feeling": &types.AttributeValueMemberS{Value: "okay"},
		"energy":  &types.AttributeValueMemberN{Value: "50"},
	}}))
	require.NoError(t, mem.Put(ctx, store.Item{PK: "u", SK: "2025-03-19#evening", Attrs: store.Attributes{
		"feeling": &types.AttributeValueMemberS{Value: "furious"},
		"energy":  &types.AttributeValueMemberN{Value: "50"},
	}}))
	require.NoError(t, mem.Put(ctx, store.Item{PK: "u", SK: "PERIOD#not-a-date", Attrs: store.Attributes{}}))

	l := &testutil.BufferLogger{}
	obs := newCountingObserver()
	uc, err := NewContextBuilder(mem, Limits{}, l, obs).Build(ctx, "u", now)
	require.NoError(t, err)
	assert.Equal(t, 2, uc.Skipped)
	assert.Equal(t, 1, obs.skipped["invalid_feeling"])
	assert.Equal(t, 1, obs.skipped["decode"])
	assert.True(t, l.Has("warn", "wellness.context.skip"))
	assert.Equal(t, 3, uc.JournalCount)
	assert.Zero(t, uc.PeriodCount)
	require.NotNil(t, uc.LatestJournal)
	assert.Equal(t, records.MoodAmazing, uc.LatestJournal.Mood)
	assert.InDelta(t, 50.0, uc.Patterns.AvgEnergy, 1e-9)
}

func TestBuild_EmptyUser(t *testing.T) {
	_, err := NewContextBuilder(store.NewMemory(), Limits{}, nil, nil).Build(context.Background(), "", now)
	var ve *records.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestBuild_LatestSkinAndJournalOrdering(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem,
		records.SkinAnalysis{User: "u", TakenAt: now.Add(-48 * time.Hour), Summary: "older"},
		records.SkinAnalysis{User: "u", TakenAt: now.Add(-time.Minute), Summary: "newest"},
		records.JournalEntry{User: "u", Date: day(0), DayPeriod: records.Morning, Mood: records.MoodOkay, Energy: 50},
		records.JournalEntry{User: "u", Date: day(0), DayPeriod: records.Evening, Mood: records.MoodHappy, Energy: 60},
	)
	uc, err := NewContextBuilder(mem, Limits{}, nil, nil).Build(context.Background(), "u", now)
	require.NoError(t, err)
	require.NotNil(t, uc.LatestSkin)
	assert.Equal(t, "newest", uc.LatestSkin.Summary)
	assert.Equal(t, records.Evening, uc.LatestJournal.DayPeriod)
}

func TestBuild_MixedKeyFormatsKeepNewestRecords(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	// day-month-year keys on days 21-31 sort above every ISO key
	for d := 21; d <= 30; d++ {
		require.NoError(t, mem.Put(ctx, store.Item{PK: "u", SK: fmt.Sprintf("PERIOD#%d-10-2024", d), Attrs: store.Attributes{}}))
	}
	for _, month := range []string{"01", "03"} {
		for d := 21; d <= 31; d++ {
			require.NoError(t, mem.Put(ctx, store.Item{PK: "u", SK: fmt.Sprintf("%d-%s-2024#morning", d, month), Attrs: store.Attributes{
				"feeling": &types.AttributeValueMemberS{Value: "sad"},
				"energy":  &types.AttributeValueMemberN{Value: "10"},
			}}))
		}
	}
	seed(t, mem,
		records.PeriodEntry{User: "u", Date: day(3)},
		records.JournalEntry{User: "u", Date: day(0), DayPeriod: records.Morning, Mood: records.MoodAmazing, Energy: 90},
	)

	uc, err := NewContextBuilder(mem, Limits{}, nil, nil).Build(ctx, "u", now)
	require.NoError(t, err)
	assert.Equal(t, 3, uc.Cycle.DaysSinceLastPeriod)
	assert.Equal(t, 4, uc.Cycle.Day)
	assert.Equal(t, DefaultLimits.Periods, uc.PeriodCount)
	assert.Equal(t, DefaultLimits.Journals, uc.JournalCount)
	require.NotNil(t, uc.LatestJournal)
	assert.Equal(t, records.MoodAmazing, uc.LatestJournal.Mood)
}

package wellness

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mikecbrant/glowcycle/internal/cycle"
	"github.com/mikecbrant/glowcycle/internal/patterns"
	"github.com/mikecbrant/glowcycle/internal/records"
)

func TestWelcomeMessage(t *testing.T) {
	assert.Equal(t, "Sofia, the more I know about you, the better I can support you", WelcomeMessage("Sofia"))
}

func TestBuildPrompt(t *testing.T) {
	uc := UserContext{
		Cycle: cycle.Estimate{Day: 11, Length: 30, Phase: cycle.Follicular},
		Patterns: patterns.Summary{
			AvgEnergy:    55,
			DominantMood: records.MoodTired,
			TopTags:      []patterns.TagCount{{Tag: "work", Count: 3}, {Tag: "sleep", Count: 2}, {Tag: "gym", Count: 1}},
			Entries:      5,
		},
		LatestJournal: &records.JournalEntry{Mood: records.MoodTired, Energy: 40, Thoughts: strings.Repeat("é", 200)},
		LatestSkin:    &records.SkinAnalysis{TakenAt: time.Now(), Issues: records.SkinIssues{Acne: true, Redness: true}},
		JournalCount:  5,
	}
	p := BuildPrompt(uc, "Sofia")
	assert.Equal(t, DefaultMaxOutputTokens, p.MaxOutputTokens)
	assert.Contains(t, p.Text, "User: Sofia")
	assert.Contains(t, p.Text, "Cycle: Follicular, Day 11/30")
	assert.Contains(t, p.Text, "Mood: Tired")
	assert.Contains(t, p.Text, "Energy: 40/100")
	assert.Contains(t, p.Text, "Recent thoughts: "+strings.Repeat("é", ThoughtsExcerptLimit)+"\n")
	assert.Contains(t, p.Text, "Skin: breakouts, redness")
	assert.Contains(t, p.Text, "5 recent journal entries, consistently low energy (avg 55.0/100), mostly tired, main concerns: work, sleep")
	assert.Contains(t, p.Text, "Maximum 12 words")
}

func TestBuildPrompt_Defaults(t *testing.T) {
	uc := UserContext{
		Cycle:     cycle.Estimate(nil, time.Now()),
		Patterns:  patterns.Aggregate(nil),
		PeriodCount: 1,
	}
	p := BuildPrompt(uc, "Friend")
	assert.Contains(t, p.Text, "Mood: Calm")
	assert.Contains(t, p.Text, "Energy: 70/100")
	assert.Contains(t, p.Text, "Recent thoughts: no recent thoughts shared")
	assert.Contains(t, p.Text, "Skin: no skin analysis yet")
	assert.Contains(t, p.Text, "moderate energy (avg 70.0/100)")
}

func TestSkinSummary(t *testing.T) {
	assert.Equal(t, "no specific concerns detected", SkinSummary(&records.SkinAnalysis{}))
	all := records.SkinIssues{Acne: true, Dryness: true, Oiliness: true, Redness: true}
	assert.Equal(t, "breakouts, dryness, oiliness, redness", SkinSummary(&records.SkinAnalysis{Issues: all}))
}

func TestPatternSummary_HighEnergy(t *testing.T) {
	got := PatternSummary(UserContext{Patterns: patterns.Summary{AvgEnergy: 90, Entries: 2, DominantMood: records.MoodAmazing}})
	assert.Equal(t, "2 recent journal entries, high energy levels (avg 90.0/100), mostly amazing", got)
}

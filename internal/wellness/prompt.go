package wellness

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/mikecbrant/glowcycle/internal/records"
)

const (
	// MaxWords is the hard cap on generated message length.
	MaxWords = 12
	// ThoughtsExcerptLimit caps the journal text sent to the generator, in runes.
	ThoughtsExcerptLimit = 150
	// DefaultMaxOutputTokens leaves room for MaxWords without truncating mid-word.
	DefaultMaxOutputTokens = 50

	// DefaultName is used when neither the request nor the profile names the user.
	DefaultName = "Friend"
	// DefaultFeeling and DefaultEnergy describe a user without journal entries.
	DefaultFeeling = "calm"
	DefaultEnergy  = 70
)

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("prompt").Parse(promptText))

// Prompt is a generation request.
type Prompt struct {
	Text            string
	MaxOutputTokens int
}

// WelcomeMessage is returned instead of a generated message for users with no
// history.
func WelcomeMessage(name string) string {
	return fmt.Sprintf("%s, the more I know about you, the better I can support you", name)
}

type promptData struct {
	Name     string
	Phase    string
	Day      int
	Length   int
	Feeling  string
	Energy   int
	Thoughts string
	Skin     string
	Patterns string
	MaxWords int
}

// BuildPrompt renders the generation prompt for uc.
func BuildPrompt(uc UserContext, name string) Prompt {
	feeling, energy := Feeling(uc)
	d := promptData{
		Name:     name,
		Phase:    capitalize(string(uc.Cycle.Phase)),
		Day:      uc.Cycle.Day,
		Length:   uc.Cycle.Length,
		Feeling:  capitalize(feeling),
		Energy:   energy,
		Thoughts: "no recent thoughts shared",
		Skin:     SkinSummary(uc.LatestSkin),
		Patterns: PatternSummary(uc),
		MaxWords: MaxWords,
	}
	if uc.LatestJournal != nil {
		if t := excerpt(uc.LatestJournal.Thoughts, ThoughtsExcerptLimit); t != "" {
			d.Thoughts = t
		}
	}
	var b strings.Builder
	if err := promptTemplate.Execute(&b, d); err != nil {
		// promptData only holds strings and ints
		panic(err)
	}
	return Prompt{Text: b.String(), MaxOutputTokens: DefaultMaxOutputTokens}
}

// Feeling returns the latest journal mood and energy, or the defaults.
func Feeling(uc UserContext) (string, int) {
	if uc.LatestJournal == nil {
		return DefaultFeeling, DefaultEnergy
	}
	return string(uc.LatestJournal.Mood), uc.LatestJournal.Energy
}

// SkinSummary lists the flagged issues of s.
func SkinSummary(s *records.SkinAnalysis) string {
	if s == nil {
		return "no skin analysis yet"
	}
	var issues []string
	if s.Issues.Acne {
		issues = append(issues, "breakouts")
	}
	if s.Issues.Dryness {
		issues = append(issues, "dryness")
	}
	if s.Issues.Oiliness {
		issues = append(issues, "oiliness")
	}
	if s.Issues.Redness {
		issues = append(issues, "redness")
	}
	if len(issues) == 0 {
		return "no specific concerns detected"
	}
	return strings.Join(issues, ", ")
}

// PatternSummary describes the journal window in one line.
func PatternSummary(uc UserContext) string {
	p := uc.Patterns
	var b strings.Builder
	fmt.Fprintf(&b, "%d recent journal entries", p.Entries)
	switch {
	case p.AvgEnergy < 60:
		fmt.Fprintf(&b, ", consistently low energy (avg %.1f/100)", p.AvgEnergy)
	case p.AvgEnergy > 80:
		fmt.Fprintf(&b, ", high energy levels (avg %.1f/100)", p.AvgEnergy)
	default:
		fmt.Fprintf(&b, ", moderate energy (avg %.1f/100)", p.AvgEnergy)
	}
	if p.DominantMood != "" {
		fmt.Fprintf(&b, ", mostly %s", p.DominantMood)
	}
	if len(p.TopTags) > 0 {
		tags := make([]string, 0, 2)
		for _, t := range p.TopTags {
			if len(tags) == 2 {
				break
			}
			tags = append(tags, t.Tag)
		}
		fmt.Fprintf(&b, ", main concerns: %s", strings.Join(tags, ", "))
	}
	return b.String()
}

func excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit]))
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

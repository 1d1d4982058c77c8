// Package records defines the entities stored in a user's partition and the
// codec that maps them to and from store items.
package records

import "time"

// Kind tags a Record variant.
type Kind string

const (
	KindProfile    Kind = "profile"
	KindJournal    Kind = "journal"
	KindPeriod     Kind = "period"
	KindSkin       Kind = "skin"
	KindJudgeSetup Kind = "judge_setup"
)

// Record is the closed set of entities that share a user partition.
type Record interface {
	Kind() Kind
	sealed()
}

// Mood is the journal feeling enumeration.
type Mood string

const (
	MoodAmazing Mood = "amazing"
	MoodHappy   Mood = "happy"
	MoodOkay    Mood = "okay"
	MoodTired   Mood = "tired"
	MoodSad     Mood = "sad"
)

// Moods lists every valid Mood.
var Moods = []Mood{MoodAmazing, MoodHappy, MoodOkay, MoodTired, MoodSad}

// Valid reports whether m is one of Moods.
func (m Mood) Valid() bool {
	for _, v := range Moods {
		if m == v {
			return true
		}
	}
	return false
}

// DayPeriod is the coarse time-of-day bucket of a journal slot.
type DayPeriod string

const (
	Morning DayPeriod = "morning"
	Evening DayPeriod = "evening"
)

// Valid reports whether p is Morning or Evening.
func (p DayPeriod) Valid() bool { return p == Morning || p == Evening }

// DayPeriodFor maps the "night" flag clients send to a DayPeriod.
func DayPeriodFor(night bool) DayPeriod {
	if night {
		return Evening
	}
	return Morning
}

// Energy bounds for journal entries.
const (
	MinEnergy = 0
	MaxEnergy = 100
)

// Profile is the single account record of a user.
type Profile struct {
	User           string
	DisplayName    string
	PasswordHash   string
	SetupCompleted bool
}

// JournalEntry occupies one (date, day-period) slot.
type JournalEntry struct {
	User      string
	Date      time.Time
	DayPeriod DayPeriod
	Mood      Mood
	Energy    int
	Thoughts  string
	Tags      []string
}

// PeriodEntry records a reported period start date.
type PeriodEntry struct {
	User string
	Date time.Time
	// CycleLength and UserAge are optional self-reported values; zero means absent.
	CycleLength int
	UserAge     int
	Notes       string
	CreatedAt   time.Time
}

// SkinIssues are the issue flags the wellness summary reads from a skin analysis.
type SkinIssues struct {
	Acne     bool `dynamodbav:"acne_detected,omitempty"`
	Dryness  bool `dynamodbav:"dryness_detected,omitempty"`
	Oiliness bool `dynamodbav:"oiliness_detected,omitempty"`
	Redness  bool `dynamodbav:"redness_detected,omitempty"`
}

// Any reports whether at least one issue is flagged.
func (s SkinIssues) Any() bool { return s.Acne || s.Dryness || s.Oiliness || s.Redness }

// SkinAnalysis is one stored analysis; TakenAt is unique per user to the second.
type SkinAnalysis struct {
	User          string
	TakenAt       time.Time
	Summary       string
	OverallHealth float64
	Metrics       map[string]float64
	Concerns      []string
	AMRoutine     []string
	PMRoutine     []string
	Tips          []string
	Issues        SkinIssues
}

// JudgeSetup is auxiliary onboarding bookkeeping.
type JudgeSetup struct {
	User        string
	Completed   bool
	Timestamp   string
	ProfileData map[string]string
}

func (Profile) Kind() Kind      { return KindProfile }
func (JournalEntry) Kind() Kind { return KindJournal }
func (PeriodEntry) Kind() Kind  { return KindPeriod }
func (SkinAnalysis) Kind() Kind { return KindSkin }
func (JudgeSetup) Kind() Kind   { return KindJudgeSetup }

func (Profile) sealed()      {}
func (JournalEntry) sealed() {}
func (PeriodEntry) sealed()  {}
func (SkinAnalysis) sealed() {}
func (JudgeSetup) sealed()   {}

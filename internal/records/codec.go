package records

import (
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/mikecbrant/glowcycle/internal/store"
)

// Attribute names as written by every revision of the service.
const (
	attrDisplayName = "displayName"
	attrFeeling     = "feeling"
	attrEnergy      = "energy"
)

type profileAttrs struct {
	DisplayName    string `dynamodbav:"displayName"`
	PasswordHash   string `dynamodbav:"passwordHash,omitempty"`
	SetupCompleted bool   `dynamodbav:"setupCompleted"`
}

type journalAttrs struct {
	Feeling  string   `dynamodbav:"feeling"`
	Energy   int      `dynamodbav:"energy"`
	Thoughts string   `dynamodbav:"thoughts"`
	Tags     []string `dynamodbav:"tags"`
}

type periodAttrs struct {
	PeriodDate  string `dynamodbav:"period_date"`
	CreatedAt   string `dynamodbav:"created_at,omitempty"`
	UserAge     int    `dynamodbav:"user_age,omitempty"`
	CycleLength int    `dynamodbav:"cycle_length,omitempty"`
	Notes       string `dynamodbav:"notes,omitempty"`
}

type skinAttrs struct {
	CreatedAt     string             `dynamodbav:"created_at,omitempty"`
	Summary       string             `dynamodbav:"summary"`
	OverallHealth float64            `dynamodbav:"overall_skin_health"`
	Metrics       map[string]float64 `dynamodbav:"metrics,omitempty"`
	Concerns      []string           `dynamodbav:"concerns_detected,omitempty"`
	AMRoutine     []string           `dynamodbav:"am_routine,omitempty"`
	PMRoutine     []string           `dynamodbav:"pm_routine,omitempty"`
	Tips          []string           `dynamodbav:"tips,omitempty"`
	Issues        *SkinIssues        `dynamodbav:"skin_analysis,omitempty"`
}

type judgeAttrs struct {
	Completed   bool              `dynamodbav:"completed"`
	Timestamp   string            `dynamodbav:"timestamp"`
	ProfileData map[string]string `dynamodbav:"profileData,omitempty"`
}

// created_at was written without a zone by the first deployment.
var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"}

// Encode maps r to its store item. It is pure and never fails for the record
// types of this package.
func Encode(r Record) store.Item {
	switch v := r.(type) {
	case Profile:
		return item(v.User, ProfileSK, profileAttrs{
			DisplayName:    v.DisplayName,
			PasswordHash:   v.PasswordHash,
			SetupCompleted: v.SetupCompleted,
		})
	case JournalEntry:
		return item(v.User, JournalSK(v.Date, v.DayPeriod), journalAttrs{
			Feeling:  string(v.Mood),
			Energy:   v.Energy,
			Thoughts: v.Thoughts,
			Tags:     v.Tags,
		})
	case PeriodEntry:
		a := periodAttrs{
			PeriodDate:  v.Date.Format(DateLayout),
			UserAge:     v.UserAge,
			CycleLength: v.CycleLength,
			Notes:       v.Notes,
		}
		if !v.CreatedAt.IsZero() {
			a.CreatedAt = v.CreatedAt.UTC().Format(time.RFC3339Nano)
		}
		return item(v.User, PeriodSK(v.Date), a)
	case SkinAnalysis:
		a := skinAttrs{
			CreatedAt:     v.TakenAt.UTC().Format(time.RFC3339),
			Summary:       v.Summary,
			OverallHealth: v.OverallHealth,
			Metrics:       v.Metrics,
			Concerns:      v.Concerns,
			AMRoutine:     v.AMRoutine,
			PMRoutine:     v.PMRoutine,
			Tips:          v.Tips,
		}
		if v.Issues.Any() {
			issues := v.Issues
			a.Issues = &issues
		}
		return item(v.User, SkinSK(v.TakenAt), a)
	case JudgeSetup:
		return item(v.User, JudgeSetupSK, judgeAttrs{
			Completed:   v.Completed,
			Timestamp:   v.Timestamp,
			ProfileData: v.ProfileData,
		})
	case *Profile:
		return Encode(*v)
	case *JournalEntry:
		return Encode(*v)
	case *PeriodEntry:
		return Encode(*v)
	case *SkinAnalysis:
		return Encode(*v)
	case *JudgeSetup:
		return Encode(*v)
	}
	panic(fmt.Sprintf("records: unknown record type %T", r))
}

func item(pk, sk string, attrs any) store.Item {
	m, err := attributevalue.MarshalMap(attrs)
	if err != nil {
		// attribute structs hold only strings, numbers, bools, lists and maps
		panic(fmt.Sprintf("records: marshal %T: %v", attrs, err))
	}
	return store.Item{PK: pk, SK: sk, Attrs: m}
}

// Decode maps a store item back to its Record. The sort-key shape selects the
// variant; any mismatch is reported as a *DecodeError.
func Decode(it store.Item) (Record, error) {
	rec, err := decode(it)
	if err != nil {
		return nil, &DecodeError{SK: it.SK, Cause: err}
	}
	return rec, nil
}

func decode(it store.Item) (Record, error) {
	if it.PK == "" {
		return nil, errors.New("empty partition key")
	}
	key, err := parseSortKey(it.SK)
	if err != nil {
		return nil, err
	}
	switch key.kind {
	case KindProfile:
		var a profileAttrs
		if err := unmarshal(it.Attrs, &a, attrDisplayName); err != nil {
			return nil, err
		}
		return Profile{User: it.PK, DisplayName: a.DisplayName, PasswordHash: a.PasswordHash, SetupCompleted: a.SetupCompleted}, nil
	case KindJournal:
		var a journalAttrs
		if err := unmarshal(it.Attrs, &a, attrFeeling, attrEnergy); err != nil {
			return nil, err
		}
		mood := Mood(a.Feeling)
		if !mood.Valid() {
			return nil, &ValidationError{Field: attrFeeling, Reason: fmt.Sprintf("%q is not one of %v", a.Feeling, Moods)}
		}
		if err := ValidateEnergy(a.Energy); err != nil {
			return nil, err
		}
		return JournalEntry{
			User:      it.PK,
			Date:      key.date,
			DayPeriod: key.period,
			Mood:      mood,
			Energy:    a.Energy,
			Thoughts:  a.Thoughts,
			Tags:      a.Tags,
		}, nil
	case KindPeriod:
		var a periodAttrs
		if err := unmarshal(it.Attrs, &a); err != nil {
			return nil, err
		}
		return PeriodEntry{
			User:        it.PK,
			Date:        key.date,
			CycleLength: a.CycleLength,
			UserAge:     a.UserAge,
			Notes:       a.Notes,
			CreatedAt:   parseTimestamp(a.CreatedAt),
		}, nil
	case KindSkin:
		var a skinAttrs
		if err := unmarshal(it.Attrs, &a); err != nil {
			return nil, err
		}
		s := SkinAnalysis{
			User:          it.PK,
			TakenAt:       key.at,
			Summary:       a.Summary,
			OverallHealth: a.OverallHealth,
			Metrics:       a.Metrics,
			Concerns:      a.Concerns,
			AMRoutine:     a.AMRoutine,
			PMRoutine:     a.PMRoutine,
			Tips:          a.Tips,
		}
		if a.Issues != nil {
			s.Issues = *a.Issues
		}
		return s, nil
	case KindJudgeSetup:
		var a judgeAttrs
		if err := unmarshal(it.Attrs, &a); err != nil {
			return nil, err
		}
		return JudgeSetup{User: it.PK, Completed: a.Completed, Timestamp: a.Timestamp, ProfileData: a.ProfileData}, nil
	}
	return nil, fmt.Errorf("unhandled kind %s", key.kind)
}

func unmarshal(attrs store.Attributes, out any, required ...string) error {
	for _, name := range required {
		if _, ok := attrs[name]; !ok {
			return fmt.Errorf("missing required attribute %q", name)
		}
	}
	if err := attributevalue.UnmarshalMap(attrs, out); err != nil {
		return fmt.Errorf("attribute types: %w", err)
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

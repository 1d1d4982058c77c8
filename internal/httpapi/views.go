package httpapi

import (
	"time"

	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/wellness"
)

type basisJSON struct {
	CyclePhase     string `json:"cycle_phase"`
	CycleDay       int    `json:"cycle_day"`
	CycleLength    int    `json:"cycle_length"`
	Feeling        string `json:"feeling"`
	Energy         int    `json:"energy"`
	CycleDefaulted bool   `json:"cycle_defaulted"`
}

type resultJSON struct {
	Message     string    `json:"message"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	UserContext basisJSON `json:"user_context"`
}

func wellnessJSON(r wellness.Result) resultJSON {
	return resultJSON{
		Message:     r.Message,
		GeneratedAt: r.GeneratedAt,
		Source:      r.Source,
		UserContext: basisJSON{
			CyclePhase:     string(r.Basis.CyclePhase),
			CycleDay:       r.Basis.CycleDay,
			CycleLength:    r.Basis.CycleLength,
			Feeling:        r.Basis.Feeling,
			Energy:         r.Basis.Energy,
			CycleDefaulted: r.Basis.CycleDefaulted,
		},
	}
}

type journalJSON struct {
	Date      string   `json:"date"`
	DayPeriod string   `json:"day_period"`
	Feeling   string   `json:"feeling"`
	Energy    int      `json:"energy"`
	Thoughts  string   `json:"thoughts,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

func toJournalJSON(e records.JournalEntry) journalJSON {
	return journalJSON{
		Date:      e.Date.Format(records.DateLayout),
		DayPeriod: string(e.DayPeriod),
		Feeling:   string(e.Mood),
		Energy:    e.Energy,
		Thoughts:  e.Thoughts,
		Tags:      e.Tags,
	}
}

type periodJSON struct {
	PeriodDate  string `json:"period_date"`
	CreatedAt   string `json:"created_at"`
	UserAge     int    `json:"user_age,omitempty"`
	CycleLength int    `json:"cycle_length,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func toPeriodJSON(p records.PeriodEntry) periodJSON {
	out := periodJSON{
		PeriodDate:  p.Date.Format(records.DateLayout),
		UserAge:     p.UserAge,
		CycleLength: p.CycleLength,
		Notes:       p.Notes,
	}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return out
}

type skinJSON struct {
	CreatedAt     time.Time          `json:"created_at"`
	Summary       string             `json:"summary"`
	OverallHealth float64            `json:"overall_skin_health"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	Concerns      []string           `json:"concerns_detected,omitempty"`
	AMRoutine     []string           `json:"am_routine,omitempty"`
	PMRoutine     []string           `json:"pm_routine,omitempty"`
	Tips          []string           `json:"tips,omitempty"`
	Issues        skinIssuesJSON     `json:"skin_analysis"`
}

func toSkinJSON(a records.SkinAnalysis) skinJSON {
	return skinJSON{
		CreatedAt:     a.TakenAt,
		Summary:       a.Summary,
		OverallHealth: a.OverallHealth,
		Metrics:       a.Metrics,
		Concerns:      a.Concerns,
		AMRoutine:     a.AMRoutine,
		PMRoutine:     a.PMRoutine,
		Tips:          a.Tips,
		Issues:        skinIssuesJSON(a.Issues),
	}
}

func profileJSON(p records.Profile) map[string]any {
	return map[string]any{
		"user":           p.User,
		"displayName":    p.DisplayName,
		"setupCompleted": p.SetupCompleted,
	}
}

package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/tracker"
	"github.com/mikecbrant/glowcycle/internal/wellness"
)

const defaultListLimit = 50

func (s *Server) getWellness(c *gin.Context) {
	user, ok := s.userParam(c)
	if !ok {
		return
	}
	res, err := s.service.Generate(c.Request.Context(), wellness.Request{User: user, DisplayName: c.Query("name")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "wellness": wellnessJSON(res)})
}

type journalBody struct {
	User     string   `json:"user"`
	Date     string   `json:"date"`
	Night    bool     `json:"night"`
	Feeling  string   `json:"feeling"`
	Energy   int      `json:"energy"`
	Thoughts string   `json:"thoughts"`
	Tags     []string `json:"tags"`
}

func (s *Server) saveJournal(c *gin.Context) {
	var b journalBody
	if !s.bind(c, &b) {
		return
	}
	e, err := s.tracker.SaveJournal(c.Request.Context(), tracker.JournalInput(b))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": e.User, "date": records.JournalSK(e.Date, e.DayPeriod)})
}

func (s *Server) listJournal(c *gin.Context) {
	user, ok := s.userParam(c)
	if !ok {
		return
	}
	limit, ok := s.limitParam(c)
	if !ok {
		return
	}
	entries, err := s.tracker.ListJournal(c.Request.Context(), user, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]journalJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toJournalJSON(e))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "entries": out})
}

type periodBody struct {
	User        string `json:"user"`
	PeriodDate  string `json:"period_date"`
	UserAge     int    `json:"user_age"`
	CycleLength int    `json:"cycle_length"`
	Notes       string `json:"notes"`
}

func (s *Server) savePeriod(c *gin.Context) {
	var b periodBody
	if !s.bind(c, &b) {
		return
	}
	e, err := s.tracker.SavePeriod(c.Request.Context(), tracker.PeriodInput{
		User: b.User, Date: b.PeriodDate, UserAge: b.UserAge, CycleLength: b.CycleLength, Notes: b.Notes,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": e.User, "period_date": e.Date.Format(records.DateLayout)})
}

func (s *Server) listPeriods(c *gin.Context) {
	user, ok := s.userParam(c)
	if !ok {
		return
	}
	periods, err := s.tracker.ListPeriods(c.Request.Context(), user)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]periodJSON, 0, len(periods))
	for _, p := range periods {
		out = append(out, toPeriodJSON(p))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "periods": out})
}

func (s *Server) deletePeriod(c *gin.Context) {
	user, ok := s.userParam(c)
	if !ok {
		return
	}
	date := c.Query("period_date")
	if err := s.tracker.DeletePeriod(c.Request.Context(), user, date); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Period deleted successfully"})
}

type skinBody struct {
	User          string             `json:"user"`
	TakenAt       *time.Time         `json:"created_at"`
	Summary       string             `json:"summary"`
	OverallHealth float64            `json:"overall_skin_health"`
	Metrics       map[string]float64 `json:"metrics"`
	Concerns      []string           `json:"concerns_detected"`
	AMRoutine     []string           `json:"am_routine"`
	PMRoutine     []string           `json:"pm_routine"`
	Tips          []string           `json:"tips"`
	Issues        skinIssuesJSON     `json:"skin_analysis"`
}

type skinIssuesJSON struct {
	Acne     bool `json:"acne_detected"`
	Dryness  bool `json:"dryness_detected"`
	Oiliness bool `json:"oiliness_detected"`
	Redness  bool `json:"redness_detected"`
}

func (s *Server) saveSkin(c *gin.Context) {
	var b skinBody
	if !s.bind(c, &b) {
		return
	}
	a := records.SkinAnalysis{
		User:          b.User,
		Summary:       b.Summary,
		OverallHealth: b.OverallHealth,
		Metrics:       b.Metrics,
		Concerns:      b.Concerns,
		AMRoutine:     b.AMRoutine,
		PMRoutine:     b.PMRoutine,
		Tips:          b.Tips,
		Issues:        records.SkinIssues(b.Issues),
	}
	if b.TakenAt != nil {
		a.TakenAt = *b.TakenAt
	}
	saved, err := s.tracker.SaveSkinAnalysis(c.Request.Context(), a)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "analysis": toSkinJSON(saved)})
}

func (s *Server) listSkin(c *gin.Context) {
	user, ok := s.userParam(c)
	if !ok {
		return
	}
	limit, ok := s.limitParam(c)
	if !ok {
		return
	}
	analyses, err := s.tracker.ListSkinAnalyses(c.Request.Context(), user, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]skinJSON, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, toSkinJSON(a))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "history": out})
}

type userBody struct {
	User        string `json:"user"`
	DisplayName string `json:"displayName"`
}

func (s *Server) createUser(c *gin.Context) {
	var b userBody
	if !s.bind(c, &b) {
		return
	}
	p, err := s.tracker.CreateProfile(c.Request.Context(), b.User, b.DisplayName, "")
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "user": profileJSON(p)})
}

func (s *Server) getUser(c *gin.Context) {
	user, ok := s.userParam(c)
	if !ok {
		return
	}
	p, err := s.tracker.GetProfile(c.Request.Context(), user)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": profileJSON(p)})
}

func (s *Server) completeSetup(c *gin.Context) {
	var b userBody
	if !s.bind(c, &b) {
		return
	}
	p, err := s.tracker.CompleteSetup(c.Request.Context(), b.User)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": profileJSON(p)})
}

type judgeSetupBody struct {
	User        string            `json:"user"`
	ProfileData map[string]string `json:"profileData"`
}

func (s *Server) saveJudgeSetup(c *gin.Context) {
	var b judgeSetupBody
	if !s.bind(c, &b) {
		return
	}
	j, err := s.tracker.SaveJudgeSetup(c.Request.Context(), b.User, b.ProfileData)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": j.User, "setupCompleted": j.Completed, "timestamp": j.Timestamp})
}

func (s *Server) judgeSetupStatus(c *gin.Context) {
	user, ok := s.userParam(c)
	if !ok {
		return
	}
	done, err := s.tracker.JudgeSetupCompleted(c.Request.Context(), user)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "setupCompleted": done})
}

func (s *Server) userParam(c *gin.Context) (string, bool) {
	user := c.Query("user")
	if user == "" {
		s.fail(c, &records.ValidationError{Field: "user", Reason: "missing query parameter"})
		return "", false
	}
	return user, true
}

func (s *Server) limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		s.fail(c, &records.ValidationError{Field: "limit", Reason: "must be a positive integer"})
		return 0, false
	}
	return n, true
}

func (s *Server) bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		s.fail(c, &records.ValidationError{Field: "body", Reason: err.Error()})
		return false
	}
	return true
}

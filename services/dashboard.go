package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/analytics"
	"github.com/vnkhanh/feedback-server/models"
)

const (
	recentWindowDays  = 7
	recentListSize    = 10
	dashboardTopForms = 5
	statsTopForms     = 10
	maxStatsDays      = 365
)

type TypeCount struct {
	FormType string `json:"form_type"`
	Count    int    `json:"count"`
}

type TypeStats struct {
	FormType      string `json:"form_type"`
	Count         int    `json:"count"`
	ResponseCount int    `json:"response_count"`
}

type RecentResponse struct {
	ID          string    `json:"id"`
	FormID      string    `json:"form_id"`
	FormTitle   string    `json:"form_title"`
	FormType    string    `json:"form_type"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type TopForm struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	FormType      string `json:"form_type"`
	ResponseCount int    `json:"response_count"`
	IsActive      bool   `json:"is_active"`
}

type Dashboard struct {
	TotalForms            int                    `json:"total_forms"`
	ActiveForms           int                    `json:"active_forms"`
	TotalResponses        int                    `json:"total_responses"`
	RecentResponses       int                    `json:"recent_responses"`
	AverageCompletionRate float64                `json:"average_completion_rate"`
	FormTypeDistribution  []TypeCount            `json:"form_type_distribution"`
	DailyResponses        []analytics.DailyCount `json:"daily_responses"`
	RecentResponsesList   []RecentResponse       `json:"recent_responses_list"`
	TopForms              []TopForm              `json:"top_forms"`
}

type StatsDay struct {
	Date      string `json:"date"`
	Responses int    `json:"responses"`
}

type Stats struct {
	PeriodDays int `json:"period_days"`
	Forms      struct {
		Total   int         `json:"total"`
		Active  int         `json:"active"`
		Expired int         `json:"expired"`
		ByType  []TypeStats `json:"by_type"`
	} `json:"forms"`
	Responses struct {
		Total      int        `json:"total"`
		DailyTrend []StatsDay `json:"daily_trend"`
	} `json:"responses"`
	TopForms []TopForm `json:"top_forms"`
}

// DashboardService aggregates across all forms of the caller.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: utcNow}
}

func (s *DashboardService) Dashboard(ctx context.Context, caller Caller) (Dashboard, error) {
	now := s.now()
	forms, err := s.forms(ctx, caller)
	if err != nil {
		return Dashboard{}, err
	}
	responses, err := s.responses(ctx, caller)
	if err != nil {
		return Dashboard{}, err
	}
	byForm := groupByForm(responses)

	d := Dashboard{
		TotalForms:          len(forms),
		TotalResponses:      len(responses),
		RecentResponses:     analytics.CountSince(submittedTimes(responses), now.AddDate(0, 0, -recentWindowDays)),
		DailyResponses:      analytics.DailyCounts(submittedTimes(responses), now, analytics.TrendDays),
		RecentResponsesList: []RecentResponse{},
	}

	typeCounts := map[string]int{}
	var rateSum float64
	var rated int
	for _, f := range forms {
		if f.IsActive {
			d.ActiveForms++
		}
		typeCounts[f.FormType]++
		if rs := byForm[f.ID]; len(rs) > 0 {
			rateSum += analytics.CompletionRate(f.Questions, rs)
			rated++
		}
	}
	if rated > 0 {
		d.AverageCompletionRate = math.Round(rateSum/float64(rated)*100) / 100
	}
	for formType, n := range typeCounts {
		d.FormTypeDistribution = append(d.FormTypeDistribution, TypeCount{FormType: formType, Count: n})
	}
	sort.Slice(d.FormTypeDistribution, func(i, j int) bool {
		a, b := d.FormTypeDistribution[i], d.FormTypeDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.FormType < b.FormType
	})
	if d.FormTypeDistribution == nil {
		d.FormTypeDistribution = []TypeCount{}
	}

	titles := make(map[string]models.FeedbackForm, len(forms))
	for _, f := range forms {
		titles[f.ID] = f
	}
	for i, r := range responses {
		if i == recentListSize {
			break
		}
		f := titles[r.FormID]
		d.RecentResponsesList = append(d.RecentResponsesList, RecentResponse{
			ID:          r.ID,
			FormID:      r.FormID,
			FormTitle:   f.Title,
			FormType:    f.FormType,
			SubmittedAt: r.SubmittedAt,
		})
	}
	d.TopForms = topForms(forms, byForm, dashboardTopForms)
	return d, nil
}

// Stats summarizes the last days days; days must be between 1 and 365.
func (s *DashboardService) Stats(ctx context.Context, caller Caller, days int) (Stats, error) {
	if days < 1 || days > maxStatsDays {
		return Stats{}, invalid("days", "days must be between 1 and 365")
	}
	now := s.now()
	forms, err := s.forms(ctx, caller)
	if err != nil {
		return Stats{}, err
	}
	all, err := s.responses(ctx, caller)
	if err != nil {
		return Stats{}, err
	}
	start := now.AddDate(0, 0, -days)
	var recent []models.FeedbackResponse
	for _, r := range all {
		if !r.SubmittedAt.Before(start) {
			recent = append(recent, r)
		}
	}
	byForm := groupByForm(all)

	var st Stats
	st.PeriodDays = days
	st.Forms.Total = len(forms)
	byType := map[string]*TypeStats{}
	for _, f := range forms {
		if f.IsActive {
			st.Forms.Active++
		}
		if f.IsExpired(now) {
			st.Forms.Expired++
		}
		ts, ok := byType[f.FormType]
		if !ok {
			ts = &TypeStats{FormType: f.FormType}
			byType[f.FormType] = ts
		}
		ts.Count++
		ts.ResponseCount += len(byForm[f.ID])
	}
	st.Forms.ByType = make([]TypeStats, 0, len(byType))
	for _, ts := range byType {
		st.Forms.ByType = append(st.Forms.ByType, *ts)
	}
	sort.Slice(st.Forms.ByType, func(i, j int) bool {
		a, b := st.Forms.ByType[i], st.Forms.ByType[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.FormType < b.FormType
	})

	st.Responses.Total = len(recent)
	daily := analytics.DailyCounts(submittedTimes(recent), now, days)
	st.Responses.DailyTrend = make([]StatsDay, 0, len(daily))
	for _, d := range daily {
		st.Responses.DailyTrend = append(st.Responses.DailyTrend, StatsDay{Date: d.Date, Responses: d.Count})
	}
	st.TopForms = topForms(forms, byForm, statsTopForms)
	return st, nil
}

func (s *DashboardService) forms(ctx context.Context, caller Caller) ([]models.FeedbackForm, error) {
	var forms []models.FeedbackForm
	err := s.db.WithContext(ctx).
		Where("created_by_id = ?", caller.UserID).
		Preload("Questions", orderQuestions).
		Order("created_at DESC").
		Find(&forms).Error
	return forms, errors.Wrap(err, "load forms")
}

// responses loads every response to the caller's forms, newest first.
func (s *DashboardService) responses(ctx context.Context, caller Caller) ([]models.FeedbackResponse, error) {
	q := s.db.WithContext(ctx).
		Select("feedback_responses.*").
		Joins("JOIN feedback_forms ON feedback_forms.id = feedback_responses.form_id").
		Where("feedback_forms.created_by_id = ?", caller.UserID).
		Preload("Answers").
		Order("feedback_responses.submitted_at DESC")
	var rs []models.FeedbackResponse
	return rs, errors.Wrap(q.Find(&rs).Error, "load responses")
}

func groupByForm(rs []models.FeedbackResponse) map[string][]models.FeedbackResponse {
	out := map[string][]models.FeedbackResponse{}
	for _, r := range rs {
		out[r.FormID] = append(out[r.FormID], r)
	}
	return out
}

func submittedTimes(rs []models.FeedbackResponse) []time.Time {
	out := make([]time.Time, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.SubmittedAt)
	}
	return out
}

// topForms ranks forms by response count; forms arrive newest first and
// keep that order on ties.
func topForms(forms []models.FeedbackForm, byForm map[string][]models.FeedbackResponse, limit int) []TopForm {
	out := make([]TopForm, 0, len(forms))
	for _, f := range forms {
		out = append(out, TopForm{
			ID:            f.ID,
			Title:         f.Title,
			FormType:      f.FormType,
			ResponseCount: len(byForm[f.ID]),
			IsActive:      f.IsActive,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ResponseCount > out[j].ResponseCount
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

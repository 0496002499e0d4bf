// Package analytics derives read-time statistics for a feedback form from
// its stored responses. Nothing here touches the database: callers load
// the form and its responses and hand them over.
package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vnkhanh/feedback-server/models"
)

const (
	// TrendDays is the window of the daily response trend.
	TrendDays       = 30
	topAnswersLimit = 5
)

type Report struct {
	FormID            string          `json:"form_id"`
	FormTitle         string          `json:"form_title"`
	TotalResponses    int             `json:"total_responses"`
	RecentResponses   int             `json:"recent_responses"`
	DailyResponses    []DailyCount    `json:"daily_responses"`
	CompletionRate    float64         `json:"completion_rate"`
	AverageRating     *float64        `json:"average_rating"`
	QuestionAnalytics []QuestionStats `json:"question_analytics"`
	LastUpdated       time.Time       `json:"last_updated"`
}

type QuestionStats struct {
	QuestionID         uint           `json:"question_id"`
	QuestionText       string         `json:"question_text"`
	QuestionType       string         `json:"question_type"`
	ResponseCount      int            `json:"response_count"`
	ResponseRate       float64        `json:"response_rate"`
	AverageRating      *float64       `json:"average_rating"`
	AnswerDistribution map[string]int `json:"answer_distribution"`
	TopAnswers         []string       `json:"top_answers,omitempty"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Compute builds the report for form from responses. Answers whose
// question is not part of form are ignored.
func Compute(form models.FeedbackForm, responses []models.FeedbackResponse, now time.Time) Report {
	total := len(responses)
	report := Report{
		FormID:            form.ID,
		FormTitle:         form.Title,
		TotalResponses:    total,
		QuestionAnalytics: make([]QuestionStats, 0, len(form.Questions)),
		LastUpdated:       now,
	}

	byQuestion := make(map[uint][]models.Answer, len(form.Questions))
	submitted := make([]time.Time, 0, total)
	completed := 0
	for _, r := range responses {
		submitted = append(submitted, r.SubmittedAt)
		if IsComplete(form.Questions, r) {
			completed++
		}
		for _, a := range r.Answers {
			if a.IsBlank() {
				continue
			}
			byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
		}
	}
	report.CompletionRate = ratio(completed, total)
	report.DailyResponses = DailyCounts(submitted, now, TrendDays)
	report.RecentResponses = CountSince(submitted, now.AddDate(0, 0, -TrendDays))

	var ratingSum float64
	var ratingCount int
	for _, q := range form.Questions {
		stats := questionStats(q, byQuestion[q.ID], total)
		if q.IsRating() {
			for value, n := range stats.AnswerDistribution {
				v, _ := strconv.Atoi(value)
				ratingSum += float64(v * n)
				ratingCount += n
			}
		}
		report.QuestionAnalytics = append(report.QuestionAnalytics, stats)
	}
	if ratingCount > 0 {
		avg := ratingSum / float64(ratingCount)
		report.AverageRating = &avg
	}
	return report
}

// IsComplete reports whether r answers every required question.
func IsComplete(questions []models.Question, r models.FeedbackResponse) bool {
	answered := make(map[uint]bool, len(r.Answers))
	for _, a := range r.Answers {
		if !a.IsBlank() {
			answered[a.QuestionID] = true
		}
	}
	for _, q := range questions {
		if q.IsRequired && !answered[q.ID] {
			return false
		}
	}
	return true
}

// CompletionRate is the share of responses that answer every required
// question, 0 when there are no responses.
func CompletionRate(questions []models.Question, responses []models.FeedbackResponse) float64 {
	completed := 0
	for _, r := range responses {
		if IsComplete(questions, r) {
			completed++
		}
	}
	return ratio(completed, len(responses))
}

func questionStats(q models.Question, answers []models.Answer, total int) QuestionStats {
	stats := QuestionStats{
		QuestionID:    q.ID,
		QuestionText:  q.Text,
		QuestionType:  q.QuestionType,
		ResponseCount: len(answers),
		ResponseRate:  ratio(len(answers), total),
	}

	switch {
	case q.IsRating():
		dist := map[string]int{}
		sum, n := 0, 0
		for _, a := range answers {
			v, err := strconv.Atoi(strings.TrimSpace(a.AnswerText))
			if err != nil || v < 1 || v > q.MaxRating() {
				continue
			}
			dist[strconv.Itoa(v)]++
			sum += v
			n++
		}
		stats.AnswerDistribution = dist
		if n > 0 {
			avg := float64(sum) / float64(n)
			stats.AverageRating = &avg
		}

	case q.IsChoice():
		dist := map[string]int{}
		for _, c := range q.Choices() {
			dist[c] = 0
		}
		for _, a := range answers {
			for _, v := range a.Values() {
				if q.QuestionType == models.QuestionYesNo {
					v = strings.ToLower(v)
				}
				if _, known := dist[v]; known {
					dist[v]++
				}
			}
		}
		stats.AnswerDistribution = dist
		stats.TopAnswers = topAnswers(dist, topAnswersLimit)
	}
	return stats
}

// topAnswers returns the most frequent non-zero values, ties broken by value.
func topAnswers(dist map[string]int, limit int) []string {
	keys := make([]string, 0, len(dist))
	for k, n := range dist {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if dist[keys[i]] != dist[keys[j]] {
			return dist[keys[i]] > dist[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

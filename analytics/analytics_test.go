package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/feedback-server/models"
)

var now = time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

func sampleForm() models.FeedbackForm {
	return models.FeedbackForm{
		ID:    "form-1",
		Title: "Service survey",
		Questions: []models.Question{
			{ID: 1, Text: "How was it?", QuestionType: models.QuestionRating, IsRequired: true},
			{ID: 2, Text: "Pick a colour", QuestionType: models.QuestionRadio, Options: []string{"red", "green", "blue"}},
			{ID: 3, Text: "Features used", QuestionType: models.QuestionCheckbox, Options: []string{"a", "b", "c"}},
			{ID: 4, Text: "Comments", QuestionType: models.QuestionTextarea},
			{ID: 5, Text: "Recommend us?", QuestionType: models.QuestionYesNo, IsRequired: true},
		},
	}
}

func response(at time.Time, answers ...models.Answer) models.FeedbackResponse {
	return models.FeedbackResponse{SubmittedAt: at, Answers: answers}
}

func text(q uint, v string) models.Answer {
	return models.Answer{QuestionID: q, AnswerText: v}
}

func TestComputeRatingAverageAndDistribution(t *testing.T) {
	form := sampleForm()
	responses := []models.FeedbackResponse{
		response(now.Add(-time.Hour), text(1, "3"), text(5, "yes")),
		response(now.Add(-2*time.Hour), text(1, "4"), text(5, "no")),
		response(now.Add(-3*time.Hour), text(1, "5"), text(5, "yes")),
	}

	r := Compute(form, responses, now)

	assert.Equal(t, 3, r.TotalResponses)
	q := r.QuestionAnalytics[0]
	require.NotNil(t, q.AverageRating)
	assert.InDelta(t, 4.0, *q.AverageRating, 1e-9)
	assert.Equal(t, map[string]int{"3": 1, "4": 1, "5": 1}, q.AnswerDistribution)
	assert.Equal(t, 3, q.ResponseCount)
	assert.InDelta(t, 1.0, q.ResponseRate, 1e-9)

	require.NotNil(t, r.AverageRating)
	assert.InDelta(t, 4.0, *r.AverageRating, 1e-9)
	assert.InDelta(t, 1.0, r.CompletionRate, 1e-9)
}

func TestComputeChoiceDistributionsListEveryOption(t *testing.T) {
	form := sampleForm()
	responses := []models.FeedbackResponse{
		response(now, text(1, "5"), text(2, "red"), models.Answer{QuestionID: 3, AnswerValue: []string{"a", "c"}}, text(5, "YES")),
		response(now, text(1, "4"), text(2, "red"), models.Answer{QuestionID: 3, AnswerValue: []string{"a"}}, text(5, "no")),
	}

	r := Compute(form, responses, now)

	radio := r.QuestionAnalytics[1]
	assert.Equal(t, map[string]int{"red": 2, "green": 0, "blue": 0}, radio.AnswerDistribution)
	assert.Equal(t, []string{"red"}, radio.TopAnswers)
	assert.Nil(t, radio.AverageRating)

	checkbox := r.QuestionAnalytics[2]
	assert.Equal(t, map[string]int{"a": 2, "b": 0, "c": 1}, checkbox.AnswerDistribution)
	assert.Equal(t, []string{"a", "c"}, checkbox.TopAnswers)
	assert.Equal(t, 2, checkbox.ResponseCount)

	yesNo := r.QuestionAnalytics[4]
	assert.Equal(t, map[string]int{"yes": 1, "no": 1}, yesNo.AnswerDistribution)
}

func TestComputeFreeTextReportsCountOnly(t *testing.T) {
	form := sampleForm()
	responses := []models.FeedbackResponse{
		response(now, text(1, "5"), text(4, "great"), text(5, "yes")),
		response(now, text(1, "2"), text(5, "no")),
	}

	r := Compute(form, responses, now)

	comments := r.QuestionAnalytics[3]
	assert.Equal(t, 1, comments.ResponseCount)
	assert.InDelta(t, 0.5, comments.ResponseRate, 1e-9)
	assert.Nil(t, comments.AnswerDistribution)
	assert.Nil(t, comments.AverageRating)
}

func TestComputeCompletionRate(t *testing.T) {
	form := sampleForm()
	responses := []models.FeedbackResponse{
		response(now, text(1, "5"), text(5, "yes")),
		response(now, text(1, "4")),
		response(now, text(5, "no")),
		response(now, text(1, "3"), text(5, "yes"), text(4, "ok")),
	}

	r := Compute(form, responses, now)

	assert.InDelta(t, 0.5, r.CompletionRate, 1e-9)
	assert.InDelta(t, 0.5, CompletionRate(form.Questions, responses), 1e-9)
}

func TestComputeWithoutResponses(t *testing.T) {
	r := Compute(sampleForm(), nil, now)

	assert.Equal(t, 0, r.TotalResponses)
	assert.Zero(t, r.CompletionRate)
	assert.Nil(t, r.AverageRating)
	require.Len(t, r.QuestionAnalytics, 5)
	for _, q := range r.QuestionAnalytics {
		assert.Zero(t, q.ResponseCount)
		assert.Zero(t, q.ResponseRate)
		assert.Nil(t, q.AverageRating)
	}
	assert.Equal(t, map[string]int{"red": 0, "green": 0, "blue": 0}, r.QuestionAnalytics[1].AnswerDistribution)
	assert.Len(t, r.DailyResponses, TrendDays)
}

func TestComputeIgnoresOutOfRangeRatings(t *testing.T) {
	form := sampleForm()
	responses := []models.FeedbackResponse{
		response(now, text(1, "5"), text(5, "yes")),
		response(now, text(1, "9"), text(5, "yes")),
	}

	r := Compute(form, responses, now)

	q := r.QuestionAnalytics[0]
	assert.Equal(t, map[string]int{"5": 1}, q.AnswerDistribution)
	require.NotNil(t, q.AverageRating)
	assert.InDelta(t, 5.0, *q.AverageRating, 1e-9)
}

func TestComputeIsRepeatable(t *testing.T) {
	form := sampleForm()
	responses := []models.FeedbackResponse{
		response(now, text(1, "2"), text(2, "blue"), text(5, "no")),
	}

	assert.Equal(t, Compute(form, responses, now), Compute(form, responses, now))
}

func TestComputeRecentAndDailyTrend(t *testing.T) {
	form := sampleForm()
	responses := []models.FeedbackResponse{
		response(now, text(1, "5"), text(5, "yes")),
		response(now.Add(-26*time.Hour), text(1, "5"), text(5, "yes")),
		response(now.AddDate(0, 0, -40), text(1, "5"), text(5, "yes")),
	}

	r := Compute(form, responses, now)

	assert.Equal(t, 2, r.RecentResponses)
	require.Len(t, r.DailyResponses, TrendDays)
	last := r.DailyResponses[TrendDays-1]
	assert.Equal(t, "2024-05-20", last.Date)
	assert.Equal(t, 1, last.Count)
	assert.Equal(t, "2024-05-19", r.DailyResponses[TrendDays-2].Date)
	assert.Equal(t, 1, r.DailyResponses[TrendDays-2].Count)
}

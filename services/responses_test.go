package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/feedback-server/models"
)

// submitAt records a rating response as if it arrived at the given time.
func (f *fixture) submitAt(t *testing.T, form FormView, at time.Time, rating string) string {
	t.Helper()
	prev := f.public.now
	f.public.now = func() time.Time { return at }
	defer func() { f.public.now = prev }()
	return f.submitRating(t, form, rating).ResponseID
}

func TestResponseListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewResponseService(f.db)

	survey := f.createForm(t, surveyInput())
	eventIn := surveyInput()
	eventIn.Title = "Launch event"
	eventIn.FormType = models.FormTypeEmployeeFeedback
	event := f.createForm(t, eventIn)

	day := func(d int) time.Time { return time.Date(2024, 5, d, 9, 0, 0, 0, time.UTC) }
	first := f.submitAt(t, survey, day(1), "5")
	f.submitAt(t, survey, day(10), "4")
	last := f.submitAt(t, survey, day(20), "3")
	f.submitAt(t, event, day(15), "2")

	all, err := svc.List(ctx, f.owner, ResponseFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Count)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, defaultPageSize, all.Limit)
	require.Len(t, all.Results, 4)
	assert.Equal(t, last, all.Results[0].ID, "newest first")
	assert.Equal(t, "Customer survey", all.Results[0].FormTitle)
	require.Len(t, all.Results[0].Answers, 1)
	assert.Equal(t, "Overall rating", all.Results[0].Answers[0].QuestionText)
	assert.Equal(t, "3", all.Results[0].Answers[0].AnswerText)

	byType, err := svc.List(ctx, f.owner, ResponseFilter{FormType: models.FormTypeEmployeeFeedback})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byType.Count)
	assert.Equal(t, event.ID, byType.Results[0].Form)

	byForm, err := svc.List(ctx, f.owner, ResponseFilter{FormID: survey.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), byForm.Count)

	window, err := svc.List(ctx, f.owner, ResponseFilter{DateFrom: "2024-05-10", DateTo: "2024-05-15"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), window.Count, "both bounds are inclusive days")

	paged, err := svc.List(ctx, f.owner, ResponseFilter{FormID: survey.ID, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), paged.Count)
	require.Len(t, paged.Results, 1)
	assert.Equal(t, first, paged.Results[0].ID)

	capped, err := svc.List(ctx, f.owner, ResponseFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, capped.Limit)
}

func TestResponseListRejectsBadDates(t *testing.T) {
	f := newFixture(t)
	svc := NewResponseService(f.db)

	_, err := svc.List(context.Background(), f.owner, ResponseFilter{DateFrom: "05/01/2024", DateTo: "yesterday"})
	requireFields(t, err, "date_from", "date_to")
}

func TestResponsesAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewResponseService(f.db)

	form := f.createForm(t, surveyInput())
	id := f.submitRating(t, form, "5").ResponseID

	page, err := svc.List(ctx, f.other, ResponseFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
	assert.Empty(t, page.Results)

	_, err = svc.Get(ctx, f.other, id)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, f.owner, id)
	require.NoError(t, err)
	assert.Equal(t, form.ID, got.Form)
	assert.Equal(t, models.QuestionRating, got.Answers[0].QuestionType)
	assert.Equal(t, []string{}, got.Answers[0].AnswerValue)
}

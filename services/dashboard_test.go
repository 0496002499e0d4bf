package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/feedback-server/models"
)

func newDashboard(f *fixture) *DashboardService {
	d := NewDashboardService(f.db)
	d.now = func() time.Time { return fixedNow }
	return d
}

func TestDashboardAggregatesOwnerForms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	busy := f.createForm(t, surveyInput())
	quietIn := surveyInput()
	quietIn.Title = "Quiet"
	quietIn.FormType = models.FormTypeProductFeedback
	quiet := f.createForm(t, quietIn)
	f.createForm(t, surveyInput())

	f.submitAt(t, busy, fixedNow.Add(-time.Hour), "5")
	f.submitAt(t, busy, fixedNow.AddDate(0, 0, -3), "4")
	f.submitAt(t, busy, fixedNow.AddDate(0, 0, -20), "3")
	f.submitAt(t, quiet, fixedNow.AddDate(0, 0, -2), "2")
	// a response missing its required answer halves quiet's completion rate
	require.NoError(t, f.db.Create(&models.FeedbackResponse{FormID: quiet.ID, SubmittedAt: fixedNow.AddDate(0, 0, -40)}).Error)
	require.NoError(t, f.db.Model(&models.FeedbackForm{}).Where("id = ?", quiet.ID).Update("is_active", false).Error)

	// another owner's data stays out
	otherForm, err := f.forms.Create(ctx, f.other, surveyInput())
	require.NoError(t, err)
	f.submitRating(t, otherForm, "1")

	d, err := newDashboard(f).Dashboard(ctx, f.owner)
	require.NoError(t, err)

	assert.Equal(t, 3, d.TotalForms)
	assert.Equal(t, 2, d.ActiveForms)
	assert.Equal(t, 5, d.TotalResponses)
	assert.Equal(t, 3, d.RecentResponses)
	assert.InDelta(t, 0.75, d.AverageCompletionRate, 1e-9)

	assert.Equal(t, []TypeCount{
		{FormType: models.FormTypeCustomerSatisfaction, Count: 2},
		{FormType: models.FormTypeProductFeedback, Count: 1},
	}, d.FormTypeDistribution)

	require.Len(t, d.DailyResponses, 30)
	assert.Equal(t, "2024-06-01", d.DailyResponses[29].Date)
	assert.Equal(t, 1, d.DailyResponses[29].Count)
	total := 0
	for _, day := range d.DailyResponses {
		total += day.Count
	}
	assert.Equal(t, 4, total, "the 40 day old response falls outside the window")

	require.Len(t, d.RecentResponsesList, 5)
	assert.Equal(t, busy.ID, d.RecentResponsesList[0].FormID)
	assert.Equal(t, "Customer survey", d.RecentResponsesList[0].FormTitle)

	require.Len(t, d.TopForms, 3)
	assert.Equal(t, busy.ID, d.TopForms[0].ID)
	assert.Equal(t, 3, d.TopForms[0].ResponseCount)
	assert.Equal(t, quiet.ID, d.TopForms[1].ID)
	assert.False(t, d.TopForms[1].IsActive)
	assert.Zero(t, d.TopForms[2].ResponseCount)
}

func TestDashboardEmpty(t *testing.T) {
	f := newFixture(t)

	d, err := newDashboard(f).Dashboard(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Zero(t, d.TotalForms)
	assert.Zero(t, d.AverageCompletionRate)
	assert.Empty(t, d.FormTypeDistribution)
	assert.NotNil(t, d.RecentResponsesList)
	assert.Empty(t, d.TopForms)
}

func TestStatsPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newDashboard(f)

	form := f.createForm(t, surveyInput())
	expiredIn := surveyInput()
	past := fixedNow.Add(-time.Hour)
	expiredIn.ExpiresAt = &past
	expiredIn.FormType = models.FormTypeServiceFeedback
	f.createForm(t, expiredIn)

	f.submitAt(t, form, fixedNow.AddDate(0, 0, -1), "5")
	f.submitAt(t, form, fixedNow.AddDate(0, 0, -10), "4")

	st, err := svc.Stats(ctx, f.owner, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, st.PeriodDays)
	assert.Equal(t, 2, st.Forms.Total)
	assert.Equal(t, 2, st.Forms.Active)
	assert.Equal(t, 1, st.Forms.Expired)
	assert.Equal(t, 1, st.Responses.Total)
	require.Len(t, st.Responses.DailyTrend, 7)
	assert.Equal(t, StatsDay{Date: "2024-05-31", Responses: 1}, st.Responses.DailyTrend[5])
	require.Len(t, st.Forms.ByType, 2)
	assert.Equal(t, models.FormTypeCustomerSatisfaction, st.Forms.ByType[0].FormType)
	assert.Equal(t, 2, st.Forms.ByType[0].ResponseCount)
	assert.Equal(t, form.ID, st.TopForms[0].ID)

	for _, days := range []int{0, -1, 366} {
		_, err := svc.Stats(ctx, f.owner, days)
		requireFields(t, err, "days")
	}
}

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/testutil"
	"github.com/vnkhanh/feedback-server/utils"
)

func newExporter(f *fixture, dir string) *ExportService {
	s := NewExportService(f.db, utils.LocalFileStore{Dir: dir})
	s.async = func(fn func()) { fn() }
	return s
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newExporter(f, t.TempDir())

	form := f.createForm(t, surveyInput())
	q := form.Questions
	_, err := f.public.Submit(ctx, form.ID, SubmissionInput{Answers: []AnswerInput{
		{Question: q[0].ID, AnswerText: "5"},
		{Question: q[1].ID, AnswerText: "web"},
		{Question: q[2].ID, AnswerText: "Great, thanks"},
	}})
	require.NoError(t, err)
	f.submitAt(t, form, fixedNow.AddDate(0, 0, -30), "2")

	from := fixedNow.AddDate(0, 0, -1).Format(time.RFC3339)
	job, err := svc.Create(ctx, f.owner, form.ID, ExportInput{RangeFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, job.Format)

	done, err := svc.Get(ctx, f.owner, job.JobID)
	require.NoError(t, err)
	require.Equal(t, models.ExportDone, done.Status, "error: %v", done.ErrorMsg)
	require.NotNil(t, done.FilePath)

	data, err := os.ReadFile(*done.FilePath)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus the one response inside the range")
	assert.Equal(t, []string{"response_id", "submitted_at", "Overall rating", "Favourite channel", "Anything else?"}, rows[0])
	assert.Equal(t, []string{"5", "web", "Great, thanks"}, rows[1][2:])
	assert.Equal(t, fixedNow.Format(time.RFC3339), rows[1][1])

	_, err = svc.Get(ctx, f.other, job.JobID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newExporter(f, t.TempDir())

	form := f.createForm(t, surveyInput())
	f.submitRating(t, form, "4")

	job, err := svc.Create(ctx, f.owner, form.ID, ExportInput{Format: models.ExportFormatXLSX})
	require.NoError(t, err)
	done, err := svc.Get(ctx, f.owner, job.JobID)
	require.NoError(t, err)
	require.Equal(t, models.ExportDone, done.Status)

	book, err := excelize.OpenFile(*done.FilePath)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Overall rating", rows[0][2])
	assert.Equal(t, "4", rows[1][2])
}

func TestExportValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newExporter(f, t.TempDir())
	form := f.createForm(t, surveyInput())

	_, err := svc.Create(ctx, f.other, form.ID, ExportInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, f.owner, form.ID, ExportInput{Format: "pdf"})
	requireFields(t, err, "format")

	_, err = svc.Create(ctx, f.owner, form.ID, ExportInput{RangeFrom: testutil.StringPtr("yesterday")})
	requireFields(t, err, "range_from")

	_, err = svc.Create(ctx, f.owner, form.ID, ExportInput{
		RangeFrom: testutil.StringPtr("2024-05-02T00:00:00Z"),
		RangeTo:   testutil.StringPtr("2024-05-01T00:00:00Z"),
	})
	requireFields(t, err, "range_to")

	var jobs int64
	require.NoError(t, f.db.Model(&models.ExportJob{}).Count(&jobs).Error)
	assert.Zero(t, jobs)
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, []byte, string) (utils.StoredFile, error) {
	return utils.StoredFile{}, os.ErrPermission
}

func TestExportRecordsFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewExportService(f.db, failingStore{})
	svc.async = func(fn func()) { fn() }
	form := f.createForm(t, surveyInput())

	job, err := svc.Create(ctx, f.owner, form.ID, ExportInput{})
	require.NoError(t, err)

	got, err := svc.Get(ctx, f.owner, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFailed, got.Status)
	require.NotNil(t, got.ErrorMsg)
	assert.Contains(t, *got.ErrorMsg, "permission denied")
}

func TestExportRowsFlattensCheckboxes(t *testing.T) {
	form := models.FeedbackForm{Questions: []models.Question{
		{ID: 1, Text: "Extras", QuestionType: models.QuestionCheckbox},
		{ID: 2, Text: "Name", QuestionType: models.QuestionText},
	}}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := ExportRows(form, []models.FeedbackResponse{{
		ID:          "r1",
		SubmittedAt: at,
		Answers: []models.Answer{
			{QuestionID: 1, AnswerValue: []string{"a", "b"}},
			{QuestionID: 99, AnswerText: "stale"},
		},
	}})

	assert.Equal(t, [][]string{
		{"response_id", "submitted_at", "Extras", "Name"},
		{"r1", "2024-01-02T03:04:05Z", "a; b", ""},
	}, rows)
}

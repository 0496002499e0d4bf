package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/utils"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSheet     = "Responses"
)

type ExportInput struct {
	Format    string  `json:"format"`
	RangeFrom *string `json:"range_from,omitempty"`
	RangeTo   *string `json:"range_to,omitempty"`
}

// ExportService writes a form's responses to csv or xlsx files in the
// background.
type ExportService struct {
	db    *gorm.DB
	store utils.FileStore
	async func(func())
}

func NewExportService(db *gorm.DB, store utils.FileStore) *ExportService {
	return &ExportService{
		db:    db,
		store: store,
		async: func(fn func()) { go fn() },
	}
}

// Create queues an export job for a form the caller owns.
func (s *ExportService) Create(ctx context.Context, caller Caller, formID string, in ExportInput) (models.ExportJob, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.FeedbackForm{}).
		Where("id = ? AND created_by_id = ?", formID, caller.UserID).
		Count(&n).Error; err != nil {
		return models.ExportJob{}, errors.Wrap(err, "check form owner")
	}
	if n == 0 {
		return models.ExportJob{}, ErrNotFound
	}

	verr := &ValidationError{}
	format := in.Format
	if format == "" {
		format = models.ExportFormatCSV
	}
	if format != models.ExportFormatCSV && format != models.ExportFormatXLSX {
		verr.add("format", fmt.Sprintf("%q is not a valid choice", format))
	}
	from := parseTimestamp(verr, "range_from", in.RangeFrom)
	to := parseTimestamp(verr, "range_to", in.RangeTo)
	if from != nil && to != nil && to.Before(*from) {
		verr.add("range_to", "range_to is before range_from")
	}
	if err := verr.errOrNil(); err != nil {
		return models.ExportJob{}, err
	}

	job := models.ExportJob{
		JobID:     uuid.New().String(),
		FormID:    formID,
		OwnerID:   caller.UserID,
		Format:    format,
		RangeFrom: from,
		RangeTo:   to,
		Status:    models.ExportQueued,
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return models.ExportJob{}, errors.Wrap(err, "create export job")
	}

	jobID := job.JobID
	s.async(func() {
		if err := s.Process(context.Background(), jobID); err != nil {
			utils.Log.WithError(err).WithField("job_id", jobID).Error("export failed")
		}
	})
	return job, nil
}

// Get returns a job belonging to the caller.
func (s *ExportService) Get(ctx context.Context, caller Caller, jobID string) (models.ExportJob, error) {
	var job models.ExportJob
	err := s.db.WithContext(ctx).
		Where("job_id = ? AND owner_id = ?", jobID, caller.UserID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return job, ErrNotFound
	}
	return job, errors.Wrap(err, "load export job")
}

// Process renders the job's file and records the outcome on the job row.
func (s *ExportService) Process(ctx context.Context, jobID string) error {
	var job models.ExportJob
	if err := s.db.WithContext(ctx).First(&job, "job_id = ?", jobID).Error; err != nil {
		return errors.Wrap(err, "load export job")
	}
	if err := s.db.WithContext(ctx).Model(&job).Update("status", models.ExportProcessing).Error; err != nil {
		return errors.Wrap(err, "mark export processing")
	}

	stored, err := s.render(ctx, job)
	if err != nil {
		msg := err.Error()
		if uerr := s.db.WithContext(ctx).Model(&job).Updates(map[string]interface{}{
			"status":    models.ExportFailed,
			"error_msg": msg,
		}).Error; uerr != nil {
			utils.Log.WithError(uerr).WithField("job_id", jobID).Error("could not record export failure")
		}
		return err
	}

	updates := map[string]interface{}{"status": models.ExportDone}
	if stored.Path != "" {
		updates["file_path"] = stored.Path
	}
	if stored.URL != "" {
		updates["file_url"] = stored.URL
	}
	return errors.Wrap(s.db.WithContext(ctx).Model(&job).Updates(updates).Error, "mark export done")
}

func (s *ExportService) render(ctx context.Context, job models.ExportJob) (utils.StoredFile, error) {
	var form models.FeedbackForm
	if err := s.db.WithContext(ctx).
		Preload("Questions", orderQuestions).
		First(&form, "id = ?", job.FormID).Error; err != nil {
		return utils.StoredFile{}, errors.Wrap(err, "load form")
	}

	q := s.db.WithContext(ctx).
		Where("form_id = ?", job.FormID).
		Preload("Answers").
		Order("submitted_at ASC")
	if job.RangeFrom != nil {
		q = q.Where("submitted_at >= ?", *job.RangeFrom)
	}
	if job.RangeTo != nil {
		q = q.Where("submitted_at <= ?", *job.RangeTo)
	}
	var responses []models.FeedbackResponse
	if err := q.Find(&responses).Error; err != nil {
		return utils.StoredFile{}, errors.Wrap(err, "load responses")
	}

	rows := ExportRows(form, responses)
	name := fmt.Sprintf("export_%s.%s", job.JobID, job.Format)
	switch job.Format {
	case models.ExportFormatXLSX:
		data, err := encodeXLSX(rows)
		if err != nil {
			return utils.StoredFile{}, err
		}
		return s.store.Save(ctx, name, data, contentTypeXLSX)
	default:
		data, err := encodeCSV(rows)
		if err != nil {
			return utils.StoredFile{}, err
		}
		return s.store.Save(ctx, name, data, contentTypeCSV)
	}
}

// ExportRows lays out one header row followed by one row per response,
// with a column per question in form order.
func ExportRows(form models.FeedbackForm, responses []models.FeedbackResponse) [][]string {
	header := []string{"response_id", "submitted_at"}
	col := make(map[uint]int, len(form.Questions))
	for i, q := range form.Questions {
		header = append(header, q.Text)
		col[q.ID] = i + 2
	}
	rows := [][]string{header}
	for _, r := range responses {
		row := make([]string, len(header))
		row[0] = r.ID
		row[1] = r.SubmittedAt.UTC().Format(time.RFC3339)
		for _, a := range r.Answers {
			if idx, ok := col[a.QuestionID]; ok {
				row[idx] = a.Display()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Wrap(err, "write csv")
	}
	return buf.Bytes(), nil
}

func encodeXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, errors.Wrap(err, "name sheet")
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(exportSheet, cell, &rows[i]); err != nil {
			return nil, errors.Wrap(err, "row "+strconv.Itoa(i+1))
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "write xlsx")
	}
	return buf.Bytes(), nil
}

func parseTimestamp(verr *ValidationError, field string, v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		verr.add(field, "timestamp must be in RFC 3339 format")
		return nil
	}
	t = t.UTC()
	return &t
}

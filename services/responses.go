package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ResponseFilter struct {
	FormType string
	FormID   string
	DateFrom string // YYYY-MM-DD, inclusive
	DateTo   string // YYYY-MM-DD, inclusive
	Page     int
	Limit    int
}

type AnswerView struct {
	ID           uint     `json:"id"`
	Question     uint     `json:"question"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	AnswerText   string   `json:"answer_text"`
	AnswerValue  []string `json:"answer_value"`
}

type ResponseView struct {
	ID          string       `json:"id"`
	Form        string       `json:"form"`
	FormTitle   string       `json:"form_title"`
	FormType    string       `json:"form_type"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Answers     []AnswerView `json:"answers"`
}

type ResponsePage struct {
	Count   int64          `json:"count"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Results []ResponseView `json:"results"`
}

type ResponseService struct {
	db *gorm.DB
}

func NewResponseService(db *gorm.DB) *ResponseService {
	return &ResponseService{db: db}
}

// List returns responses to the caller's forms, newest first.
func (s *ResponseService) List(ctx context.Context, caller Caller, f ResponseFilter) (ResponsePage, error) {
	verr := &ValidationError{}
	from := parseDay(verr, "date_from", f.DateFrom)
	to := parseDay(verr, "date_to", f.DateTo)
	if err := verr.errOrNil(); err != nil {
		return ResponsePage{}, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.FeedbackResponse{}).
			Joins("JOIN feedback_forms ON feedback_forms.id = feedback_responses.form_id").
			Where("feedback_forms.created_by_id = ?", caller.UserID)
		if f.FormType != "" {
			q = q.Where("feedback_forms.form_type = ?", f.FormType)
		}
		if f.FormID != "" {
			q = q.Where("feedback_responses.form_id = ?", f.FormID)
		}
		if from != nil {
			q = q.Where("feedback_responses.submitted_at >= ?", *from)
		}
		if to != nil {
			q = q.Where("feedback_responses.submitted_at < ?", to.AddDate(0, 0, 1))
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return ResponsePage{}, errors.Wrap(err, "count responses")
	}

	var rows []models.FeedbackResponse
	if err := scoped().
		Select("feedback_responses.*").
		Preload("Form").
		Preload("Answers.Question").
		Order("feedback_responses.submitted_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return ResponsePage{}, errors.Wrap(err, "list responses")
	}

	results := make([]ResponseView, 0, len(rows))
	for _, r := range rows {
		results = append(results, responseView(r))
	}
	return ResponsePage{Count: total, Page: page, Limit: limit, Results: results}, nil
}

func (s *ResponseService) Get(ctx context.Context, caller Caller, id string) (ResponseView, error) {
	var r models.FeedbackResponse
	err := s.db.WithContext(ctx).
		Select("feedback_responses.*").
		Joins("JOIN feedback_forms ON feedback_forms.id = feedback_responses.form_id").
		Where("feedback_responses.id = ? AND feedback_forms.created_by_id = ?", id, caller.UserID).
		Preload("Form").
		Preload("Answers.Question").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ResponseView{}, ErrNotFound
	}
	if err != nil {
		return ResponseView{}, errors.Wrap(err, "load response")
	}
	return responseView(r), nil
}

func parseDay(verr *ValidationError, field, v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		verr.add(field, "date must be in YYYY-MM-DD format")
		return nil
	}
	return &t
}

func responseView(r models.FeedbackResponse) ResponseView {
	v := ResponseView{
		ID:          r.ID,
		Form:        r.FormID,
		SubmittedAt: r.SubmittedAt,
		Answers:     make([]AnswerView, 0, len(r.Answers)),
	}
	if r.Form != nil {
		v.FormTitle = r.Form.Title
		v.FormType = r.Form.FormType
	}
	for _, a := range r.Answers {
		av := AnswerView{
			ID:          a.ID,
			Question:    a.QuestionID,
			AnswerText:  a.AnswerText,
			AnswerValue: a.AnswerValue,
		}
		if a.Question != nil {
			av.QuestionText = a.Question.Text
			av.QuestionType = a.Question.QuestionType
		}
		if av.AnswerValue == nil {
			av.AnswerValue = []string{}
		}
		v.Answers = append(v.Answers, av)
	}
	return v
}

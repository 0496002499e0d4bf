package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)

// PublicForm is what an anonymous visitor sees of a form.
type PublicForm struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	FormType    string            `json:"form_type"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   *time.Time        `json:"expires_at"`
	Questions   []models.Question `json:"questions"`
}

type AnswerInput struct {
	Question    uint     `json:"question"`
	AnswerText  string   `json:"answer_text"`
	AnswerValue []string `json:"answer_value"`
}

type SubmissionInput struct {
	Answers []AnswerInput `json:"answers"`
}

type SubmissionResult struct {
	Message    string `json:"message"`
	ResponseID string `json:"response_id"`
}

// PublicService serves unauthenticated reads and submissions.
type PublicService struct {
	db       *gorm.DB
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
}

func NewPublicService(db *gorm.DB, notifier Notifier) *PublicService {
	return &PublicService{db: db, notifier: orNop(notifier), validate: validator.New(), now: utcNow}
}

func (s *PublicService) openForms(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Where("is_active = ? AND (expires_at IS NULL OR expires_at > ?)", true, s.now())
}

// ListForms returns active, unexpired forms, newest first.
func (s *PublicService) ListForms(ctx context.Context) ([]PublicForm, error) {
	var forms []models.FeedbackForm
	if err := s.openForms(ctx).
		Preload("Questions", orderQuestions).
		Order("created_at DESC").
		Find(&forms).Error; err != nil {
		return nil, errors.Wrap(err, "list public forms")
	}
	out := make([]PublicForm, 0, len(forms))
	for _, f := range forms {
		out = append(out, publicForm(f))
	}
	return out, nil
}

// GetForm returns an open form; inactive, expired and missing forms are
// all ErrNotFound.
func (s *PublicService) GetForm(ctx context.Context, id string) (PublicForm, error) {
	form, err := s.loadOpen(ctx, id)
	if err != nil {
		return PublicForm{}, err
	}
	return publicForm(form), nil
}

// Submit validates and stores an anonymous response. Nothing is written
// unless every answer is valid.
func (s *PublicService) Submit(ctx context.Context, id string, in SubmissionInput) (SubmissionResult, error) {
	form, err := s.loadOpen(ctx, id)
	if err != nil {
		return SubmissionResult{}, err
	}

	answers, err := s.validateSubmission(form, in)
	if err != nil {
		return SubmissionResult{}, err
	}

	response := models.FeedbackResponse{
		FormID:      form.ID,
		SubmittedAt: s.now(),
		Answers:     answers,
	}
	var note models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&response).Error; err != nil {
			return errors.Wrap(err, "create response")
		}
		note = models.Notification{
			UserID:           form.CreatedByID,
			NotificationType: models.NotificationNewResponse,
			Title:            "New response",
			Message:          fmt.Sprintf("New response received for '%s'", form.Title),
			Data: map[string]string{
				"form_id":     form.ID,
				"response_id": response.ID,
				"form_title":  form.Title,
			},
		}
		return errors.Wrap(tx.Create(&note).Error, "create notification")
	})
	if err != nil {
		return SubmissionResult{}, err
	}
	s.notifier.Notify(form.CreatedByID, note)

	return SubmissionResult{Message: "Feedback submitted successfully", ResponseID: response.ID}, nil
}

func (s *PublicService) loadOpen(ctx context.Context, id string) (models.FeedbackForm, error) {
	var form models.FeedbackForm
	err := s.openForms(ctx).
		Where("id = ?", id).
		Preload("Questions", orderQuestions).
		First(&form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return form, ErrNotFound
	}
	if err != nil {
		return form, errors.Wrap(err, "load form")
	}
	return form, nil
}

func (s *PublicService) validateSubmission(form models.FeedbackForm, in SubmissionInput) ([]models.Answer, error) {
	if len(in.Answers) == 0 {
		return nil, invalid("answers", "at least one answer is required")
	}

	questions := make(map[uint]models.Question, len(form.Questions))
	for _, q := range form.Questions {
		questions[q.ID] = q
	}

	verr := &ValidationError{}
	seen := make(map[uint]bool, len(in.Answers))
	answers := make([]models.Answer, 0, len(in.Answers))
	for i, ai := range in.Answers {
		field := fmt.Sprintf("answers[%d]", i)
		q, ok := questions[ai.Question]
		if !ok {
			verr.add(field+".question", "question does not belong to this form")
			continue
		}
		if seen[q.ID] {
			verr.add(field+".question", "question answered more than once")
			continue
		}
		seen[q.ID] = true

		a, blank, msg := s.normalizeAnswer(q, ai)
		if msg != "" {
			verr.add(field, msg)
			continue
		}
		if blank {
			if q.IsRequired {
				verr.add(requiredField(q), "this question is required")
			}
			continue
		}
		answers = append(answers, a)
	}

	for _, q := range form.Questions {
		if q.IsRequired && !seen[q.ID] {
			verr.add(requiredField(q), "this question is required")
		}
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	return answers, nil
}

func requiredField(q models.Question) string {
	return "question_" + strconv.FormatUint(uint64(q.ID), 10)
}

// normalizeAnswer checks one answer against its question type. It returns
// the answer to store, whether it was blank, and a message when invalid.
func (s *PublicService) normalizeAnswer(q models.Question, in AnswerInput) (models.Answer, bool, string) {
	a := models.Answer{QuestionID: q.ID}

	if q.QuestionType == models.QuestionCheckbox {
		values := make([]string, 0, len(in.AnswerValue))
		for _, v := range in.AnswerValue {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			if t := strings.TrimSpace(in.AnswerText); t != "" {
				values = append(values, t)
			}
		}
		if len(values) == 0 {
			return a, true, ""
		}
		allowed := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			allowed[o] = true
		}
		picked := make(map[string]bool, len(values))
		for _, v := range values {
			if !allowed[v] {
				return a, false, fmt.Sprintf("%q is not a valid option", v)
			}
			if picked[v] {
				return a, false, fmt.Sprintf("option %q selected more than once", v)
			}
			picked[v] = true
		}
		a.AnswerValue = values
		return a, false, ""
	}

	text := strings.TrimSpace(in.AnswerText)
	if text == "" {
		switch len(in.AnswerValue) {
		case 0:
		case 1:
			text = strings.TrimSpace(in.AnswerValue[0])
		default:
			return a, false, "this question takes a single value"
		}
	}
	if text == "" {
		return a, true, ""
	}

	switch q.QuestionType {
	case models.QuestionRating, models.QuestionRating10:
		v, err := strconv.Atoi(text)
		if err != nil {
			return a, false, "rating must be a whole number"
		}
		if v < 1 || v > q.MaxRating() {
			return a, false, fmt.Sprintf("rating must be between 1 and %d", q.MaxRating())
		}
		text = strconv.Itoa(v)
	case models.QuestionRadio:
		if !contains(q.Options, text) {
			return a, false, fmt.Sprintf("%q is not a valid option", text)
		}
	case models.QuestionYesNo:
		text = strings.ToLower(text)
		if text != "yes" && text != "no" {
			return a, false, `answer must be "yes" or "no"`
		}
	case models.QuestionEmail:
		if err := s.validate.Var(text, "required,email"); err != nil {
			return a, false, "enter a valid email address"
		}
	case models.QuestionPhone:
		if !phonePattern.MatchString(text) {
			return a, false, "enter a valid phone number"
		}
	}
	a.AnswerText = text
	return a, false, ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func publicForm(f models.FeedbackForm) PublicForm {
	questions := f.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	return PublicForm{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		FormType:    f.FormType,
		CreatedAt:   f.CreatedAt,
		ExpiresAt:   f.ExpiresAt,
		Questions:   questions,
	}
}

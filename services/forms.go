package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/analytics"
	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/utils"
)

const (
	maxTitleLen    = 200
	maxQuestionLen = 500
)

type FormFilter struct {
	FormType string
	IsActive *bool
	Search   string
}

type QuestionInput struct {
	Text         string   `json:"text"`
	QuestionType string   `json:"question_type"`
	IsRequired   *bool    `json:"is_required"`
	Options      []string `json:"options"`
}

type FormInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	FormType    string          `json:"form_type"`
	IsActive    *bool           `json:"is_active"`
	ExpiresAt   *time.Time      `json:"expires_at"`
	Questions   []QuestionInput `json:"questions"`
}

// FormUpdate holds the fields of a partial update; nil means unchanged.
type FormUpdate struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	FormType    *string            `json:"form_type"`
	IsActive    *bool              `json:"is_active"`
	ExpiresAt   utils.NullableTime `json:"expires_at"`
	Questions   *[]QuestionInput   `json:"questions"`
}

// FormView is a form as the owner sees it.
type FormView struct {
	models.FeedbackForm
	ResponseCount int64  `json:"response_count"`
	ShareableLink string `json:"shareable_link"`
	IsExpired     bool   `json:"is_expired"`
}

type ShareLink struct {
	ShareableLink string `json:"shareable_link"`
	FormID        string `json:"form_id"`
	FormTitle     string `json:"form_title"`
}

type FormService struct {
	db           *gorm.DB
	publicOrigin string
	notifier     Notifier
	now          func() time.Time
}

func NewFormService(db *gorm.DB, publicOrigin string, notifier Notifier) *FormService {
	return &FormService{db: db, publicOrigin: publicOrigin, notifier: orNop(notifier), now: utcNow}
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// List returns the caller's forms, newest first.
func (s *FormService) List(ctx context.Context, caller Caller, f FormFilter) ([]FormView, error) {
	q := s.db.WithContext(ctx).
		Where("created_by_id = ?", caller.UserID).
		Preload("Questions", orderQuestions).
		Order("created_at DESC")
	if f.FormType != "" {
		q = q.Where("form_type = ?", f.FormType)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like)
	}

	var forms []models.FeedbackForm
	if err := q.Find(&forms).Error; err != nil {
		return nil, errors.Wrap(err, "list forms")
	}

	ids := make([]string, 0, len(forms))
	for _, form := range forms {
		ids = append(ids, form.ID)
	}
	counts, err := responseCounts(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]FormView, 0, len(forms))
	for _, form := range forms {
		views = append(views, s.view(form, counts[form.ID]))
	}
	return views, nil
}

func (s *FormService) Create(ctx context.Context, caller Caller, in FormInput) (FormView, error) {
	verr := &ValidationError{}
	title := validateTitle(verr, in.Title)
	formType := validateFormType(verr, in.FormType)
	questions := validateQuestions(verr, in.Questions)
	if err := verr.errOrNil(); err != nil {
		return FormView{}, err
	}

	form := models.FeedbackForm{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		FormType:    formType,
		CreatedByID: caller.UserID,
		IsActive:    in.IsActive == nil || *in.IsActive,
		Questions:   questions,
	}
	if in.ExpiresAt != nil {
		exp := in.ExpiresAt.UTC()
		form.ExpiresAt = &exp
	}

	var note models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&form).Error; err != nil {
			return errors.Wrap(err, "create form")
		}
		note = models.Notification{
			UserID:           caller.UserID,
			NotificationType: models.NotificationFormCreated,
			Title:            "Form created",
			Message:          fmt.Sprintf("Form '%s' was created", form.Title),
			Data:             map[string]string{"form_id": form.ID, "form_title": form.Title},
		}
		return errors.Wrap(tx.Create(&note).Error, "create notification")
	})
	if err != nil {
		return FormView{}, err
	}
	s.notifier.Notify(caller.UserID, note)

	return s.Get(ctx, caller, form.ID)
}

// Get returns the form when the caller owns it, otherwise ErrNotFound.
func (s *FormService) Get(ctx context.Context, caller Caller, id string) (FormView, error) {
	form, err := s.load(ctx, s.db, caller, id)
	if err != nil {
		return FormView{}, err
	}
	counts, err := responseCounts(ctx, s.db, []string{form.ID})
	if err != nil {
		return FormView{}, err
	}
	return s.view(form, counts[form.ID]), nil
}

// Replace is a full update: the title must be present.
func (s *FormService) Replace(ctx context.Context, caller Caller, id string, upd FormUpdate) (FormView, error) {
	if upd.Title == nil {
		if _, err := s.load(ctx, s.db, caller, id); err != nil {
			return FormView{}, err
		}
		return FormView{}, invalid("title", "this field is required")
	}
	return s.Update(ctx, caller, id, upd)
}

// Update applies the fields present in upd.
func (s *FormService) Update(ctx context.Context, caller Caller, id string, upd FormUpdate) (FormView, error) {
	form, err := s.load(ctx, s.db, caller, id)
	if err != nil {
		return FormView{}, err
	}

	verr := &ValidationError{}
	changes := map[string]interface{}{}
	if upd.Title != nil {
		changes["title"] = validateTitle(verr, *upd.Title)
	}
	if upd.Description != nil {
		changes["description"] = strings.TrimSpace(*upd.Description)
	}
	if upd.FormType != nil {
		if *upd.FormType == "" {
			verr.add("form_type", "this field may not be blank")
		} else {
			changes["form_type"] = validateFormType(verr, *upd.FormType)
		}
	}
	if upd.IsActive != nil {
		changes["is_active"] = *upd.IsActive
	}
	if upd.ExpiresAt.Set {
		changes["expires_at"] = upd.ExpiresAt.Value
	}

	var questions []models.Question
	if upd.Questions != nil {
		questions = validateQuestions(verr, *upd.Questions)
	}
	if err := verr.errOrNil(); err != nil {
		return FormView{}, err
	}

	var note models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(changes) > 0 {
			if err := tx.Model(&models.FeedbackForm{ID: form.ID}).Updates(changes).Error; err != nil {
				return errors.Wrap(err, "update form")
			}
		}
		if upd.Questions != nil {
			var n int64
			if err := tx.Model(&models.FeedbackResponse{}).
				Where("form_id = ?", form.ID).Count(&n).Error; err != nil {
				return errors.Wrap(err, "count responses")
			}
			if n > 0 {
				return invalid("questions", "questions cannot be replaced once the form has responses")
			}
			if err := tx.Where("form_id = ?", form.ID).Delete(&models.Question{}).Error; err != nil {
				return errors.Wrap(err, "delete questions")
			}
			for i := range questions {
				questions[i].FormID = form.ID
			}
			if err := tx.Create(&questions).Error; err != nil {
				return errors.Wrap(err, "create questions")
			}
		}
		title := form.Title
		if t, ok := changes["title"].(string); ok {
			title = t
		}
		note = models.Notification{
			UserID:           caller.UserID,
			NotificationType: models.NotificationFormUpdated,
			Title:            "Form updated",
			Message:          fmt.Sprintf("Form '%s' was updated", title),
			Data:             map[string]string{"form_id": form.ID, "form_title": title},
		}
		return errors.Wrap(tx.Create(&note).Error, "create notification")
	})
	if err != nil {
		return FormView{}, err
	}
	s.notifier.Notify(caller.UserID, note)

	return s.Get(ctx, caller, form.ID)
}

// Delete removes the form with its questions, responses, answers and
// export jobs in one transaction.
func (s *FormService) Delete(ctx context.Context, caller Caller, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		form, err := s.load(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		responseIDs := tx.Model(&models.FeedbackResponse{}).Select("id").Where("form_id = ?", form.ID)
		if err := tx.Where("response_id IN (?)", responseIDs).Delete(&models.Answer{}).Error; err != nil {
			return errors.Wrap(err, "delete answers")
		}
		if err := tx.Where("form_id = ?", form.ID).Delete(&models.FeedbackResponse{}).Error; err != nil {
			return errors.Wrap(err, "delete responses")
		}
		if err := tx.Where("form_id = ?", form.ID).Delete(&models.Question{}).Error; err != nil {
			return errors.Wrap(err, "delete questions")
		}
		if err := tx.Where("form_id = ?", form.ID).Delete(&models.ExportJob{}).Error; err != nil {
			return errors.Wrap(err, "delete export jobs")
		}
		return errors.Wrap(tx.Delete(&form).Error, "delete form")
	})
}

// ShareLink is the public URL of form.
func (s *FormService) ShareLink(form models.FeedbackForm) string {
	return models.ShareableLink(s.publicOrigin, form.ID)
}

func (s *FormService) GetShareLink(ctx context.Context, caller Caller, id string) (ShareLink, error) {
	form, err := s.load(ctx, s.db, caller, id)
	if err != nil {
		return ShareLink{}, err
	}
	return ShareLink{ShareableLink: s.ShareLink(form), FormID: form.ID, FormTitle: form.Title}, nil
}

// Analytics recomputes the form report from the stored responses.
func (s *FormService) Analytics(ctx context.Context, caller Caller, id string) (analytics.Report, error) {
	form, err := s.load(ctx, s.db, caller, id)
	if err != nil {
		return analytics.Report{}, err
	}
	var responses []models.FeedbackResponse
	if err := s.db.WithContext(ctx).
		Where("form_id = ?", form.ID).
		Preload("Answers").
		Order("submitted_at ASC").
		Find(&responses).Error; err != nil {
		return analytics.Report{}, errors.Wrap(err, "load responses")
	}
	return analytics.Compute(form, responses, s.now()), nil
}

// QuestionAnalytics returns only the per question part of Analytics.
func (s *FormService) QuestionAnalytics(ctx context.Context, caller Caller, id string) ([]analytics.QuestionStats, error) {
	report, err := s.Analytics(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return report.QuestionAnalytics, nil
}

// Owns reports whether the caller owns the form without loading questions.
func (s *FormService) Owns(ctx context.Context, caller Caller, id string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.FeedbackForm{}).
		Where("id = ? AND created_by_id = ?", id, caller.UserID).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "check form owner")
	}
	return n > 0, nil
}

func (s *FormService) load(ctx context.Context, db *gorm.DB, caller Caller, id string) (models.FeedbackForm, error) {
	var form models.FeedbackForm
	err := db.WithContext(ctx).
		Where("id = ? AND created_by_id = ?", id, caller.UserID).
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

func (s *FormService) view(form models.FeedbackForm, count int64) FormView {
	if form.Questions == nil {
		form.Questions = []models.Question{}
	}
	return FormView{
		FeedbackForm:  form,
		ResponseCount: count,
		ShareableLink: s.ShareLink(form),
		IsExpired:     form.IsExpired(s.now()),
	}
}

type formCount struct {
	FormID string
	Count  int64
}

func responseCounts(ctx context.Context, db *gorm.DB, formIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(formIDs))
	if len(formIDs) == 0 {
		return counts, nil
	}
	var rows []formCount
	if err := db.WithContext(ctx).Model(&models.FeedbackResponse{}).
		Select("form_id, COUNT(*) AS count").
		Where("form_id IN ?", formIDs).
		Group("form_id").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count responses")
	}
	for _, r := range rows {
		counts[r.FormID] = r.Count
	}
	return counts, nil
}

func validateTitle(verr *ValidationError, title string) string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		verr.add("title", "this field may not be blank")
	case utf8.RuneCountInString(title) > maxTitleLen:
		verr.add("title", fmt.Sprintf("ensure this field has no more than %d characters", maxTitleLen))
	}
	return title
}

func validateFormType(verr *ValidationError, formType string) string {
	if formType == "" {
		return models.FormTypeGeneral
	}
	if !models.IsValidFormType(formType) {
		verr.add("form_type", fmt.Sprintf("%q is not a valid choice", formType))
	}
	return formType
}

// validateQuestions checks the inputs and builds questions ordered by
// their position in the list.
func validateQuestions(verr *ValidationError, in []QuestionInput) []models.Question {
	if len(in) == 0 {
		verr.add("questions", "at least one question is required")
		return nil
	}
	out := make([]models.Question, 0, len(in))
	for i, qi := range in {
		field := fmt.Sprintf("questions[%d]", i)
		text := strings.TrimSpace(qi.Text)
		switch {
		case text == "":
			verr.add(field+".text", "this field may not be blank")
		case utf8.RuneCountInString(text) > maxQuestionLen:
			verr.add(field+".text", fmt.Sprintf("ensure this field has no more than %d characters", maxQuestionLen))
		}
		if !models.IsValidQuestionType(qi.QuestionType) {
			verr.add(field+".question_type", fmt.Sprintf("%q is not a valid choice", qi.QuestionType))
		}

		q := models.Question{
			Text:         text,
			QuestionType: qi.QuestionType,
			IsRequired:   qi.IsRequired == nil || *qi.IsRequired,
			Order:        i,
			Options:      []string{},
		}
		if q.NeedsOptions() {
			q.Options = validateOptions(verr, field+".options", qi.Options)
		}
		out = append(out, q)
	}
	return out
}

func validateOptions(verr *ValidationError, field string, options []string) []string {
	if len(options) == 0 {
		verr.add(field, "choice questions need at least one option")
		return nil
	}
	seen := make(map[string]bool, len(options))
	out := make([]string, 0, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			verr.add(field, "options may not be blank")
			continue
		}
		if seen[o] {
			verr.add(field, fmt.Sprintf("duplicate option %q", o))
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes LIKE treat s literally under ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

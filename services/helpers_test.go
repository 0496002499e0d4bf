package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/testutil"
)

const testOrigin = "https://feedback.example.com"

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[uint][]models.Notification
}

func (r *recordingNotifier) Notify(userID uint, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = map[uint][]models.Notification{}
	}
	r.sent[userID] = append(r.sent[userID], n)
}

func (r *recordingNotifier) For(userID uint) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[userID]
}

type fixture struct {
	db       *gorm.DB
	notifier *recordingNotifier
	forms    *FormService
	public   *PublicService
	owner    Caller
	other    Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	n := &recordingNotifier{}
	f := &fixture{
		db:       db,
		notifier: n,
		forms:    NewFormService(db, testOrigin, n),
		public:   NewPublicService(db, n),
		owner:    CallerFromUser(testutil.CreateUser(t, db, "owner")),
		other:    CallerFromUser(testutil.CreateUser(t, db, "intruder")),
	}
	clock := func() time.Time { return fixedNow }
	f.forms.now = clock
	f.public.now = clock
	return f
}

func surveyInput() FormInput {
	return FormInput{
		Title:       "Customer survey",
		Description: "Tell us how we did",
		FormType:    models.FormTypeCustomerSatisfaction,
		Questions: []QuestionInput{
			{Text: "Overall rating", QuestionType: models.QuestionRating},
			{Text: "Favourite channel", QuestionType: models.QuestionRadio, Options: []string{"web", "phone", "store"}, IsRequired: testutil.BoolPtr(false)},
			{Text: "Anything else?", QuestionType: models.QuestionTextarea, IsRequired: testutil.BoolPtr(false)},
		},
	}
}

func (f *fixture) createForm(t *testing.T, in FormInput) FormView {
	t.Helper()
	form, err := f.forms.Create(context.Background(), f.owner, in)
	require.NoError(t, err)
	return form
}

func (f *fixture) submitRating(t *testing.T, form FormView, rating string) SubmissionResult {
	t.Helper()
	res, err := f.public.Submit(context.Background(), form.ID, SubmissionInput{
		Answers: []AnswerInput{{Question: form.Questions[0].ID, AnswerText: rating}},
	})
	require.NoError(t, err)
	return res
}

func requireFields(t *testing.T, err error, fields ...string) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range fields {
		require.Contains(t, verr.Fields, field)
	}
	return verr
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

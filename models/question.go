package models

// Question types accepted in Question.QuestionType.
const (
	QuestionText     = "text"
	QuestionTextarea = "textarea"
	QuestionRadio    = "radio"
	QuestionCheckbox = "checkbox"
	QuestionRating   = "rating"
	QuestionRating10 = "rating_10"
	QuestionYesNo    = "yes_no"
	QuestionEmail    = "email"
	QuestionPhone    = "phone"
)

var questionTypes = map[string]bool{
	QuestionText:     true,
	QuestionTextarea: true,
	QuestionRadio:    true,
	QuestionCheckbox: true,
	QuestionRating:   true,
	QuestionRating10: true,
	QuestionYesNo:    true,
	QuestionEmail:    true,
	QuestionPhone:    true,
}

func IsValidQuestionType(t string) bool {
	return questionTypes[t]
}

type Question struct {
	ID           uint     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FormID       string   `gorm:"column:form_id;size:36;not null;index" json:"-"`
	Text         string   `gorm:"column:text;size:500;not null" json:"text"`
	QuestionType string   `gorm:"column:question_type;size:20;not null" json:"question_type"`
	IsRequired   bool     `gorm:"column:is_required;not null" json:"is_required"`
	Order        int      `gorm:"column:position;not null;default:0" json:"order"`
	Options      []string `gorm:"column:options;type:text;serializer:json" json:"options"`
}

func (Question) TableName() string {
	return "questions"
}

func (q Question) IsRating() bool {
	return q.QuestionType == QuestionRating || q.QuestionType == QuestionRating10
}

// MaxRating is the top of the rating scale, 0 for non-rating questions.
func (q Question) MaxRating() int {
	switch q.QuestionType {
	case QuestionRating:
		return 5
	case QuestionRating10:
		return 10
	}
	return 0
}

// IsChoice covers questions whose answers come from a fixed set.
func (q Question) IsChoice() bool {
	switch q.QuestionType {
	case QuestionRadio, QuestionCheckbox, QuestionYesNo:
		return true
	}
	return false
}

func (q Question) NeedsOptions() bool {
	return q.QuestionType == QuestionRadio || q.QuestionType == QuestionCheckbox
}

// Choices is the set of values a choice question can take.
func (q Question) Choices() []string {
	if q.QuestionType == QuestionYesNo {
		return []string{"yes", "no"}
	}
	return q.Options
}

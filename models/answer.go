package models

import "strings"

type Answer struct {
	ID          uint     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ResponseID  string   `gorm:"column:response_id;size:36;not null;uniqueIndex:idx_answer_response_question" json:"-"`
	QuestionID  uint     `gorm:"column:question_id;not null;uniqueIndex:idx_answer_response_question;index" json:"question"`
	AnswerText  string   `gorm:"column:answer_text;type:text" json:"answer_text"`
	AnswerValue []string `gorm:"column:answer_value;type:text;serializer:json" json:"answer_value"`

	Question *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Answer) TableName() string {
	return "answers"
}

// IsBlank reports whether the answer carries no value at all.
func (a Answer) IsBlank() bool {
	return strings.TrimSpace(a.AnswerText) == "" && len(a.AnswerValue) == 0
}

// Values returns the selected values: the list for multi choice answers,
// otherwise the trimmed text.
func (a Answer) Values() []string {
	if len(a.AnswerValue) > 0 {
		return a.AnswerValue
	}
	if t := strings.TrimSpace(a.AnswerText); t != "" {
		return []string{t}
	}
	return nil
}

// Display flattens the answer into a single cell for exports.
func (a Answer) Display() string {
	if len(a.AnswerValue) > 0 {
		return strings.Join(a.AnswerValue, "; ")
	}
	return a.AnswerText
}

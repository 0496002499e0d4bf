package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackResponse struct {
	ID          string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	FormID      string    `gorm:"column:form_id;size:36;not null;index" json:"form"`
	SubmittedAt time.Time `gorm:"column:submitted_at;not null;index" json:"submitted_at"`

	Form    *FeedbackForm `gorm:"foreignKey:FormID" json:"-"`
	Answers []Answer      `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers"`
}

func (FeedbackResponse) TableName() string {
	return "feedback_responses"
}

func (r *FeedbackResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Form categories accepted in FeedbackForm.FormType.
const (
	FormTypeCustomerSatisfaction = "customer_satisfaction"
	FormTypeEmployeeFeedback     = "employee_feedback"
	FormTypeProductFeedback      = "product_feedback"
	FormTypeServiceFeedback      = "service_feedback"
	FormTypeGeneral              = "general"
)

type FormTypeChoice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FormTypes lists the categories in display order.
var FormTypes = []FormTypeChoice{
	{FormTypeCustomerSatisfaction, "Customer Satisfaction"},
	{FormTypeEmployeeFeedback, "Employee Feedback"},
	{FormTypeProductFeedback, "Product Feedback"},
	{FormTypeServiceFeedback, "Service Feedback"},
	{FormTypeGeneral, "General Feedback"},
}

func IsValidFormType(v string) bool {
	for _, ft := range FormTypes {
		if ft.Value == v {
			return true
		}
	}
	return false
}

type FeedbackForm struct {
	ID          string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	Title       string     `gorm:"column:title;size:200;not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	FormType    string     `gorm:"column:form_type;size:50;not null;index" json:"form_type"`
	CreatedByID uint       `gorm:"column:created_by_id;not null;index" json:"created_by"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	IsActive    bool       `gorm:"column:is_active;not null;index" json:"is_active"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expires_at"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Questions []Question         `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"questions"`
	Responses []FeedbackResponse `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
}

func (FeedbackForm) TableName() string {
	return "feedback_forms"
}

func (f *FeedbackForm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the form has an expiry at or before now.
func (f *FeedbackForm) IsExpired(now time.Time) bool {
	return f.ExpiresAt != nil && !now.Before(*f.ExpiresAt)
}

// ShareableLink is the public URL of the form for the given origin.
func ShareableLink(origin, formID string) string {
	return strings.TrimRight(origin, "/") + "/feedback/" + formID
}

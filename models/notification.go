package models

import "time"

const (
	NotificationNewResponse = "new_response"
	NotificationFormCreated = "form_created"
	NotificationFormUpdated = "form_updated"
)

type Notification struct {
	ID               uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint              `gorm:"not null;index" json:"-"`
	NotificationType string            `gorm:"size:20;not null" json:"notification_type"`
	Title            string            `gorm:"size:200;not null" json:"title"`
	Message          string            `gorm:"type:text" json:"message"`
	IsRead           bool              `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	Data             map[string]string `gorm:"type:text;serializer:json" json:"data"`
}

func (Notification) TableName() string {
	return "notifications"
}

package services

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, caller Caller, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", caller.UserID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	notes := []models.Notification{}
	if err := q.Order("created_at DESC, id DESC").Find(&notes).Error; err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	return notes, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, caller Caller, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, caller.UserID).
		Update("is_read", true)
	if res.Error != nil {
		return errors.Wrap(res.Error, "mark notification read")
	}
	if res.RowsAffected == 0 {
		// already read rows still match on most drivers; check existence
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", id, caller.UserID).Count(&n).Error; err != nil {
			return errors.Wrap(err, "find notification")
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller Caller) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", caller.UserID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "mark notifications read")
	}
	return res.RowsAffected, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, caller Caller) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", caller.UserID, false).
		Count(&n).Error
	return n, errors.Wrap(err, "count unread notifications")
}

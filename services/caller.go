package services

import (
	"time"

	"github.com/vnkhanh/feedback-server/models"
)

// Caller identifies the authenticated admin on whose behalf a call runs.
type Caller struct {
	UserID   uint
	Username string
}

func CallerFromUser(u models.User) Caller {
	return Caller{UserID: u.ID, Username: u.Username}
}

// Notifier pushes a stored notification to connected clients.
type Notifier interface {
	Notify(userID uint, n models.Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint, models.Notification) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func utcNow() time.Time {
	return time.Now().UTC()
}

package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/feedback-server/models"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func register(t *testing.T, h *Hub, userID uint, buffer int) *Client {
	t.Helper()
	c := &Client{hub: h, UserID: userID, Send: make(chan []byte, buffer)}
	h.Register <- c
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.clients[userID][c]
	}, time.Second, 5*time.Millisecond)
	return c
}

func TestNotifyReachesOnlyTheUser(t *testing.T) {
	h, _ := startHub(t)
	a1 := register(t, h, 1, 4)
	a2 := register(t, h, 1, 4)
	b := register(t, h, 2, 4)
	assert.Equal(t, 2, h.Connected(1))

	h.Notify(1, models.Notification{ID: 7, Title: "New response", NotificationType: models.NotificationNewResponse})

	for _, c := range []*Client{a1, a2} {
		select {
		case data := <-c.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.Equal(t, "notification", msg.Type)
			assert.Equal(t, uint(7), msg.Notification.ID)
		default:
			t.Fatal("expected a message")
		}
	}
	assert.Empty(t, b.Send)
}

func TestSlowClientIsDropped(t *testing.T) {
	h, _ := startHub(t)
	c := register(t, h, 1, 1)

	h.Notify(1, models.Notification{ID: 1})
	h.Notify(1, models.Notification{ID: 2})

	assert.Zero(t, h.Connected(1))
	<-c.Send
	_, open := <-c.Send
	assert.False(t, open, "send channel is closed once dropped")
}

func TestUnregisterAndShutdown(t *testing.T) {
	h, cancel := startHub(t)
	a := register(t, h, 1, 1)
	b := register(t, h, 2, 1)

	h.Unregister <- a
	require.Eventually(t, func() bool { return h.Connected(1) == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-h.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	require.Eventually(t, func() bool { return h.Connected(2) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-b.Send
	assert.False(t, open)
}

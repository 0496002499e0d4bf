package routes

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/feedback-server/client"
	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/realtime"
)

func TestNotificationStream(t *testing.T) {
	srv, d := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Hub.Run(ctx)

	alice := login(t, srv.URL, "alice")
	me, err := alice.CurrentUser(ctx)
	require.NoError(t, err)

	form, err := alice.CreateForm(ctx, client.FormInput{
		Title:     "Live",
		Questions: []client.QuestionInput{{Text: "Rate", QuestionType: models.QuestionRating}},
	})
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications/?token=" + alice.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return d.Hub.Connected(me.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	res, err := client.New(srv.URL, "").Submit(ctx, form.ID, []client.AnswerInput{{Question: form.Questions[0].ID, AnswerText: "5"}})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg realtime.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "notification", msg.Type)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, models.NotificationNewResponse, msg.Notification.NotificationType)
	assert.Equal(t, res.ResponseID, msg.Notification.Data["response_id"])
}

func TestNotificationStreamNeedsToken(t *testing.T) {
	srv, _ := newServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications/"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

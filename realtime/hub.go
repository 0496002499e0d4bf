// Package realtime pushes notifications to connected admins over
// websockets.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/utils"
)

const sendBuffer = 64

// Client is one websocket connection of an admin.
type Client struct {
	hub    *Hub
	UserID uint
	conn   *websocket.Conn
	Send   chan []byte
}

// Message is the frame written to clients.
type Message struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
}

// Hub keeps every open connection grouped by user.
type Hub struct {
	clients map[uint]map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case c := <-h.Register:
			h.mu.Lock()
			if h.clients[c.UserID] == nil {
				h.clients[c.UserID] = make(map[*Client]bool)
			}
			h.clients[c.UserID][c] = true
			h.mu.Unlock()
			utils.Log.WithField("user_id", c.UserID).Debug("websocket client registered")

		case c := <-h.Unregister:
			h.mu.Lock()
			h.remove(c)
			h.mu.Unlock()
			utils.Log.WithField("user_id", c.UserID).Debug("websocket client unregistered")
		}
	}
}

// Notify sends n to every connection of userID. A client whose buffer is
// full is dropped.
func (h *Hub) Notify(userID uint, n models.Notification) {
	data, err := json.Marshal(Message{Type: "notification", Notification: &n, Timestamp: time.Now().UTC()})
	if err != nil {
		utils.Log.WithError(err).Error("marshal notification")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- data:
		default:
			utils.Log.WithField("user_id", userID).Warn("websocket send buffer full, dropping client")
			h.remove(c)
		}
	}
}

// Connected reports how many connections userID has open.
func (h *Hub) Connected(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// remove must be called with mu held.
func (h *Hub) remove(c *Client) {
	set := h.clients[c.UserID]
	if !set[c] {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.remove(c)
		}
	}
}

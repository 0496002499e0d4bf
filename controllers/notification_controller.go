package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/realtime"
	"github.com/vnkhanh/feedback-server/services"
)

type NotificationController struct {
	notes *services.NotificationService
	hub   *realtime.Hub
}

func NewNotificationController(notes *services.NotificationService, hub *realtime.Hub) *NotificationController {
	return &NotificationController{notes: notes, hub: hub}
}

// GET /api/notifications/?unread=true
func (nc *NotificationController) List(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	notes, err := nc.notes.List(c.Request.Context(), middleware.CurrentCaller(c), unread)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// POST /api/notifications/:id/mark_as_read/
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, services.ErrNotFound)
		return
	}
	if err := nc.notes.MarkRead(c.Request.Context(), middleware.CurrentCaller(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "marked as read"})
}

// POST /api/notifications/mark_all_as_read/
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	n, err := nc.notes.MarkAllRead(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "all marked as read", "updated": n})
}

// GET /api/notifications/unread_count/
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	n, err := nc.notes.UnreadCount(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}

// GET /ws/notifications/?token=
func (nc *NotificationController) Stream(c *gin.Context) {
	realtime.Serve(nc.hub, c.Writer, c.Request, middleware.CurrentUser(c).ID)
}

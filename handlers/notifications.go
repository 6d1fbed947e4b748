package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-tracking/middleware"
	"food-delivery-tracking/notification"
)

type inboxQuery struct {
	Limit      int  `form:"limit" binding:"omitempty,min=1"`
	UnreadOnly bool `form:"unread_only"`
}

// GetNotifications returns the caller's notifications, newest first
func (h *Handler) GetNotifications(c *gin.Context) {
	var q inboxQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	actor := middleware.GetActor(c)
	items, err := h.notifications.List(c.Request.Context(), notification.ListParams{
		Recipient:  actor,
		Limit:      q.Limit,
		UnreadOnly: q.UnreadOnly,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	unread, err := h.notifications.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"count":         len(items),
		"unread_count":  unread,
		"notifications": items,
	})
}

// GetUnreadCount returns how many of the caller's notifications are unread
func (h *Handler) GetUnreadCount(c *gin.Context) {
	unread, err := h.notifications.UnreadCount(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "unread_count": unread})
}

// MarkNotificationRead flags one of the caller's notifications as read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
}

// MarkAllNotificationsRead flags every unread notification of the caller
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := h.notifications.MarkAllRead(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

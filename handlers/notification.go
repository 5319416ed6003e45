package handlers

import (
	"net/http"

	"caresaviour/services/notification"
	"caresaviour/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the caller's notification inbox.
type NotificationHandler struct {
	Svc notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Svc: svc}
}

// ListNotifications handles GET /api/notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	list, err := h.Svc.ListForRecipient(c.Request.Context(), caller.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	count, err := h.Svc.UnreadCount(c.Request.Context(), caller.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// MarkRead handles PUT /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	if _, err := h.Svc.MarkRead(c.Request.Context(), c.Param("id"), caller.ID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Marked as read"})
}

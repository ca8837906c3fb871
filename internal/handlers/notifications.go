package handlers

import (
	"strconv"

	"counseling-app-server/internal/services"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler serves the caller's inbox.
type NotificationHandler struct {
	Service *services.NotificationService
	Log     *zap.Logger
}

func NewNotificationHandler(svc *services.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Service: svc, Log: log}
}

// GetNotifications lists notifications, newest first. ?unread=true limits to unread ones.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	unreadOnly := false
	if raw := c.Query("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.BadRequest(c, "unread must be true or false")
			return
		}
		unreadOnly = v
	}

	notifications, err := h.Service.List(c.Request.Context(), actor, unreadOnly)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Notifications fetched successfully", notifications)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.Service.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Notification marked as read", nil)
}

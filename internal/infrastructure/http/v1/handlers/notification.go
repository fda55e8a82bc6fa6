package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/notification"
)

// NotificationHandler serves the signed-in user's inbox.
type NotificationHandler struct {
	*BaseHandler
	service *notification.Service
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(base *BaseHandler, service *notification.Service) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, service: service}
}

// Inbox handles GET /notifications
func (h *NotificationHandler) Inbox(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	inbox, err := h.service.Inbox(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inbox)
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	notificationID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), userID, notificationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Notification marked as read", n)
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	n, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "All notifications marked as read", gin.H{"updated": n})
}

// RegisterRoutes registers the inbox routes.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Inbox)
	rg.POST("/read-all", h.MarkAllRead)
	rg.POST("/:id/read", h.MarkRead)
}

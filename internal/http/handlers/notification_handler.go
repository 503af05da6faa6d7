package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/repository"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

// NotificationHandler обслуживает маршруты уведомлений.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler создаёт новый хэндлер.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications обрабатывает GET /notifications?page&size&isRead&sort.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := common.ParsePage(c, repository.NotificationSort)
	if err != nil {
		response.Error(c, err)
		return
	}

	isRead, err := common.ParseBoolQuery(c, "isRead")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.notifications.List(c.Request.Context(), caller, models.NotificationFilter{IsRead: isRead}, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CountUnread обрабатывает GET /notifications/unread-count.
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

// MarkAsRead обрабатывает PUT /notifications/:id/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	caller, id, ok := callerAndID(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), caller, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"id": id, "isRead": true})
}

// MarkAllAsRead обрабатывает PUT /notifications/read-all.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.notifications.MarkAllRead(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"updated": updated})
}

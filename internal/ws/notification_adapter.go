package ws

import (
	"context"

	"github.com/ignatzorin/eventmarket-backend/internal/models"
)

// EventNotification - тип сообщения с новым уведомлением.
const EventNotification = "notification"

// NotificationPusher доставляет сохранённые уведомления через Hub.
type NotificationPusher struct {
	hub *Hub
}

// NewNotificationPusher создаёт адаптер поверх хаба.
func NewNotificationPusher(hub *Hub) *NotificationPusher {
	return &NotificationPusher{hub: hub}
}

// Push реализует service.NotificationPusher.
func (p *NotificationPusher) Push(ctx context.Context, n *models.Notification) error {
	return p.hub.BroadcastToUser(ctx, n.UserID, EventNotification, n)
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification - уведомление пользователя о событии жизненного цикла.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"userId"`
	Type      string          `db:"type" json:"type"`
	Message   string          `db:"message" json:"message"`
	Payload   json.RawMessage `db:"payload" json:"payload,omitempty"`
	IsRead    bool            `db:"is_read" json:"isRead"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// NotificationFilter - фильтр ленты уведомлений.
type NotificationFilter struct {
	IsRead *bool
}

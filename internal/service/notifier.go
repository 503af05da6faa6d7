package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eventmarket-backend/internal/goroutine"
	"github.com/ignatzorin/eventmarket-backend/internal/logger"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
)

// NotificationPusher доставляет уведомление в открытые соединения пользователя.
type NotificationPusher interface {
	Push(ctx context.Context, n *models.Notification) error
}

// Event - одно уведомление для конкретного пользователя.
type Event struct {
	UserID  uuid.UUID
	Type    string
	Message string
	Payload map[string]interface{}
}

// Notifier сохраняет и рассылает уведомления в фоне.
// Ошибки доставки только логируются и не влияют на исходную операцию.
type Notifier struct {
	repo    NotificationRepository
	pusher  NotificationPusher
	timeout time.Duration
	// dispatch запускает доставку; в тестах подменяется синхронным вызовом.
	dispatch func(timeout time.Duration, fn func(context.Context))
}

// NewNotifier создаёт рассыльщик. pusher может быть nil.
func NewNotifier(repo NotificationRepository, pusher NotificationPusher, timeout time.Duration) *Notifier {
	return &Notifier{
		repo:     repo,
		pusher:   pusher,
		timeout:  timeout,
		dispatch: goroutine.SafeGoDetached,
	}
}

// Notify ставит события в доставку и сразу возвращается.
func (n *Notifier) Notify(events ...Event) {
	if n == nil || len(events) == 0 {
		return
	}
	n.dispatch(n.timeout, func(ctx context.Context) {
		for _, ev := range events {
			n.deliver(ctx, ev)
		}
	})
}

func (n *Notifier) deliver(ctx context.Context, ev Event) {
	log := logger.WithFields(logrus.Fields{
		"user_id": ev.UserID,
		"event":   ev.Type,
	})

	payload := []byte("{}")
	if len(ev.Payload) > 0 {
		raw, err := json.Marshal(ev.Payload)
		if err != nil {
			log.WithError(err).Warn("notifier: не удалось сериализовать payload")
		} else {
			payload = raw
		}
	}

	notification := &models.Notification{
		UserID:  ev.UserID,
		Type:    ev.Type,
		Message: ev.Message,
		Payload: payload,
	}
	if err := n.repo.Create(ctx, notification); err != nil {
		log.WithError(err).Error("notifier: не удалось сохранить уведомление")
		return
	}

	if n.pusher == nil {
		return
	}
	if err := n.pusher.Push(ctx, notification); err != nil {
		log.WithError(err).Warn("notifier: не удалось отправить уведомление по websocket")
	}
}

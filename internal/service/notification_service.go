package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, filter models.NotificationFilter, page pagination.Params) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// NotificationService содержит бизнес-логику ленты уведомлений.
type NotificationService struct {
	repo NotificationRepository
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List возвращает страницу уведомлений текущего пользователя.
func (s *NotificationService) List(ctx context.Context, caller models.Caller, filter models.NotificationFilter, page pagination.Params) (pagination.Page[models.Notification], error) {
	items, total, err := s.repo.List(ctx, caller.ID, filter, page)
	if err != nil {
		return pagination.Page[models.Notification]{}, err
	}
	return pagination.NewPage(items, page, total), nil
}

// MarkRead отмечает уведомление прочитанным. Повторный вызов ничего не меняет.
func (s *NotificationService) MarkRead(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, caller.ID, id)
}

// MarkAllRead отмечает все уведомления прочитанными и возвращает число изменённых.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller models.Caller) (int64, error) {
	return s.repo.MarkAllRead(ctx, caller.ID)
}

// UnreadCount считает непрочитанные уведомления.
func (s *NotificationService) UnreadCount(ctx context.Context, caller models.Caller) (int64, error) {
	return s.repo.CountUnread(ctx, caller.ID)
}

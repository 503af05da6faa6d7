package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

// NotificationSort - лента уведомлений сортируется только по времени.
var NotificationSort = pagination.Spec{
	Fields: map[string]string{
		"createdAt": "created_at",
	},
	Default:    pagination.Sort{Field: "createdAt", Direction: pagination.Desc},
	TieBreaker: "id",
}

// NotificationRepository работает с уведомлениями.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository создаёт репозиторий уведомлений.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create создаёт уведомление.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, message, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`
	payload := []byte(n.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	err := r.db.QueryRowxContext(ctx, query, n.UserID, n.Type, n.Message, payload).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать уведомление")
	}
	return nil
}

// List возвращает страницу уведомлений пользователя.
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, filter models.NotificationFilter, page pagination.Params) ([]models.Notification, int64, error) {
	where := ` WHERE user_id = $1`
	args := []interface{}{userID}
	if filter.IsRead != nil {
		where += ` AND is_read = $2`
		args = append(args, *filter.IsRead)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications`+where, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать уведомления")
	}

	query := `SELECT id, user_id, type, message, payload, is_read, created_at FROM notifications` +
		where + ` ` + page.OrderBy(NotificationSort) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	var items []models.Notification
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить уведомления")
	}
	return items, total, nil
}

// MarkRead отмечает уведомление прочитанным. Повторная отметка не ошибка,
// чужое или несуществующее уведомление - ErrNotificationNotFound.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отметить уведомление")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отметить уведомление")
	}
	if affected == 0 {
		return apperror.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead отмечает все уведомления пользователя прочитанными и возвращает их количество.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отметить уведомления")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отметить уведомления")
	}
	return affected, nil
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать уведомления")
	}
	return count, nil
}

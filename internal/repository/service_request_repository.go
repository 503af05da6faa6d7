package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

// RequestSort - допустимые поля сортировки списка заявок.
var RequestSort = pagination.Spec{
	Fields: map[string]string{
		"createdAt": "sr.created_at",
		"eventDate": "sr.event_date",
		"budget":    "sr.budget",
		"title":     "sr.title",
		"status":    "sr.status",
	},
	Default:    pagination.Sort{Field: "createdAt", Direction: pagination.Desc},
	TieBreaker: "sr.id",
}

// pitch_count всегда считается по таблице pitches, отдельного счётчика нет.
const requestSelect = `
	SELECT sr.id, sr.client_id, sr.title, sr.event_name, sr.event_date, sr.location,
		sr.service_type, sr.description, sr.budget, sr.status, sr.assigned_provider_id,
		(SELECT COUNT(*) FROM pitches p WHERE p.request_id = sr.id) AS pitch_count,
		sr.created_at, sr.updated_at
	FROM service_requests sr`

// ServiceRequestRepository хранит заявки клиентов.
type ServiceRequestRepository struct {
	db *sqlx.DB
}

// NewServiceRequestRepository создаёт экземпляр репозитория.
func NewServiceRequestRepository(db *sqlx.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

// Create добавляет заявку и заполняет id и временные метки.
func (r *ServiceRequestRepository) Create(ctx context.Context, req *models.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (client_id, title, event_name, event_date, location, service_type, description, budget, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		req.ClientID, req.Title, req.EventName, req.EventDate, req.Location,
		req.ServiceType, req.Description, req.Budget, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заявку")
	}
	req.PitchCount = 0
	return nil
}

// GetByID возвращает заявку с вычисленным количеством питчей.
func (r *ServiceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := r.db.GetContext(ctx, &req, requestSelect+` WHERE sr.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
	}
	return &req, nil
}

// List возвращает страницу заявок и общее количество по фильтру.
// Без IncludeHidden черновики и удалённые заявки не попадают в выборку.
func (r *ServiceRequestRepository) List(ctx context.Context, filter models.RequestFilter, page pagination.Params) ([]models.ServiceRequest, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if !filter.IncludeHidden {
		where += fmt.Sprintf(" AND sr.status NOT IN ('%s', '%s')", valueobject.RequestStatusDraft, valueobject.RequestStatusDeleted)
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND sr.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.ClientID != nil {
		where += fmt.Sprintf(" AND sr.client_id = $%d", argIndex)
		args = append(args, *filter.ClientID)
		argIndex++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM service_requests sr`+where, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заявки")
	}

	query := requestSelect + where + " " + page.OrderBy(RequestSort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, page.Size, page.Offset())

	var items []models.ServiceRequest
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
	}
	return items, total, nil
}

// UpdateStatus переводит заявку из from в to, только если она всё ещё в from.
func (r *ServiceRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.RequestStatus) (*models.ServiceRequest, error) {
	query := `
		WITH updated AS (
			UPDATE service_requests
			SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING *
		)
		SELECT sr.id, sr.client_id, sr.title, sr.event_name, sr.event_date, sr.location,
			sr.service_type, sr.description, sr.budget, sr.status, sr.assigned_provider_id,
			(SELECT COUNT(*) FROM pitches p WHERE p.request_id = sr.id) AS pitch_count,
			sr.created_at, sr.updated_at
		FROM updated sr
	`
	var req models.ServiceRequest
	if err := r.db.QueryRowxContext(ctx, query, id, from, to).StructScan(&req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "статус заявки изменился, повторите операцию")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус заявки")
	}
	return &req, nil
}

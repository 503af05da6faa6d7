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
	"github.com/ignatzorin/eventmarket-backend/internal/repository/common"
)

// PitchSort - допустимые поля сортировки списков питчей.
var PitchSort = pagination.Spec{
	Fields: map[string]string{
		"createdAt":     "created_at",
		"proposedPrice": "proposed_price",
		"status":        "status",
	},
	Default:    pagination.Sort{Field: "createdAt", Direction: pagination.Desc},
	TieBreaker: "id",
}

const pitchColumns = `id, request_id, provider_id, pitch_details, proposed_price, status, created_at, updated_at`

// PitchRepository хранит предложения исполнителей.
type PitchRepository struct {
	db *sqlx.DB
}

// NewPitchRepository создаёт экземпляр репозитория.
func NewPitchRepository(db *sqlx.DB) *PitchRepository {
	return &PitchRepository{db: db}
}

// Create добавляет питч. Второй питч того же исполнителя на заявку отклоняется индексом.
func (r *PitchRepository) Create(ctx context.Context, pitch *models.Pitch) error {
	query := `
		INSERT INTO pitches (request_id, provider_id, pitch_details, proposed_price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if pitch.Status == "" {
		pitch.Status = valueobject.PitchStatusPending
	}
	err := r.db.QueryRowxContext(ctx, query,
		pitch.RequestID, pitch.ProviderID, pitch.PitchDetails, pitch.ProposedPrice, pitch.Status,
	).Scan(&pitch.ID, &pitch.CreatedAt, &pitch.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "pitches_request_provider_key") {
			return apperror.ErrDuplicatePitch
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать питч")
	}
	return nil
}

// GetByID возвращает питч по идентификатору.
func (r *PitchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pitch, error) {
	pitch, err := common.GetByID[models.Pitch](ctx, r.db, "pitches", id, apperror.ErrPitchNotFound)
	if err != nil {
		if errors.Is(err, apperror.ErrPitchNotFound) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить питч")
	}
	return pitch, nil
}

// GetByRequestAndProvider возвращает питч исполнителя по заявке.
func (r *PitchRepository) GetByRequestAndProvider(ctx context.Context, requestID, providerID uuid.UUID) (*models.Pitch, error) {
	var pitch models.Pitch
	query := `SELECT ` + pitchColumns + ` FROM pitches WHERE request_id = $1 AND provider_id = $2`
	if err := r.db.GetContext(ctx, &pitch, query, requestID, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrPitchNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить питч")
	}
	return &pitch, nil
}

// ListByRequest возвращает страницу питчей по заявке.
func (r *PitchRepository) ListByRequest(ctx context.Context, requestID uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error) {
	return r.list(ctx, "request_id", requestID, page)
}

// ListByProvider возвращает страницу питчей исполнителя.
func (r *PitchRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error) {
	return r.list(ctx, "provider_id", providerID, page)
}

func (r *PitchRepository) list(ctx context.Context, column string, id uuid.UUID, page pagination.Params) ([]models.Pitch, int64, error) {
	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM pitches WHERE %s = $1`, column)
	if err := r.db.GetContext(ctx, &total, countQuery, id); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать питчи")
	}

	query := fmt.Sprintf(`SELECT %s FROM pitches WHERE %s = $1 %s LIMIT $2 OFFSET $3`,
		pitchColumns, column, page.OrderBy(PitchSort))
	var items []models.Pitch
	if err := r.db.SelectContext(ctx, &items, query, id, page.Size, page.Offset()); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить питчи")
	}
	return items, total, nil
}

// ListPendingProviders возвращает исполнителей с ещё не решёнными питчами по заявке.
func (r *PitchRepository) ListPendingProviders(ctx context.Context, requestID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT provider_id FROM pitches WHERE request_id = $1 AND status = $2`
	if err := r.db.SelectContext(ctx, &ids, query, requestID, valueobject.PitchStatusPending); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить исполнителей")
	}
	return ids, nil
}

// SelectWinner атомарно выбирает питч: WIN для выбранного, LOSE для остальных
// и ASSIGNED для заявки. Любая ошибка откатывает все изменения.
func (r *PitchRepository) SelectWinner(ctx context.Context, requestID, pitchID uuid.UUID) (*models.PitchSelection, error) {
	var selection models.PitchSelection

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var status valueobject.RequestStatus
		err := tx.GetContext(ctx, &status, `SELECT status FROM service_requests WHERE id = $1 FOR UPDATE`, requestID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrRequestNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось заблокировать заявку")
		}
		if err := status.CheckTransition(valueobject.RequestStatusAssigned); err != nil {
			return err
		}

		var winner models.Pitch
		err = tx.QueryRowxContext(ctx, `
			UPDATE pitches SET status = $3, updated_at = NOW()
			WHERE id = $1 AND request_id = $2
			RETURNING `+pitchColumns,
			pitchID, requestID, valueobject.PitchStatusWin,
		).StructScan(&winner)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrPitchNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось выбрать питч")
		}

		var losers []models.Pitch
		err = tx.SelectContext(ctx, &losers, `
			UPDATE pitches SET status = $3, updated_at = NOW()
			WHERE request_id = $1 AND id <> $2 AND status = $4
			RETURNING `+pitchColumns,
			requestID, pitchID, valueobject.PitchStatusLose, valueobject.PitchStatusPending,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить остальные питчи")
		}

		var req models.ServiceRequest
		err = tx.QueryRowxContext(ctx, `
			UPDATE service_requests
			SET status = $2, assigned_provider_id = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING id, client_id, title, event_name, event_date, location, service_type,
				description, budget, status, assigned_provider_id,
				(SELECT COUNT(*) FROM pitches p WHERE p.request_id = service_requests.id) AS pitch_count,
				created_at, updated_at`,
			requestID, valueobject.RequestStatusAssigned, winner.ProviderID,
		).StructScan(&req)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось назначить исполнителя")
		}

		if losers == nil {
			losers = []models.Pitch{}
		}
		selection = models.PitchSelection{Request: &req, WinningPitch: &winner, LosingPitches: losers}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

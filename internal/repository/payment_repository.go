package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/repository/common"
)

// PaymentSort - допустимые поля сортировки истории платежей.
var PaymentSort = pagination.Spec{
	Fields: map[string]string{
		"createdAt": "created_at",
		"amount":    "amount",
		"status":    "status",
	},
	Default:    pagination.Sort{Field: "createdAt", Direction: pagination.Desc},
	TieBreaker: "id",
}

const paymentColumns = `id, request_id, payer_id, provider_id, amount, currency, payment_method,
	status, gateway, gateway_ref, created_at, updated_at`

// PaymentRepository хранит платежи по заявкам.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository создаёт экземпляр репозитория.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create добавляет платёж в статусе PENDING.
// Если по заявке уже есть не-FAILED платёж, возвращает ErrPaymentExists.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (request_id, payer_id, provider_id, amount, currency, payment_method, status, gateway)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	if p.Status == "" {
		p.Status = valueobject.PaymentStatusPending
	}
	err := r.db.QueryRowxContext(ctx, query,
		p.RequestID, p.PayerID, p.ProviderID, p.Amount, p.Currency, p.PaymentMethod, p.Status, p.Gateway,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "payments_active_per_request_idx") {
			return apperror.ErrPaymentExists
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать платёж")
	}
	return nil
}

// LatestByRequest возвращает последний платёж по заявке.
func (r *PaymentRepository) LatestByRequest(ctx context.Context, requestID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE request_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &p, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить платёж")
	}
	return &p, nil
}

// UpdateStatus меняет статус платежа, только если он всё ещё в from.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.PaymentStatus) (*models.Payment, error) {
	query := `
		UPDATE payments SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + paymentColumns

	var p models.Payment
	if err := r.db.QueryRowxContext(ctx, query, id, from, to).StructScan(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "статус платежа изменился, повторите операцию")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить платёж")
	}
	return &p, nil
}

// SetGatewayRef сохраняет идентификатор платежа во внешней платёжной системе.
func (r *PaymentRepository) SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE payments SET gateway_ref = $2, updated_at = NOW() WHERE id = $1`, id, ref)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить ссылку на платёж")
	}
	return nil
}

// GetByID возвращает платёж по идентификатору.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	p, err := common.GetByID[models.Payment](ctx, r.db, "payments", id, apperror.ErrPaymentNotFound)
	if err != nil {
		if errors.Is(err, apperror.ErrPaymentNotFound) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить платёж")
	}
	return p, nil
}

// ListByProvider возвращает страницу платежей в пользу исполнителя.
func (r *PaymentRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Payment, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments WHERE provider_id = $1`, providerID); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать платежи")
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_id = $1 ` +
		page.OrderBy(PaymentSort) + ` LIMIT $2 OFFSET $3`
	var items []models.Payment
	if err := r.db.SelectContext(ctx, &items, query, providerID, page.Size, page.Offset()); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить платежи")
	}
	return items, total, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/repository/common"
)

// ReviewSort - допустимые поля сортировки отзывов.
var ReviewSort = pagination.Spec{
	Fields: map[string]string{
		"createdAt": "created_at",
		"rating":    "rating",
	},
	Default:    pagination.Sort{Field: "createdAt", Direction: pagination.Desc},
	TieBreaker: "id",
}

// ReviewRepository хранит отзывы об исполнителях.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт экземпляр репозитория.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create сохраняет отзыв. На одну заявку допускается один отзыв.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (request_id, client_id, provider_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		review.RequestID, review.ClientID, review.ProviderID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "reviews_request_key") {
			return apperror.ErrAlreadyReviewed
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать отзыв")
	}
	return nil
}

// ListByProvider возвращает страницу отзывов об исполнителе.
func (r *ReviewRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Review, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews WHERE provider_id = $1`, providerID); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать отзывы")
	}

	query := `SELECT id, request_id, client_id, provider_id, rating, comment, created_at
		FROM reviews WHERE provider_id = $1 ` + page.OrderBy(ReviewSort) + ` LIMIT $2 OFFSET $3`
	var items []models.Review
	if err := r.db.SelectContext(ctx, &items, query, providerID, page.Size, page.Offset()); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отзывы")
	}
	return items, total, nil
}

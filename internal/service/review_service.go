package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

// ReviewRepository описывает хранилище отзывов.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Params) ([]models.Review, int64, error)
}

// UserFinder ищет пользователя по идентификатору.
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ReviewService - отзывы клиентов об исполнителях.
type ReviewService struct {
	reviews  ReviewRepository
	requests RequestReader
	users    UserFinder
	notifier *Notifier
	ratings  valueobject.RatingRange
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(reviews ReviewRepository, requests RequestReader, users UserFinder, notifier *Notifier, ratings valueobject.RatingRange) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		requests: requests,
		users:    users,
		notifier: notifier,
		ratings:  ratings,
	}
}

// CreateReviewInput - новый отзыв.
type CreateReviewInput struct {
	RequestID uuid.UUID
	Rating    int
	Comment   *string
}

// Create оставляет единственный отзыв по завершённой заявке.
func (s *ReviewService) Create(ctx context.Context, caller models.Caller, in CreateReviewInput) (*models.Review, error) {
	if err := s.ratings.Check(in.Rating); err != nil {
		return nil, err
	}
	if err := invalidInput(validation.ValidateComment(in.Comment)); err != nil {
		return nil, err
	}

	req, err := s.requests.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.IsOwnedBy(caller.ID) {
		if !req.VisibleTo(caller) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, apperror.New(apperror.ErrCodeForbidden, "оставить отзыв может только владелец заявки")
	}
	if req.Status != valueobject.RequestStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "отзыв можно оставить только по завершённой заявке")
	}
	if req.AssignedProviderID == nil {
		return nil, apperror.ErrProviderNotFound
	}

	provider, err := s.users.GetByID(ctx, *req.AssignedProviderID)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrProviderNotFound
		}
		return nil, err
	}

	var comment *string
	if in.Comment != nil {
		trimmed := strings.TrimSpace(*in.Comment)
		if trimmed != "" {
			comment = &trimmed
		}
	}

	review := &models.Review{
		RequestID:  req.ID,
		ClientID:   caller.ID,
		ProviderID: provider.ID,
		Rating:     in.Rating,
		Comment:    comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.notifier.Notify(Event{
		UserID:  provider.ID,
		Type:    models.EventReviewReceived,
		Message: "Новый отзыв по заявке «" + req.Title + "»: " + strconv.Itoa(in.Rating),
		Payload: map[string]interface{}{"requestId": req.ID, "reviewId": review.ID, "rating": in.Rating},
	})
	return review, nil
}

// ProviderReviews возвращает отзывы об исполнителе.
func (s *ReviewService) ProviderReviews(ctx context.Context, providerID uuid.UUID, page pagination.Params) (pagination.Page[models.Review], error) {
	items, total, err := s.reviews.ListByProvider(ctx, providerID, page)
	if err != nil {
		return pagination.Page[models.Review]{}, err
	}
	return pagination.NewPage(items, page, total), nil
}

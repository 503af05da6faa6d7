package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

type CreateReviewInput struct {
	RequestID uuid.UUID `json:"requestId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
}

// CreateReview оставляет отзыв о завершённой заявке. Оценка вне диапазона
// отклоняется без обращения к серверу.
func (c *Client) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	check := func() error {
		if err := c.ratings.Check(in.Rating); err != nil {
			return localError(err)
		}
		if in.RequestID == uuid.Nil {
			return &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "requestId обязателен"}
		}
		if err := validation.ValidateComment(in.Comment); err != nil {
			return localError(err)
		}
		return nil
	}

	var review models.Review
	if err := c.do(ctx, call{method: http.MethodPost, path: "/reviews", body: in, out: &review, mutating: true, check: check}); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) ProviderReviews(ctx context.Context, providerID uuid.UUID, page PageQuery) (*Page[models.Review], error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	var result Page[models.Review]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/reviews/provider/" + providerID.String(), query: page.values(), out: &result}); err != nil {
		return nil, err
	}
	return &result, nil
}

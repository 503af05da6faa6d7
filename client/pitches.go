package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

type SubmitPitchInput struct {
	RequestID     uuid.UUID `json:"requestId"`
	PitchDetails  string    `json:"pitchDetails"`
	ProposedPrice float64   `json:"proposedPrice"`
}

func (in SubmitPitchInput) validate() error {
	if in.RequestID == uuid.Nil {
		return &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "requestId обязателен"}
	}
	if err := validation.ValidatePitchDetails(in.PitchDetails); err != nil {
		return localError(err)
	}
	if err := validation.ValidatePrice("цена", in.ProposedPrice); err != nil {
		return localError(err)
	}
	return nil
}

// SubmitPitch отправляет предложение исполнителя. Повтор даёт ErrDuplicatePitch.
func (c *Client) SubmitPitch(ctx context.Context, in SubmitPitchInput) (*models.Pitch, error) {
	var pitch models.Pitch
	if err := c.do(ctx, call{method: http.MethodPost, path: "/pitches", body: in, out: &pitch, mutating: true, check: in.validate}); err != nil {
		return nil, err
	}
	return &pitch, nil
}

// SelectPitch выбирает победителя. Заявка переходит в ASSIGNED.
func (c *Client) SelectPitch(ctx context.Context, pitchID uuid.UUID) (*models.PitchSelection, error) {
	var sel models.PitchSelection
	if err := c.do(ctx, call{method: http.MethodPost, path: "/pitches/" + pitchID.String() + "/select", out: &sel, mutating: true}); err != nil {
		return nil, err
	}
	return &sel, nil
}

func (c *Client) MyPitches(ctx context.Context, page PageQuery) (*Page[models.Pitch], error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	var result Page[models.Pitch]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/pitches/mine", query: page.values(), out: &result}); err != nil {
		return nil, err
	}
	return &result, nil
}

// RequestPitches возвращает предложения по заявке. Доступно владельцу и админу.
func (c *Client) RequestPitches(ctx context.Context, requestID uuid.UUID, page PageQuery) (*Page[models.Pitch], error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	var result Page[models.Pitch]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/requests/" + requestID.String() + "/pitches", query: page.values(), out: &result}); err != nil {
		return nil, err
	}
	return &result, nil
}

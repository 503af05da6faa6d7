package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

type CreatePaymentInput struct {
	RequestID     uuid.UUID `json:"requestId"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"paymentMethod"`
}

func (in CreatePaymentInput) validate() error {
	if in.RequestID == uuid.Nil {
		return &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "requestId обязателен"}
	}
	if err := validation.ValidatePrice("сумма", in.Amount); err != nil {
		return localError(err)
	}
	if err := validation.ValidatePaymentMethod(in.PaymentMethod); err != nil {
		return localError(err)
	}
	return nil
}

// CreatePayment оплачивает назначенную заявку.
func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	var payment models.Payment
	if err := c.do(ctx, call{method: http.MethodPost, path: "/payments", body: in, out: &payment, mutating: true, check: in.validate}); err != nil {
		return nil, err
	}
	return &payment, nil
}

// PaymentStatus возвращает последний платёж по заявке.
func (c *Client) PaymentStatus(ctx context.Context, requestID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := c.do(ctx, call{method: http.MethodGet, path: "/payments/request/" + requestID.String() + "/status", out: &payment}); err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus переводит PENDING платёж в COMPLETED или FAILED.
func (c *Client) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status valueobject.PaymentStatus) (*models.Payment, error) {
	check := func() error {
		if status != valueobject.PaymentStatusCompleted && status != valueobject.PaymentStatusFailed {
			return &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "статус должен быть COMPLETED или FAILED"}
		}
		return nil
	}

	var payment models.Payment
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/payments/" + paymentID.String() + "/status",
		body:     map[string]string{"status": string(status)},
		out:      &payment,
		mutating: true,
		check:    check,
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MyPayments - история платежей исполнителя.
func (c *Client) MyPayments(ctx context.Context, page PageQuery) (*Page[models.Payment], error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	var result Page[models.Payment]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/payments/mine", query: page.values(), out: &result}); err != nil {
		return nil, err
	}
	return &result, nil
}

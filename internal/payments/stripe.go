package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/ignatzorin/eventmarket-backend/internal/logger"
)

// StripeGateway создаёт PaymentIntent на сумму платежа.
type StripeGateway struct{}

// NewStripeGateway задаёт ключ Stripe для всего процесса.
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, ErrGatewayNotConfigured
	}
	stripe.Key = secretKey
	return &StripeGateway{}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

// intentParams переводит списание в параметры PaymentIntent. Method - тип способа оплаты Stripe (card, sepa_debit).
func intentParams(ctx context.Context, req ChargeRequest) *stripe.PaymentIntentParams {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount.MinorUnits()),
		Currency:           stripe.String(req.Amount.Currency),
		Description:        stripe.String(req.Description),
		PaymentMethodTypes: stripe.StringSlice([]string{req.Method}),
	}
	params.Context = ctx
	params.AddMetadata("payment_id", req.PaymentID.String())
	params.AddMetadata("request_id", req.RequestID.String())
	if req.PayerEmail != "" {
		params.ReceiptEmail = stripe.String(req.PayerEmail)
	}
	return params
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	pi, err := paymentintent.New(intentParams(ctx, req))
	if err != nil {
		return nil, fmt.Errorf("stripe: создание payment intent: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"payment_id": req.PaymentID,
		"intent_id":  pi.ID,
		"status":     pi.Status,
	}).Info("payments: stripe payment intent создан")

	return &ChargeResult{Reference: pi.ID, Status: string(pi.Status)}, nil
}

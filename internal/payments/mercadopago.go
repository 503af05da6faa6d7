package payments

import (
	"context"
	"fmt"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/ignatzorin/eventmarket-backend/internal/logger"
)

// MercadoPagoGateway проводит платёж через SDK Mercado Pago.
type MercadoPagoGateway struct {
	client payment.Client
}

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, ErrGatewayNotConfigured
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: конфигурация sdk: %w", err)
	}
	return &MercadoPagoGateway{client: payment.NewClient(cfg)}, nil
}

func (g *MercadoPagoGateway) Name() string { return "mercadopago" }

// buildRequest собирает запрос SDK. Mercado Pago требует email плательщика.
func buildRequest(req ChargeRequest) (payment.Request, error) {
	if req.PayerEmail == "" {
		return payment.Request{}, fmt.Errorf("mercadopago: не указан email плательщика")
	}
	return payment.Request{
		TransactionAmount: req.Amount.Amount,
		Description:       req.Description,
		PaymentMethodID:   req.Method,
		ExternalReference: req.PaymentID.String(),
		Payer:             &payment.PayerRequest{Email: req.PayerEmail},
		Metadata: map[string]any{
			"request_id": req.RequestID.String(),
		},
	}, nil
}

func (g *MercadoPagoGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	mpReq, err := buildRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Create(ctx, mpReq)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: создание платежа: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"payment_id":          req.PaymentID,
		"provider_payment_id": resp.ID,
		"status":              resp.Status,
	}).Info("payments: платёж mercado pago создан")

	return &ChargeResult{Reference: fmt.Sprintf("%d", resp.ID), Status: resp.Status}, nil
}

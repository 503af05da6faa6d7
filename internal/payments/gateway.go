// Package payments содержит адаптеры внешних платёжных систем.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/config"
	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
)

// ErrGatewayNotConfigured возвращается, если ключи платёжной системы не заданы.
var ErrGatewayNotConfigured = errors.New("платёжный шлюз не настроен")

// ChargeRequest - данные списания для шлюза.
type ChargeRequest struct {
	PaymentID   uuid.UUID
	RequestID   uuid.UUID
	Amount      valueobject.Money
	Method      string
	PayerEmail  string
	Description string
}

// ChargeResult - ответ шлюза.
type ChargeResult struct {
	Reference string
	Status    string
}

// Gateway - внешний исполнитель списаний.
type Gateway interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// New выбирает шлюз по конфигурации.
func New(cfg *config.Config) (Gateway, error) {
	switch cfg.PaymentProvider {
	case config.PaymentProviderStripe:
		return NewStripeGateway(cfg.StripeSecretKey)
	case config.PaymentProviderMercadoPago:
		return NewMercadoPagoGateway(cfg.MercadoPagoAccessToken)
	case config.PaymentProviderMock, "":
		return NewMockGateway(), nil
	default:
		return nil, fmt.Errorf("payments: неизвестный провайдер %q", cfg.PaymentProvider)
	}
}

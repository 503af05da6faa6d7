package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
)

// Payment - платёж клиента по назначенной заявке.
// Неуспешные платежи не изменяются: повтор создаёт новую запись.
type Payment struct {
	ID            uuid.UUID                 `db:"id" json:"id"`
	RequestID     uuid.UUID                 `db:"request_id" json:"requestId"`
	PayerID       uuid.UUID                 `db:"payer_id" json:"payerId"`
	ProviderID    uuid.UUID                 `db:"provider_id" json:"providerId"`
	Amount        float64                   `db:"amount" json:"amount"`
	Currency      string                    `db:"currency" json:"currency"`
	PaymentMethod string                    `db:"payment_method" json:"paymentMethod"`
	Status        valueobject.PaymentStatus `db:"status" json:"status"`
	Gateway       string                    `db:"gateway" json:"gateway"`
	GatewayRef    *string                   `db:"gateway_ref" json:"gatewayRef,omitempty"`
	CreatedAt     time.Time                 `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time                 `db:"updated_at" json:"updatedAt"`
}

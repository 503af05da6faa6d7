package models

import (
	"time"

	"github.com/google/uuid"
)

// Review - отзыв клиента об исполнителе по завершённой заявке.
type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RequestID  uuid.UUID `db:"request_id" json:"requestId"`
	ClientID   uuid.UUID `db:"client_id" json:"clientId"`
	ProviderID uuid.UUID `db:"provider_id" json:"providerId"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

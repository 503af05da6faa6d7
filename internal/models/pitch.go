package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
)

// Pitch - предложение исполнителя по заявке.
type Pitch struct {
	ID            uuid.UUID               `db:"id" json:"id"`
	RequestID     uuid.UUID               `db:"request_id" json:"requestId"`
	ProviderID    uuid.UUID               `db:"provider_id" json:"providerId"`
	PitchDetails  string                  `db:"pitch_details" json:"pitchDetails"`
	ProposedPrice float64                 `db:"proposed_price" json:"proposedPrice"`
	Status        valueobject.PitchStatus `db:"status" json:"status"`
	CreatedAt     time.Time               `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time               `db:"updated_at" json:"updatedAt"`
}

// PitchSelection - результат атомарного выбора питча.
type PitchSelection struct {
	Request       *ServiceRequest `json:"request"`
	WinningPitch  *Pitch          `json:"winningPitch"`
	LosingPitches []Pitch         `json:"losingPitches"`
}

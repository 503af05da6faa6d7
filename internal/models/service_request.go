package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
)

// ServiceRequest - заявка клиента на услугу для мероприятия.
type ServiceRequest struct {
	ID                 uuid.UUID                 `db:"id" json:"id"`
	ClientID           uuid.UUID                 `db:"client_id" json:"clientId"`
	Title              string                    `db:"title" json:"title"`
	EventName          string                    `db:"event_name" json:"eventName"`
	EventDate          *time.Time                `db:"event_date" json:"eventDate,omitempty"`
	Location           string                    `db:"location" json:"location"`
	ServiceType        string                    `db:"service_type" json:"serviceType"`
	Description        string                    `db:"description" json:"description"`
	Budget             float64                   `db:"budget" json:"budget"`
	Status             valueobject.RequestStatus `db:"status" json:"status"`
	AssignedProviderID *uuid.UUID                `db:"assigned_provider_id" json:"assignedProviderId,omitempty"`
	// PitchCount вычисляется запросом, в таблице не хранится.
	PitchCount int       `db:"pitch_count" json:"pitchCount"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// IsOwnedBy проверяет, что заявка создана пользователем.
func (r *ServiceRequest) IsOwnedBy(userID uuid.UUID) bool {
	return r.ClientID == userID
}

// VisibleTo - черновики и удалённые заявки доступны только владельцу и админу.
func (r *ServiceRequest) VisibleTo(caller Caller) bool {
	return r.Status.IsPubliclyVisible() || caller.Owns(r.ClientID)
}

// RequestFilter - фильтр списка заявок.
type RequestFilter struct {
	Status   *valueobject.RequestStatus
	ClientID *uuid.UUID
	// IncludeHidden включает DRAFT и DELETED (только для владельца или админа).
	IncludeHidden bool
}

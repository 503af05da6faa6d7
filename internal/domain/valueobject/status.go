package valueobject

import "github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"

type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "DRAFT"
	RequestStatusOpen      RequestStatus = "OPEN"
	RequestStatusAssigned  RequestStatus = "ASSIGNED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
	RequestStatusDeleted   RequestStatus = "DELETED"
)

// requestTransitions - единственный источник правил жизненного цикла заявки.
// OPEN -> ASSIGNED выполняется только выбором питча.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusDraft:     {RequestStatusOpen, RequestStatusDeleted},
	RequestStatusOpen:      {RequestStatusAssigned, RequestStatusCancelled, RequestStatusDeleted},
	RequestStatusAssigned:  {RequestStatusCompleted, RequestStatusCancelled, RequestStatusDeleted},
	RequestStatusCompleted: {},
	RequestStatusCancelled: {},
	RequestStatusDeleted:   {},
}

func (s RequestStatus) IsValid() bool {
	_, ok := requestTransitions[s]
	return ok
}

func (s RequestStatus) IsTerminal() bool {
	allowed, ok := requestTransitions[s]
	return ok && len(allowed) == 0
}

// IsPubliclyVisible - черновики и удалённые заявки видит только владелец.
func (s RequestStatus) IsPubliclyVisible() bool {
	return s != RequestStatusDraft && s != RequestStatusDeleted
}

func (s RequestStatus) CanTransitionTo(newStatus RequestStatus) bool {
	for _, status := range requestTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// CheckTransition возвращает INVALID_TRANSITION, если переход запрещён.
func (s RequestStatus) CheckTransition(newStatus RequestStatus) error {
	if s.CanTransitionTo(newStatus) {
		return nil
	}
	return apperror.New(apperror.ErrCodeInvalidTransition,
		"переход заявки из "+string(s)+" в "+string(newStatus)+" невозможен")
}

func NewRequestStatus(status string) (RequestStatus, error) {
	s := RequestStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s, nil
}

type PitchStatus string

const (
	PitchStatusPending PitchStatus = "PENDING"
	PitchStatusWin     PitchStatus = "WIN"
	PitchStatusLose    PitchStatus = "LOSE"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo - из PENDING в COMPLETED или FAILED, остальные статусы терминальные.
func (s PaymentStatus) CanTransitionTo(newStatus PaymentStatus) bool {
	return s == PaymentStatusPending &&
		(newStatus == PaymentStatusCompleted || newStatus == PaymentStatusFailed)
}

func NewPaymentStatus(status string) (PaymentStatus, error) {
	s := PaymentStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус платежа")
	}
	return s, nil
}

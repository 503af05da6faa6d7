package models

// События уведомлений
const (
	EventPitchReceived    = "pitch.received"
	EventPitchWon         = "pitch.won"
	EventPitchLost        = "pitch.lost"
	EventRequestCancelled = "request.cancelled"
	EventRequestDeleted   = "request.deleted"
	EventRequestCompleted = "request.completed"
	EventPaymentCreated   = "payment.created"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventReviewReceived   = "review.received"
)

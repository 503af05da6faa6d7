package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

var allRequestStatuses = []RequestStatus{
	RequestStatusDraft, RequestStatusOpen, RequestStatusAssigned,
	RequestStatusCompleted, RequestStatusCancelled, RequestStatusDeleted,
}

func TestRequestStatus_TerminalStatesHaveNoTransitions(t *testing.T) {
	for _, from := range []RequestStatus{RequestStatusCompleted, RequestStatusCancelled, RequestStatusDeleted} {
		assert.True(t, from.IsTerminal(), from)
		for _, to := range allRequestStatuses {
			assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
			assert.True(t, apperror.IsInvalidTransition(from.CheckTransition(to)))
		}
	}
}

func TestRequestStatus_AllowedTransitions(t *testing.T) {
	allowed := []struct{ from, to RequestStatus }{
		{RequestStatusDraft, RequestStatusOpen},
		{RequestStatusDraft, RequestStatusDeleted},
		{RequestStatusOpen, RequestStatusAssigned},
		{RequestStatusOpen, RequestStatusCancelled},
		{RequestStatusOpen, RequestStatusDeleted},
		{RequestStatusAssigned, RequestStatusCompleted},
		{RequestStatusAssigned, RequestStatusCancelled},
		{RequestStatusAssigned, RequestStatusDeleted},
	}
	for _, tc := range allowed {
		assert.NoError(t, tc.from.CheckTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRequestStatus_ForbiddenTransitions(t *testing.T) {
	assert.False(t, RequestStatusDraft.CanTransitionTo(RequestStatusAssigned))
	assert.False(t, RequestStatusDraft.CanTransitionTo(RequestStatusCancelled))
	assert.False(t, RequestStatusOpen.CanTransitionTo(RequestStatusCompleted))
	assert.False(t, RequestStatusAssigned.CanTransitionTo(RequestStatusOpen))
}

func TestRequestStatus_Visibility(t *testing.T) {
	assert.False(t, RequestStatusDraft.IsPubliclyVisible())
	assert.False(t, RequestStatusDeleted.IsPubliclyVisible())
	assert.True(t, RequestStatusOpen.IsPubliclyVisible())
}

func TestNewRequestStatus_Invalid(t *testing.T) {
	_, err := NewRequestStatus("published")
	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentStatus_OnlyPendingMoves(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusCompleted))
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusFailed))
	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusPending))
	assert.False(t, PaymentStatusCompleted.CanTransitionTo(PaymentStatusFailed))
	assert.False(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusCompleted))
}

func TestRatingRange_Check(t *testing.T) {
	r := DefaultRatingRange
	assert.NoError(t, r.Check(1))
	assert.NoError(t, r.Check(5))
	assert.Equal(t, apperror.ErrCodeInvalidRating, apperror.CodeOf(r.Check(0)))
	assert.Equal(t, apperror.ErrCodeInvalidRating, apperror.CodeOf(r.Check(6)))
}

func TestAccountStatus_CanMutate(t *testing.T) {
	assert.False(t, AccountStatusSuspended.CanMutate())
	assert.True(t, AccountStatusActive.CanMutate())
	assert.True(t, AccountStatusPending.CanMutate())
}

func TestMoney(t *testing.T) {
	m, err := NewMoney(450.5, "USD")
	assert.NoError(t, err)
	assert.Equal(t, int64(45050), m.MinorUnits())
	assert.Equal(t, "usd", m.Currency)
	assert.True(t, m.Equal(450.50))

	_, err = NewMoney(0, "usd")
	assert.True(t, apperror.IsValidation(err))
}

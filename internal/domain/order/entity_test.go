package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusShipped},
		{StatusProcessing, StatusCancelled},
		{StatusShipped, StatusDelivered},
		{StatusShipped, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	rejected := []struct {
		from, to Status
	}{
		{StatusDelivered, StatusProcessing},
		{StatusDelivered, StatusShipped},
		{StatusCancelled, StatusPending},
		{StatusShipped, StatusPending},
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusPending, StatusPending},
	}
	for _, tc := range rejected {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestCancellationReachableFromEveryNonTerminalStatus(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusProcessing, StatusShipped} {
		assert.True(t, from.CanTransitionTo(StatusCancelled), "%s -> cancelled must be allowed", from)
	}
	assert.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCancelled))
}

func TestTransitionError(t *testing.T) {
	err := StatusDelivered.TransitionError(StatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "delivered to processing")
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusCancelled.IsValid())
	assert.False(t, Status("refunded").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, (&Order{Status: StatusDelivered}).IsTerminal())
	assert.True(t, (&Order{Status: StatusCancelled}).IsTerminal())
	assert.False(t, (&Order{Status: StatusShipped}).IsTerminal())
}

func TestCancellableByCustomer(t *testing.T) {
	assert.True(t, (&Order{Status: StatusPending}).CancellableByCustomer())
	assert.False(t, (&Order{Status: StatusProcessing}).CancellableByCustomer())
	assert.False(t, (&Order{Status: StatusShipped}).CancellableByCustomer())
}

func TestNewOrderNumber(t *testing.T) {
	placed := time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "ORD-20250114-00042", NewOrderNumber(42, placed))
	assert.Equal(t, "ORD-20250114-00001", NewOrderNumber(100001, placed))
}

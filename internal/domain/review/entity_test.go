package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModerationTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusApproved))
	assert.True(t, StatusPending.CanTransitionTo(StatusRejected))

	// Moderation decisions are final
	assert.False(t, StatusApproved.CanTransitionTo(StatusRejected))
	assert.False(t, StatusApproved.CanTransitionTo(StatusPending))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusApproved.IsValid())
	assert.True(t, StatusRejected.IsValid())
	assert.False(t, Status("flagged").IsValid())
}

func TestTransitionError(t *testing.T) {
	err := StatusApproved.TransitionError(StatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusCreated, StatusValidated},
		{StatusCreated, StatusCancelled},
		{StatusValidated, StatusPaid},
		{StatusValidated, StatusCancelled},
		{StatusPaid, StatusShipped},
		{StatusPaid, StatusRefunded},
		{StatusShipped, StatusDelivered},
		{StatusShipped, StatusRefunded},
		{StatusDelivered, StatusRefunded},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	forbidden := []struct {
		from, to Status
	}{
		{StatusCreated, StatusPaid},
		{StatusCreated, StatusShipped},
		{StatusCreated, StatusRefunded},
		{StatusValidated, StatusShipped},
		{StatusValidated, StatusRefunded},
		{StatusPaid, StatusCancelled},
		{StatusPaid, StatusValidated},
		{StatusShipped, StatusCancelled},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusValidated},
		{StatusRefunded, StatusPaid},
		{StatusPaid, StatusPaid},
	}
	for _, tc := range forbidden {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusRefunded.Terminal())

	// Delivered orders can still be refunded.
	assert.False(t, StatusDelivered.Terminal())
	assert.False(t, StatusCreated.Terminal())
	assert.False(t, StatusValidated.Terminal())
	assert.False(t, StatusPaid.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{From: StatusCreated, Attempted: StatusPaid}
	assert.Equal(t, "invalid transition: order is CREE, cannot move to PAYEE", err.Error())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusNotProcess, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}

	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("Refunded").Valid())
}

func TestOrderStatusCanTransition(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusNotProcess, StatusProcessing, true},
		{StatusNotProcess, StatusCancelled, true},
		{StatusNotProcess, StatusShipped, false},
		{StatusNotProcess, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusDelivered, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusProcessing, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusCancelled, StatusNotProcess, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	all := []OrderStatus{StatusNotProcess, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
	for _, next := range all {
		assert.False(t, StatusDelivered.CanTransition(next))
		assert.False(t, StatusCancelled.CanTransition(next))
	}
}

package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestOrderValidate(t *testing.T) {
	now := time.Date(2004, 3, 1, 0, 0, 0, 0, time.UTC)
	reason := Reason{Reason: OrderReasonCrossAbove, Message: "short mavg crossed above long mavg"}

	tests := []struct {
		name        string
		order       Order
		shouldError bool
	}{
		{
			name: "valid buy order",
			order: Order{
				Symbol:       "GOOG",
				Quantity:     100,
				Timestamp:    now,
				Reason:       reason,
				StrategyName: "DualMovingAverage",
			},
			shouldError: false,
		},
		{
			name: "valid sell order with id",
			order: Order{
				OrderID:      uuid.New().String(),
				Symbol:       "GOOG",
				Quantity:     -100,
				Timestamp:    now,
				Reason:       reason,
				StrategyName: "DualMovingAverage",
			},
			shouldError: false,
		},
		{
			name: "zero quantity",
			order: Order{
				Symbol:       "GOOG",
				Quantity:     0,
				Timestamp:    now,
				Reason:       reason,
				StrategyName: "DualMovingAverage",
			},
			shouldError: true,
		},
		{
			name: "missing symbol",
			order: Order{
				Quantity:     100,
				Timestamp:    now,
				Reason:       reason,
				StrategyName: "DualMovingAverage",
			},
			shouldError: true,
		},
		{
			name: "malformed order id",
			order: Order{
				OrderID:      "not-a-uuid",
				Symbol:       "GOOG",
				Quantity:     100,
				Timestamp:    now,
				Reason:       reason,
				StrategyName: "DualMovingAverage",
			},
			shouldError: true,
		},
		{
			name: "missing reason",
			order: Order{
				Symbol:       "GOOG",
				Quantity:     100,
				Timestamp:    now,
				StrategyName: "DualMovingAverage",
			},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.shouldError {
				assert.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidOrder))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderSide(t *testing.T) {
	assert.Equal(t, PurchaseTypeBuy, Order{Quantity: 100}.Side())
	assert.Equal(t, PurchaseTypeSell, Order{Quantity: -100}.Side())
}

package utils

import (
	"testing"

	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestCalculateMaxQuantity() {
	tests := []struct {
		name          string
		balance       float64
		price         float64
		commissionFee commission_fee.CommissionFee
		expectedQty   float64
	}{
		{
			name:          "Simple case with no commission",
			balance:       1000.0,
			price:         100.0,
			commissionFee: commission_fee.NewZeroCommissionFee(),
			expectedQty:   10,
		},
		{
			name:          "Case with commission",
			balance:       1000.0,
			price:         100.0,
			commissionFee: commission_fee.NewInteractiveBrokerCommissionFee(),
			expectedQty:   9,
		},
		{
			name:          "Zero balance",
			balance:       0.0,
			price:         100.0,
			commissionFee: commission_fee.NewInteractiveBrokerCommissionFee(),
			expectedQty:   0,
		},
		{
			name:          "Zero price",
			balance:       1000.0,
			price:         0.0,
			commissionFee: commission_fee.NewInteractiveBrokerCommissionFee(),
			expectedQty:   0,
		},
		{
			name:          "Balance less than price",
			balance:       50.0,
			price:         100.0,
			commissionFee: commission_fee.NewInteractiveBrokerCommissionFee(),
			expectedQty:   0,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			qty := CalculateMaxQuantity(tc.balance, tc.price, tc.commissionFee)
			suite.Equal(tc.expectedQty, qty, "Quantity mismatch")
		})
	}
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		value     float64
		precision int
		expected  float64
	}{
		{"whole shares", 10.99, 0, 10},
		{"two decimals", 1.23456, 2, 1.23},
		{"already rounded", 5.5, 1, 5.5},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, RoundToDecimalPrecision(tc.value, tc.precision), 1e-9)
		})
	}
}

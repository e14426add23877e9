package utils

import (
	"math"

	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/commission_fee"
)

// CalculateMaxQuantity returns the largest whole-share quantity that balance can pay
// for at price, commission included.
func CalculateMaxQuantity(balance float64, price float64, commissionFee commission_fee.CommissionFee) float64 {
	if price <= 0 || balance <= 0 {
		return 0
	}

	maxQty := math.Floor(balance / price)

	for maxQty > 0 {
		totalCost := maxQty*price + commissionFee.Calculate(maxQty, price)
		if totalCost <= balance {
			break
		}

		maxQty--
	}

	return maxQty
}

// RoundToDecimalPrecision rounds the value down to the given number of decimals.
func RoundToDecimalPrecision(value float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	return math.Floor(value*multiplier) / multiplier
}

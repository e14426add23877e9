package commission_fee

import "math"

const (
	ibPerShare   = 0.005
	ibMinimum    = 1.0
	ibMaxPercent = 0.01
)

// InteractiveBrokerCommissionFee charges the fixed-rate US equity schedule:
// 0.005 USD per share, at least 1 USD, at most 1% of the trade value.
type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

func (c *InteractiveBrokerCommissionFee) Calculate(quantity float64, price float64) float64 {
	shares := math.Abs(quantity)
	if shares == 0 {
		return 0
	}

	fee := math.Max(ibPerShare*shares, ibMinimum)

	if price > 0 {
		fee = math.Min(fee, ibMaxPercent*shares*price)
	}

	return fee
}

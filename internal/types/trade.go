package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a filled order.
type Trade struct {
	Order      Order     `csv:"order"`
	ExecutedAt time.Time `csv:"executed_at"`
	// ExecutedQty carries the sign of the order: negative for sells.
	ExecutedQty   float64 `csv:"executed_qty"`
	ExecutedPrice float64 `csv:"executed_price"`
	// Fee is the commission charged for this trade
	Fee float64 `csv:"fee"`
	// PnL is the realized profit and loss of a closing trade.
	// For example, 100 shares bought at an average entry of $100.01 (fees included)
	// and sold at $110.00 realize (110.00-100.01)*100 - sell fee.
	// Opening trades have zero PnL.
	PnL float64 `csv:"pnl"`
}

// Notional is the signed cash value of the trade before fees.
func (t Trade) Notional() decimal.Decimal {
	return decimal.NewFromFloat(t.ExecutedQty).Mul(decimal.NewFromFloat(t.ExecutedPrice))
}

// Position represents current holdings of an asset.
type Position struct {
	Symbol   string  `csv:"symbol"`
	Quantity float64 `csv:"quantity"`

	TotalInQuantity  float64 `csv:"total_in_quantity"`
	TotalOutQuantity float64 `csv:"total_out_quantity"`
	TotalInAmount    float64 `csv:"total_in_amount"`
	TotalOutAmount   float64 `csv:"total_out_amount"`
	TotalInFee       float64 `csv:"total_in_fee"`
	TotalOutFee      float64 `csv:"total_out_fee"`

	OpenTimestamp time.Time `csv:"open_timestamp"`
}

// IsFlat reports whether the position holds nothing.
func (p Position) IsFlat() bool {
	return p.Quantity == 0
}

// GetAverageEntryPrice calculates the average entry price including fees.
func (p Position) GetAverageEntryPrice() float64 {
	if p.TotalInQuantity == 0 {
		return 0
	}

	return (p.TotalInAmount + p.TotalInFee) / p.TotalInQuantity
}

// MarketValue is the value of the holding at the given price.
func (p Position) MarketValue(price float64) decimal.Decimal {
	return decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(price))
}

// GetRealizedPnL is the PnL of the quantity sold so far against the average entry price.
func (p Position) GetRealizedPnL() decimal.Decimal {
	if p.TotalInQuantity == 0 || p.TotalOutQuantity == 0 {
		return decimal.Zero
	}

	entryDec := decimal.NewFromFloat(p.TotalOutQuantity).Mul(decimal.NewFromFloat(p.GetAverageEntryPrice()))
	exitDec := decimal.NewFromFloat(p.TotalOutAmount).Sub(decimal.NewFromFloat(p.TotalOutFee))

	return exitDec.Sub(entryDec)
}

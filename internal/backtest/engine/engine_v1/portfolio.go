package engine

import (
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/shopspring/decimal"
)

// Portfolio holds the cash and the single position of a run.
// All arithmetic is done in decimal so repeated fills do not drift.
type Portfolio struct {
	cash     decimal.Decimal
	fees     decimal.Decimal
	position types.Position
}

func NewPortfolio(symbol string, initialCapital float64) *Portfolio {
	return &Portfolio{
		cash:     decimal.NewFromFloat(initialCapital),
		fees:     decimal.Zero,
		position: types.Position{Symbol: symbol},
	}
}

// Apply books a filled trade. Buys add to the position and sells reduce it.
// Cash moves by the notional plus the fee.
func (p *Portfolio) Apply(trade types.Trade) {
	qty := decimal.NewFromFloat(trade.ExecutedQty)
	price := decimal.NewFromFloat(trade.ExecutedPrice)
	fee := decimal.NewFromFloat(trade.Fee)

	p.cash = p.cash.Sub(qty.Mul(price)).Sub(fee)
	p.fees = p.fees.Add(fee)

	position := p.position
	wasFlat := position.IsFlat()

	if trade.ExecutedQty > 0 {
		position.TotalInQuantity = decimal.NewFromFloat(position.TotalInQuantity).Add(qty).InexactFloat64()
		position.TotalInAmount = decimal.NewFromFloat(position.TotalInAmount).Add(qty.Mul(price)).InexactFloat64()
		position.TotalInFee = decimal.NewFromFloat(position.TotalInFee).Add(fee).InexactFloat64()
	} else {
		sold := qty.Abs()
		position.TotalOutQuantity = decimal.NewFromFloat(position.TotalOutQuantity).Add(sold).InexactFloat64()
		position.TotalOutAmount = decimal.NewFromFloat(position.TotalOutAmount).Add(sold.Mul(price)).InexactFloat64()
		position.TotalOutFee = decimal.NewFromFloat(position.TotalOutFee).Add(fee).InexactFloat64()
	}

	position.Quantity = decimal.NewFromFloat(position.Quantity).Add(qty).InexactFloat64()

	if wasFlat {
		position.OpenTimestamp = trade.ExecutedAt
	}

	// a closed position starts a new round trip
	if position.IsFlat() {
		position = types.Position{Symbol: position.Symbol}
	}

	p.position = position
}

// Cash returns the uninvested cash.
func (p *Portfolio) Cash() float64 {
	return p.cash.InexactFloat64()
}

// Position returns a copy of the current position.
func (p *Portfolio) Position() types.Position {
	return p.position
}

// Value returns cash plus the position marked at price.
func (p *Portfolio) Value(price float64) float64 {
	return p.cash.Add(p.position.MarketValue(price)).InexactFloat64()
}

// TotalFees returns the commission paid since the last reset.
func (p *Portfolio) TotalFees() float64 {
	return p.fees.InexactFloat64()
}

func (p *Portfolio) Reset(initialCapital float64) {
	p.cash = decimal.NewFromFloat(initialCapital)
	p.fees = decimal.Zero
	p.position = types.Position{Symbol: p.position.Symbol}
}

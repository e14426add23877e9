package engine

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/rxtech-lab/argo-dma/internal/utils"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BacktestTrading is the simulated broker of a backtest. Orders fill immediately
// and exactly at the close of the current bar.
type BacktestTrading struct {
	portfolio        *Portfolio
	marketData       types.MarketData
	commission       commission_fee.CommissionFee
	decimalPrecision optional.Option[int]
	trades           []types.Trade
	log              *logger.Logger
}

func NewBacktestTrading(symbol string, initialBalance float64, commission commission_fee.CommissionFee, decimalPrecision optional.Option[int], log *logger.Logger) *BacktestTrading {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BacktestTrading{
		portfolio:        NewPortfolio(symbol, initialBalance),
		marketData:       types.MarketData{},
		commission:       commission,
		decimalPrecision: decimalPrecision,
		trades:           nil,
		log:              log,
	}
}

func (b *BacktestTrading) UpdateCurrentMarketData(marketData types.MarketData) {
	b.marketData = marketData
}

// PlaceOrder fills the order at the close of the current bar.
//   - The quantity is rounded toward zero to the configured decimal precision.
//   - A buy that costs more than the available cash is filled anyway and logged as a warning.
//   - A sell larger than the holding is filled anyway and logged as a warning.
func (b *BacktestTrading) PlaceOrder(order types.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	if b.marketData.Symbol == "" {
		return errors.New(errors.ErrCodeMarketDataMissing, "no market data for the current bar")
	}

	if order.Symbol != b.marketData.Symbol {
		return errors.Newf(errors.ErrCodeInvalidOrder, "order symbol %s does not match market data symbol %s", order.Symbol, b.marketData.Symbol)
	}

	price := b.marketData.Close
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return errors.Newf(errors.ErrCodeMarketDataMissing, "invalid close price %v on %s", price, b.marketData.Time.Format("2006-01-02"))
	}

	quantity := b.roundQuantity(order.Quantity)
	if quantity == 0 {
		return errors.New(errors.ErrCodeInvalidOrder, "order quantity is too small or zero after rounding to configured precision")
	}

	fee := b.commission.Calculate(quantity, price)
	position := b.portfolio.Position()

	if quantity > 0 {
		cost := quantity*price + fee
		if cost > b.portfolio.Cash() {
			b.log.Warn("Buy exceeds available cash, filling anyway",
				zap.String("symbol", order.Symbol),
				zap.Float64("quantity", quantity),
				zap.Float64("cost", cost),
				zap.Float64("cash", b.portfolio.Cash()),
				zap.Float64("max_affordable", utils.CalculateMaxQuantity(b.portfolio.Cash(), price, b.commission)),
			)
		}
	} else if -quantity > position.Quantity {
		b.log.Warn("Sell exceeds holding, filling anyway",
			zap.String("symbol", order.Symbol),
			zap.Float64("quantity", quantity),
			zap.Float64("holding", position.Quantity),
		)
	}

	var pnl float64

	if quantity < 0 && position.Quantity > 0 {
		pnl = closingPnL(position, math.Min(-quantity, position.Quantity), price, fee)
	}

	order.Quantity = quantity

	trade := types.Trade{
		Order:         order,
		ExecutedAt:    b.marketData.Time,
		ExecutedQty:   quantity,
		ExecutedPrice: price,
		Fee:           fee,
		PnL:           pnl,
	}

	b.portfolio.Apply(trade)
	b.trades = append(b.trades, trade)

	b.log.Debug("Order filled",
		zap.String("order_id", order.OrderID),
		zap.String("side", string(order.Side())),
		zap.Float64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("fee", fee),
		zap.Float64("cash", b.portfolio.Cash()),
	)

	return nil
}

// closingPnL is the realized PnL added by selling sold units of position at price.
func closingPnL(position types.Position, sold float64, price float64, fee float64) float64 {
	closed := position
	soldDec := decimal.NewFromFloat(sold)
	closed.TotalOutQuantity = decimal.NewFromFloat(position.TotalOutQuantity).Add(soldDec).InexactFloat64()
	closed.TotalOutAmount = decimal.NewFromFloat(position.TotalOutAmount).Add(soldDec.Mul(decimal.NewFromFloat(price))).InexactFloat64()
	closed.TotalOutFee = decimal.NewFromFloat(position.TotalOutFee).Add(decimal.NewFromFloat(fee)).InexactFloat64()

	return closed.GetRealizedPnL().Sub(position.GetRealizedPnL()).InexactFloat64()
}

// roundQuantity rounds toward zero so a sell never rounds into a larger sell.
func (b *BacktestTrading) roundQuantity(quantity float64) float64 {
	precision, err := b.decimalPrecision.Take()
	if err != nil {
		return quantity
	}

	rounded := utils.RoundToDecimalPrecision(math.Abs(quantity), precision)

	return math.Copysign(rounded, quantity)
}

// Trades returns the fills of the current run in order.
func (b *BacktestTrading) Trades() []types.Trade {
	trades := make([]types.Trade, len(b.trades))
	copy(trades, b.trades)

	return trades
}

// Position returns the current holding of symbol.
func (b *BacktestTrading) Position(symbol string) types.Position {
	position := b.portfolio.Position()
	if position.Symbol != symbol {
		return types.Position{Symbol: symbol}
	}

	return position
}

// Portfolio returns the account the broker books fills into.
func (b *BacktestTrading) Portfolio() *Portfolio {
	return b.portfolio
}

// Reset clears the fills and restores the initial capital.
func (b *BacktestTrading) Reset(initialBalance float64) {
	b.portfolio.Reset(initialBalance)
	b.trades = nil
	b.marketData = types.MarketData{}
}

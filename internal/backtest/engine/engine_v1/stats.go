package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/shopspring/decimal"
)

// GetStats summarizes a finished run from its performance table and fills.
func GetStats(cfg config.RunConfig, strategyName string, perf types.Performance, trades []types.Trade) types.RunStats {
	stats := types.RunStats{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		Symbol:         cfg.Symbol,
		StartDate:      cfg.StartDate,
		EndDate:        cfg.EndDate,
		NumberOfDays:   len(perf.Rows),
		InitialCapital: cfg.InitialCapital,
		FinalValue:     perf.FinalValue(),
		Strategy: types.StrategyInfo{
			Name:        strategyName,
			ShortWindow: cfg.ShortWindow,
			LongWindow:  cfg.LongWindow,
			Quantity:    cfg.Quantity,
		},
	}

	if len(perf.Rows) == 0 {
		return stats
	}

	capital := decimal.NewFromFloat(cfg.InitialCapital)
	final := decimal.NewFromFloat(stats.FinalValue)
	stats.TotalReturn = final.Div(capital).Sub(decimal.NewFromInt(1)).InexactFloat64()

	first := perf.Rows[0].Price
	last := perf.Rows[len(perf.Rows)-1]
	stats.BuyAndHoldPnl = decimal.NewFromFloat(last.Price).
		Sub(decimal.NewFromFloat(first)).
		Mul(decimal.NewFromFloat(cfg.Quantity)).
		InexactFloat64()
	stats.TotalFees = last.Fees

	stats.TradeResult = tradeResult(trades)
	stats.TradeResult.MaxDrawdown = maxDrawdown(perf.Rows)
	stats.TradePnl = tradePnl(trades, last)

	return stats
}

func tradeResult(trades []types.Trade) types.TradeResult {
	result := types.TradeResult{NumberOfTrades: len(trades)}

	for _, trade := range trades {
		if trade.ExecutedQty > 0 {
			result.NumberOfBuys++

			continue
		}

		result.NumberOfSells++

		switch {
		case trade.PnL > 0:
			result.NumberOfWinningTrades++
		case trade.PnL < 0:
			result.NumberOfLosingTrades++
		}
	}

	if result.NumberOfSells > 0 {
		result.WinRate = float64(result.NumberOfWinningTrades) / float64(result.NumberOfSells)
	}

	return result
}

// tradePnl marks the open position, if any, at the last close.
func tradePnl(trades []types.Trade, last types.PerformanceRow) types.TradePnl {
	realized := decimal.Zero
	inQty := decimal.Zero
	inCost := decimal.Zero

	for _, trade := range trades {
		if trade.ExecutedQty > 0 {
			inQty = inQty.Add(decimal.NewFromFloat(trade.ExecutedQty))
			inCost = inCost.Add(trade.Notional()).Add(decimal.NewFromFloat(trade.Fee))

			continue
		}

		realized = realized.Add(decimal.NewFromFloat(trade.PnL))
		inQty = decimal.Zero
		inCost = decimal.Zero
	}

	unrealized := decimal.Zero
	if last.PositionQuantity > 0 && inQty.IsPositive() {
		avgEntry := inCost.Div(inQty)
		qty := decimal.NewFromFloat(last.PositionQuantity)
		unrealized = qty.Mul(decimal.NewFromFloat(last.Price)).Sub(qty.Mul(avgEntry))
	}

	return types.TradePnl{
		RealizedPnL:   realized.InexactFloat64(),
		UnrealizedPnL: unrealized.InexactFloat64(),
		TotalPnL:      realized.Add(unrealized).InexactFloat64(),
	}
}

// maxDrawdown is the largest fall of the portfolio value from its running peak, as a fraction of the peak.
func maxDrawdown(rows []types.PerformanceRow) float64 {
	var peak, drawdown float64

	for _, row := range rows {
		if row.PortfolioValue > peak {
			peak = row.PortfolioValue
		}

		if peak <= 0 {
			continue
		}

		if dd := (peak - row.PortfolioValue) / peak; dd > drawdown {
			drawdown = dd
		}
	}

	return drawdown
}

package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BacktestTradingTestSuite struct {
	suite.Suite
	trading *BacktestTrading
	day     time.Time
}

func TestBacktestTradingSuite(t *testing.T) {
	suite.Run(t, new(BacktestTradingTestSuite))
}

func (suite *BacktestTradingTestSuite) SetupTest() {
	suite.trading = NewBacktestTrading("AAPL", 10000, commission_fee.NewZeroCommissionFee(), optional.None[int](), logger.NewNopLogger())
	suite.day = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	suite.setClose(50)
}

func (suite *BacktestTradingTestSuite) setClose(price float64) {
	suite.trading.UpdateCurrentMarketData(types.MarketData{
		Symbol: "AAPL",
		Time:   suite.day,
		Open:   price - 1,
		High:   price + 2,
		Low:    price - 2,
		Close:  price,
		Volume: 1000,
	})
	suite.day = suite.day.AddDate(0, 0, 1)
}

func (suite *BacktestTradingTestSuite) order(quantity float64) types.Order {
	reason := types.Reason{Reason: types.OrderReasonCrossAbove, Message: "short average crossed above long average"}
	if quantity < 0 {
		reason = types.Reason{Reason: types.OrderReasonCrossBelow, Message: "short average crossed below long average"}
	}

	return types.Order{
		OrderID:      uuid.New().String(),
		Symbol:       "AAPL",
		Quantity:     quantity,
		Timestamp:    suite.day,
		Reason:       reason,
		StrategyName: "DualMovingAverage",
	}
}

func (suite *BacktestTradingTestSuite) TestBuyFillsAtClose() {
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(100)))

	trades := suite.trading.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(50.0, trades[0].ExecutedPrice)
	suite.Equal(100.0, trades[0].ExecutedQty)
	suite.Equal(0.0, trades[0].PnL)

	suite.Equal(5000.0, suite.trading.Portfolio().Cash())
	suite.Equal(100.0, suite.trading.Position("AAPL").Quantity)
	suite.True(suite.trading.Position("MSFT").IsFlat())
}

func (suite *BacktestTradingTestSuite) TestSellRealizesPnL() {
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(100)))
	suite.setClose(60)
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(-100)))

	trades := suite.trading.Trades()
	suite.Require().Len(trades, 2)
	suite.Equal(-100.0, trades[1].ExecutedQty)
	suite.Equal(1000.0, trades[1].PnL)
	suite.Equal(11000.0, suite.trading.Portfolio().Cash())
	suite.True(suite.trading.Position("AAPL").IsFlat())
}

func (suite *BacktestTradingTestSuite) TestPartialSellsRealizeSeparately() {
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(100)))
	suite.setClose(60)
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(-40)))
	suite.setClose(55)
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(-60)))

	trades := suite.trading.Trades()
	suite.Require().Len(trades, 3)
	suite.InDelta(400.0, trades[1].PnL, 1e-9)
	suite.InDelta(300.0, trades[2].PnL, 1e-9)
	suite.True(suite.trading.Position("AAPL").IsFlat())
}

func (suite *BacktestTradingTestSuite) TestCommission() {
	suite.trading = NewBacktestTrading("AAPL", 10000, commission_fee.NewInteractiveBrokerCommissionFee(), optional.None[int](), logger.NewNopLogger())
	suite.setClose(50)

	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(100)))
	suite.setClose(60)
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(-100)))

	trades := suite.trading.Trades()
	suite.Equal(1.0, trades[0].Fee)
	suite.Equal(1.0, trades[1].Fee)
	// (60 - 50.01) * 100 - 1
	suite.InDelta(998.0, trades[1].PnL, 1e-9)
	suite.InDelta(10998.0, suite.trading.Portfolio().Cash(), 1e-9)
	suite.InDelta(2.0, suite.trading.Portfolio().TotalFees(), 1e-9)
}

func (suite *BacktestTradingTestSuite) TestInsufficientCashStillFills() {
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(1000)))

	suite.Equal(-40000.0, suite.trading.Portfolio().Cash())
	suite.Equal(1000.0, suite.trading.Position("AAPL").Quantity)
	suite.Equal(10000.0, suite.trading.Portfolio().Value(50))
}

func (suite *BacktestTradingTestSuite) TestDecimalPrecision() {
	suite.trading = NewBacktestTrading("AAPL", 10000, commission_fee.NewZeroCommissionFee(), optional.Some(0), logger.NewNopLogger())
	suite.setClose(50)

	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(10.7)))
	suite.Equal(10.0, suite.trading.Position("AAPL").Quantity)

	// sells round toward zero too
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(-3.9)))
	suite.Equal(7.0, suite.trading.Position("AAPL").Quantity)

	err := suite.trading.PlaceOrder(suite.order(0.4))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))
}

func (suite *BacktestTradingTestSuite) TestRejectedOrders() {
	tests := []struct {
		name   string
		mutate func(o *types.Order)
		code   errors.ErrorCode
	}{
		{"zero quantity", func(o *types.Order) { o.Quantity = 0 }, errors.ErrCodeInvalidOrder},
		{"missing symbol", func(o *types.Order) { o.Symbol = "" }, errors.ErrCodeInvalidOrder},
		{"other symbol", func(o *types.Order) { o.Symbol = "MSFT" }, errors.ErrCodeInvalidOrder},
		{"missing strategy", func(o *types.Order) { o.StrategyName = "" }, errors.ErrCodeInvalidOrder},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			order := suite.order(100)
			tc.mutate(&order)

			err := suite.trading.PlaceOrder(order)
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}

	suite.Empty(suite.trading.Trades())
}

func (suite *BacktestTradingTestSuite) TestNoMarketData() {
	suite.trading.Reset(10000)

	err := suite.trading.PlaceOrder(suite.order(100))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataMissing))
}

func (suite *BacktestTradingTestSuite) TestReset() {
	suite.Require().NoError(suite.trading.PlaceOrder(suite.order(100)))
	suite.trading.Reset(20000)

	suite.Empty(suite.trading.Trades())
	suite.Equal(20000.0, suite.trading.Portfolio().Cash())
	suite.True(suite.trading.Position("AAPL").IsFlat())
}

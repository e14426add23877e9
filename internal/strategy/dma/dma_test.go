package dma

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-dma/internal/strategy"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DMATestSuite struct {
	suite.Suite
	strategy *Strategy
	params   strategy.Params
}

func TestDMASuite(t *testing.T) {
	suite.Run(t, new(DMATestSuite))
}

func (suite *DMATestSuite) SetupTest() {
	suite.strategy = NewStrategy()
	suite.params = strategy.Params{
		Symbol:      "AAPL",
		ShortWindow: 100,
		LongWindow:  400,
		Quantity:    100,
	}
}

type averages struct {
	short float64
	long  float64
}

func (suite *DMATestSuite) bar(day int, pair averages) strategy.Bar {
	return strategy.Bar{
		MarketData: types.MarketData{
			Symbol: suite.params.Symbol,
			Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
			Close:  pair.short,
		},
		Indicators: map[string]float64{
			strategy.ShortAverageName: pair.short,
			strategy.LongAverageName:  pair.long,
		},
	}
}

// run feeds the pairs through the strategy and returns the decisions and final state.
func (suite *DMATestSuite) run(pairs []averages) ([]strategy.Decision, State) {
	state, err := suite.strategy.Initialize(suite.params)
	suite.Require().NoError(err)

	decisions := make([]strategy.Decision, 0, len(pairs))

	for i, pair := range pairs {
		var decision strategy.Decision

		state, decision, err = suite.strategy.OnBar(state, suite.bar(i, pair))
		suite.Require().NoError(err)

		decisions = append(decisions, decision)
	}

	final, ok := state.(State)
	suite.Require().True(ok)

	return decisions, final
}

func (suite *DMATestSuite) TestCrossoverSequence() {
	decisions, final := suite.run([]averages{
		{1, 2}, {3, 2}, {3, 2}, {1, 2}, {1, 2},
	})

	expected := []types.PurchaseType{"", types.PurchaseTypeBuy, "", types.PurchaseTypeSell, ""}
	suite.Require().Len(decisions, len(expected))

	for i, want := range expected {
		decision := decisions[i]

		if want == "" {
			suite.True(decision.Order.IsNone(), "day %d", i)
			suite.False(decision.Record.Buy, "day %d", i)
			suite.False(decision.Record.Sell, "day %d", i)

			continue
		}

		order, err := decision.Order.Take()
		suite.Require().NoError(err, "day %d", i)
		suite.Equal(want, order.Side(), "day %d", i)
		suite.Equal(want == types.PurchaseTypeBuy, decision.Record.Buy)
		suite.Equal(want == types.PurchaseTypeSell, decision.Record.Sell)
	}

	suite.False(final.Invested)
}

func (suite *DMATestSuite) TestEqualAveragesNeverTrade() {
	decisions, final := suite.run([]averages{{5, 5}, {5, 5}, {5, 5}})

	for _, decision := range decisions {
		suite.True(decision.Order.IsNone())
		suite.False(decision.Record.Buy)
		suite.False(decision.Record.Sell)
	}

	suite.False(final.Invested)
}

func (suite *DMATestSuite) TestOneRecordPerInvocation() {
	pairs := []averages{{1, 2}, {2, 1}, {2, 1}, {1, 1}, {0, 1}, {3, 1}, {3, 1}}
	decisions, _ := suite.run(pairs)

	suite.Len(decisions, len(pairs))

	for i, decision := range decisions {
		suite.Equal(pairs[i].short, decision.Record.ShortAvg)
		suite.Equal(pairs[i].long, decision.Record.LongAvg)
		suite.Equal(suite.bar(i, pairs[i]).Time, decision.Record.Time)
	}
}

func (suite *DMATestSuite) TestBuysMinusSellsIsZeroOrOne() {
	pairs := []averages{
		{2, 1}, {3, 1}, {0, 1}, {0, 1}, {1, 1}, {2, 1}, {0, 1}, {5, 1}, {6, 1},
	}
	decisions, final := suite.run(pairs)

	buys, sells := 0, 0

	for _, decision := range decisions {
		if decision.Record.Buy {
			buys++
		}

		if decision.Record.Sell {
			sells++
		}

		suite.Contains([]int{0, 1}, buys-sells)
	}

	suite.Equal(3, buys)
	suite.Equal(2, sells)
	suite.True(final.Invested)
}

func (suite *DMATestSuite) TestOrderQuantityAndFields() {
	decisions, _ := suite.run([]averages{{3, 2}, {1, 2}})

	buy, err := decisions[0].Order.Take()
	suite.Require().NoError(err)
	suite.Equal(100.0, buy.Quantity)
	suite.Equal("AAPL", buy.Symbol)
	suite.Equal(Name, buy.StrategyName)
	suite.Equal(types.OrderReasonCrossAbove, buy.Reason.Reason)
	suite.NotEmpty(buy.OrderID)
	suite.NoError(buy.Validate())

	sell, err := decisions[1].Order.Take()
	suite.Require().NoError(err)
	suite.Equal(-100.0, sell.Quantity)
	suite.Equal(types.OrderReasonCrossBelow, sell.Reason.Reason)
	suite.NoError(sell.Validate())
}

func (suite *DMATestSuite) TestNaNAveragesGiveNoSignal() {
	decisions, final := suite.run([]averages{
		{math.NaN(), math.NaN()}, {3, math.NaN()}, {math.NaN(), 2},
	})

	for _, decision := range decisions {
		suite.True(decision.Order.IsNone())
	}

	suite.True(math.IsNaN(decisions[0].Record.ShortAvg))
	suite.False(final.Invested)
}

func (suite *DMATestSuite) TestInfiniteAverageFails() {
	state, err := suite.strategy.Initialize(suite.params)
	suite.Require().NoError(err)

	_, _, err = suite.strategy.OnBar(state, suite.bar(0, averages{math.Inf(1), 2}))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidIndicatorValue))
}

func (suite *DMATestSuite) TestUnexpectedState() {
	_, _, err := suite.strategy.OnBar("invested", suite.bar(0, averages{1, 2}))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnexpectedStrategyState))
}

func (suite *DMATestSuite) TestInitializeValidation() {
	tests := []struct {
		name   string
		params strategy.Params
	}{
		{
			name:   "missing symbol",
			params: strategy.Params{ShortWindow: 1, LongWindow: 2, Quantity: 1},
		},
		{
			name:   "short window not below long window",
			params: strategy.Params{Symbol: "AAPL", ShortWindow: 5, LongWindow: 5, Quantity: 1},
		},
		{
			name:   "zero quantity",
			params: strategy.Params{Symbol: "AAPL", ShortWindow: 1, LongWindow: 2},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := suite.strategy.Initialize(tc.params)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
		})
	}
}

func (suite *DMATestSuite) TestTransforms() {
	specs := suite.strategy.Transforms(suite.params)
	suite.Require().Len(specs, 2)
	suite.Equal(strategy.ShortAverageName, specs[0].Name)
	suite.Equal(100, specs[0].Window)
	suite.Equal(strategy.LongAverageName, specs[1].Name)
	suite.Equal(400, specs[1].Window)
}

func (suite *DMATestSuite) TestDecideIsIdempotentOnRepeats() {
	state := State{Params: suite.params}

	state, order := Decide(state, 3, 2)
	suite.NotNil(order)
	suite.True(state.Invested)

	state, order = Decide(state, 3, 2)
	suite.Nil(order)
	suite.True(state.Invested)
}

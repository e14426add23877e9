// Package dma implements the dual moving average crossover decision engine.
//
// The engine goes long a fixed quantity when the short average crosses strictly
// above the long average and exits when it crosses strictly below. It holds at
// most one position and emits at most one order per bar.
package dma

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dma/internal/indicator"
	"github.com/rxtech-lab/argo-dma/internal/strategy"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
)

const Name = "DualMovingAverage"

// State is the position state threaded between bars.
type State struct {
	Invested bool
	Params   strategy.Params
}

// Strategy is the crossover decision engine.
type Strategy struct {
	validate *validator.Validate
}

var _ strategy.Strategy = (*Strategy)(nil)

func NewStrategy() *Strategy {
	return &Strategy{
		validate: validator.New(),
	}
}

// Name implements strategy.Strategy.
func (s *Strategy) Name() string {
	return Name
}

// Transforms implements strategy.Strategy.
func (s *Strategy) Transforms(params strategy.Params) []indicator.Spec {
	return []indicator.Spec{
		{Name: strategy.ShortAverageName, Window: params.ShortWindow},
		{Name: strategy.LongAverageName, Window: params.LongWindow},
	}
}

// Initialize implements strategy.Strategy. The returned state is flat.
func (s *Strategy) Initialize(params strategy.Params) (strategy.State, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy parameters", err)
	}

	return State{Invested: false, Params: params}, nil
}

// OnBar implements strategy.Strategy.
func (s *Strategy) OnBar(state strategy.State, bar strategy.Bar) (strategy.State, strategy.Decision, error) {
	current, ok := state.(State)
	if !ok {
		return state, strategy.Decision{}, errors.Newf(errors.ErrCodeUnexpectedStrategyState, "unexpected state type %T", state)
	}

	shortAvg := bar.Indicator(strategy.ShortAverageName)
	longAvg := bar.Indicator(strategy.LongAverageName)

	if math.IsInf(shortAvg, 0) || math.IsInf(longAvg, 0) {
		return current, strategy.Decision{}, errors.Newf(errors.ErrCodeInvalidIndicatorValue,
			"moving averages must be finite on %s: short=%v long=%v", bar.Time.Format("2006-01-02"), shortAvg, longAvg)
	}

	next, order := Decide(current, shortAvg, longAvg)

	record := types.Record{
		Time:     bar.Time,
		ShortAvg: shortAvg,
		LongAvg:  longAvg,
		Buy:      false,
		Sell:     false,
	}

	decision := strategy.Decision{
		Order:  optional.None[types.Order](),
		Record: record,
	}

	if order == nil {
		return next, decision, nil
	}

	order.OrderID = uuid.New().String()
	order.Timestamp = bar.Time
	order.StrategyName = s.Name()

	if order.Side() == types.PurchaseTypeBuy {
		decision.Record.Buy = true
	} else {
		decision.Record.Sell = true
	}

	decision.Order = optional.Some(*order)

	return next, decision, nil
}

// Decide applies the crossover rule to a single pair of averages. It returns the
// next state and the order to place, if any. Comparisons are strict so equal or
// NaN averages never change the state.
func Decide(state State, shortAvg, longAvg float64) (State, *types.Order) {
	params := state.Params

	switch {
	case shortAvg > longAvg && !state.Invested:
		state.Invested = true

		return state, &types.Order{
			Symbol:   params.Symbol,
			Quantity: params.Quantity,
			Reason: types.Reason{
				Reason:  types.OrderReasonCrossAbove,
				Message: fmt.Sprintf("short average %.4f crossed above long average %.4f", shortAvg, longAvg),
			},
		}
	case shortAvg < longAvg && state.Invested:
		state.Invested = false

		return state, &types.Order{
			Symbol:   params.Symbol,
			Quantity: -params.Quantity,
			Reason: types.Reason{
				Reason:  types.OrderReasonCrossBelow,
				Message: fmt.Sprintf("short average %.4f crossed below long average %.4f", shortAvg, longAvg),
			},
		}
	}

	return state, nil
}

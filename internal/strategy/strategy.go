package strategy

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dma/internal/indicator"
	"github.com/rxtech-lab/argo-dma/internal/types"
)

const (
	ShortAverageName = "short_mavg"
	LongAverageName  = "long_mavg"
)

// Params is the per-run configuration handed to a strategy on initialization.
type Params struct {
	Symbol      string  `yaml:"symbol" json:"symbol" validate:"required"`
	ShortWindow int     `yaml:"short_window" json:"short_window" validate:"gt=0"`
	LongWindow  int     `yaml:"long_window" json:"long_window" validate:"gt=0,gtfield=ShortWindow"`
	Quantity    float64 `yaml:"quantity" json:"quantity" validate:"gt=0"`
}

// Bar is one trading day as seen by a strategy: the market data plus the
// latest value of every transform the strategy declared.
type Bar struct {
	types.MarketData
	Indicators map[string]float64
}

// Indicator returns the latest value of the named transform, NaN if unknown.
func (b Bar) Indicator(name string) float64 {
	value, ok := b.Indicators[name]
	if !ok {
		return math.NaN()
	}

	return value
}

// Decision is what a strategy produced for a single bar.
type Decision struct {
	// Order is set when the strategy wants the position changed.
	Order optional.Option[types.Order]
	// Record is appended to the performance table for every bar.
	Record types.Record
}

// State is opaque to the engine. The engine threads it from one OnBar call to the next.
type State any

// Strategy is a per-bar decision hook driven by a simulation engine.
type Strategy interface {
	// Name returns the name of the strategy
	Name() string
	// Transforms declares the rolling transforms the engine must compute before each bar.
	Transforms(params Params) []indicator.Spec
	// Initialize validates the parameters and returns the initial state.
	Initialize(params Params) (State, error)
	// OnBar is called exactly once per bar in chronological order.
	OnBar(state State, bar Bar) (State, Decision, error)
}

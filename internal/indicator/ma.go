package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
)

// MovingAverage is a simple moving average over the last window prices.
type MovingAverage struct {
	name   string
	window int
	mode   WarmUpMode
	// prices holds at most window values, oldest first.
	prices []float64
}

// NewMovingAverage creates a moving average published under name.
func NewMovingAverage(name string, window int, mode WarmUpMode) (*MovingAverage, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "moving average name is required")
	}

	if window <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidWindow, "window must be a positive integer, got %d", window)
	}

	return &MovingAverage{
		name:   name,
		window: window,
		mode:   mode,
		prices: make([]float64, 0, window),
	}, nil
}

// Name returns the name of the transform.
func (m *MovingAverage) Name() string {
	return m.name
}

// Window returns the configured window length.
func (m *MovingAverage) Window() int {
	return m.window
}

// Update appends the next price, dropping the oldest once the window is full.
func (m *MovingAverage) Update(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return errors.Newf(errors.ErrCodeIndicatorCalculation, "%s: price must be a finite number, got %v", m.name, price)
	}

	if len(m.prices) < m.window {
		m.prices = append(m.prices, price)

		return nil
	}

	copy(m.prices, m.prices[1:])
	m.prices[m.window-1] = price

	return nil
}

// Value returns the average of the window.
func (m *MovingAverage) Value() float64 {
	count := len(m.prices)
	if count == 0 {
		return math.NaN()
	}

	if count < m.window && m.mode != WarmUpPartial {
		return math.NaN()
	}

	return talib.Sma(m.prices, count)[count-1]
}

// Ready reports whether a full window of prices has been seen.
func (m *MovingAverage) Ready() bool {
	return len(m.prices) == m.window
}

// Reset clears the price history.
func (m *MovingAverage) Reset() {
	m.prices = m.prices[:0]
}

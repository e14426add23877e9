package indicator

import (
	"fmt"
)

// WarmUpMode decides what a transform reports before its window is full.
type WarmUpMode string

const (
	// WarmUpNaN reports NaN until the window is full.
	WarmUpNaN WarmUpMode = "nan"
	// WarmUpPartial reports the average of the prices seen so far.
	WarmUpPartial WarmUpMode = "partial"
	// WarmUpSkip reports NaN like WarmUpNaN; the engine additionally withholds the
	// strategy hook until every transform is ready.
	WarmUpSkip WarmUpMode = "skip"
)

var AllWarmUpModes = []any{
	WarmUpNaN,
	WarmUpPartial,
	WarmUpSkip,
}

// Spec declares a rolling transform a strategy wants computed for it.
type Spec struct {
	// Name is the key the value is published under on each bar, e.g. "short_mavg".
	Name string
	// Window is the number of trailing bars the transform averages.
	Window int
}

// Transform is a rolling computation over the bar price stream.
type Transform interface {
	// Name returns the key the value is published under
	Name() string
	// Window returns the number of trailing prices the transform needs
	Window() int
	// Update feeds the next price
	Update(price float64) error
	// Value returns the current value, NaN when there is nothing to report
	Value() float64
	// Ready reports whether the window is full
	Ready() bool
	// Reset clears all history
	Reset()
}

// NewTransform builds the moving average transform described by spec.
func NewTransform(spec Spec, mode WarmUpMode) (Transform, error) {
	switch mode {
	case WarmUpNaN, WarmUpPartial, WarmUpSkip:
	default:
		return nil, fmt.Errorf("unsupported warm up mode: %s", mode)
	}

	return NewMovingAverage(spec.Name, spec.Window, mode)
}

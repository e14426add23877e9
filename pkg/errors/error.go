// Package errors gives every failure of a backtest run a numeric code.
//
// Codes are grouped by hundreds:
//   - 1-99: unknown and general errors
//   - 100-199: invalid configuration, orders and parameters
//   - 200-299: price data not found, unreadable or too short
//   - 300-399: moving average windowing and lookup
//   - 400-499: decision engine initialization and per-bar errors
//   - 500-599: order fills and position bookkeeping
//   - 600-699: simulation loop and performance table
//   - 700-799: acquisition from remote providers
//   - 900-999: plot construction and PDF serialization
//
// Each code belongs to one run stage, see [StageOf] and [FailedStage].
//
//	err := errors.Newf(errors.ErrCodeDataNotFound, "no bars for symbol %s", symbol)
//	if errors.HasCode(err, errors.ErrCodeDataNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// coded is implemented by every error type in this package.
type coded interface {
	error
	ErrorCode() ErrorCode
}

// Error is a coded failure with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to cause. A nil cause yields a plain coded error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) ErrorCode() ErrorCode {
	return e.Code
}

// Stage is the run stage this error aborted.
func (e *Error) Stage() Stage {
	return StageOf(e.Code)
}

// GetCode returns the code of the outermost coded error in err's chain,
// or ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}

	return ErrCodeUnknown
}

func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// FailedStage is the run stage err aborted. Uncoded errors count as setup.
func FailedStage(err error) Stage {
	return StageOf(GetCode(err))
}

// InsufficientDataError means the date range holds fewer bars than the longest
// moving average window, so the average can never fill.
type InsufficientDataError struct {
	Symbol   string
	Required int
	Actual   int
}

func NewInsufficientDataError(symbol string, required, actual int) *InsufficientDataError {
	return &InsufficientDataError{Symbol: symbol, Required: required, Actual: actual}
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("[%d] insufficient data points for symbol %s: long window needs %d, got %d",
		ErrCodeInsufficientData, e.Symbol, e.Required, e.Actual)
}

func (e *InsufficientDataError) ErrorCode() ErrorCode {
	return ErrCodeInsufficientData
}

// Missing is how many more bars the range needs.
func (e *InsufficientDataError) Missing() int {
	return e.Required - e.Actual
}

func IsInsufficientDataError(err error) bool {
	var target *InsufficientDataError

	return errors.As(err, &target)
}

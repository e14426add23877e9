package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 102
	ErrCodeInvalidWindow        ErrorCode = 103
	ErrCodeInvalidDateRange     ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeInsufficientData      ErrorCode = 203
	ErrCodeUnsupportedDataFormat ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Strategy errors (400-499)
	ErrCodeStrategyNotLoaded       ErrorCode = 400
	ErrCodeStrategyConfigError     ErrorCode = 401
	ErrCodeStrategyRuntimeError    ErrorCode = 402
	ErrCodeInvalidIndicatorValue   ErrorCode = 403
	ErrCodeUnexpectedStrategyState ErrorCode = 404

	// Trading errors (500-599)
	ErrCodeOrderFailed       ErrorCode = 500
	ErrCodeMarketDataMissing ErrorCode = 501

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed   ErrorCode = 600
	ErrCodeBacktestNoStrategy   ErrorCode = 601
	ErrCodeBacktestNoDatasource ErrorCode = 602
	ErrCodeBacktestCancelled    ErrorCode = 603
	ErrCodeRecorderFailed       ErrorCode = 604

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704

	// Report errors (900-999)
	ErrCodeReportNoData       ErrorCode = 900
	ErrCodeReportRenderFailed ErrorCode = 901
	ErrCodeReportWriteFailed  ErrorCode = 902
)

// Stage is the phase of a backtest run an error aborted.
type Stage string

const (
	StageSetup       Stage = "setup"
	StageAcquisition Stage = "acquisition"
	StageSimulation  Stage = "simulation"
	StageReporting   Stage = "reporting"
)

// StageOf maps an error code to the run stage it belongs to.
func StageOf(code ErrorCode) Stage {
	switch {
	case code >= 700 && code < 800, code >= 200 && code < 300:
		return StageAcquisition
	case code >= 300 && code < 700:
		return StageSimulation
	case code >= 900 && code < 1000:
		return StageReporting
	default:
		return StageSetup
	}
}

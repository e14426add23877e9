package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidWindow, "short window must be positive")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidWindow, err.Code)
	suite.Equal("short window must be positive", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("connection reset")
	err := Wrapf(ErrCodeMarketDataFetchFailed, cause, "failed to fetch %s", "GOOG")
	suite.Equal(ErrCodeMarketDataFetchFailed, err.Code)
	suite.Equal("failed to fetch GOOG", err.Message)
	suite.Equal(cause, err.Cause)
	suite.Equal("[700] failed to fetch GOOG: connection reset", err.Error())
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestGetCodeThroughFmtWrap() {
	inner := New(ErrCodeReportWriteFailed, "disk full")
	err := fmt.Errorf("failed to render report: %w", inner)

	suite.Equal(ErrCodeReportWriteFailed, GetCode(err))
	suite.True(HasCode(err, ErrCodeReportWriteFailed))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeDataNotFound, "data not found")
	err := Wrap(ErrCodeIndicatorNotFound, "indicator not found", cause)
	// GetCode should return the outermost error's code
	suite.Equal(ErrCodeIndicatorNotFound, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromStandardError() {
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
}

func (suite *ErrorTestSuite) TestStageMethod() {
	suite.Equal(StageAcquisition, New(ErrCodeMarketDataFetchFailed, "timeout").Stage())
	suite.Equal(StageReporting, New(ErrCodeReportRenderFailed, "bad plot").Stage())
	suite.Equal(StageSetup, New(ErrCodeInvalidConfiguration, "bad window").Stage())
}

func (suite *ErrorTestSuite) TestFailedStage() {
	wrapped := fmt.Errorf("run: %w", New(ErrCodeOrderFailed, "zero quantity"))
	suite.Equal(StageSimulation, FailedStage(wrapped))
	suite.Equal(StageAcquisition, FailedStage(NewInsufficientDataError("GOOG", 400, 120)))
	suite.Equal(StageSetup, FailedStage(errors.New("standard error")))
}

func (suite *ErrorTestSuite) TestStageOf() {
	tests := []struct {
		code     ErrorCode
		expected Stage
	}{
		{ErrCodeInvalidConfiguration, StageSetup},
		{ErrCodeUnknown, StageSetup},
		{ErrCodeMarketDataFetchFailed, StageAcquisition},
		{ErrCodeDataNotFound, StageAcquisition},
		{ErrCodeInsufficientData, StageAcquisition},
		{ErrCodeIndicatorCalculation, StageSimulation},
		{ErrCodeInvalidIndicatorValue, StageSimulation},
		{ErrCodeOrderFailed, StageSimulation},
		{ErrCodeBacktestCancelled, StageSimulation},
		{ErrCodeReportRenderFailed, StageReporting},
	}

	for _, tc := range tests {
		suite.Run(fmt.Sprintf("code_%d", tc.code), func() {
			suite.Equal(tc.expected, StageOf(tc.code))
		})
	}
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataError("GOOG", 400, 120)
	suite.Equal(400, err.Required)
	suite.Equal(120, err.Actual)
	suite.Equal(280, err.Missing())
	suite.Equal("[203] insufficient data points for symbol GOOG: long window needs 400, got 120", err.Error())
	suite.Equal(ErrCodeInsufficientData, GetCode(fmt.Errorf("run: %w", err)))
	suite.True(HasCode(err, ErrCodeInsufficientData))
}

func (suite *ErrorTestSuite) TestIsInsufficientDataError() {
	suite.True(IsInsufficientDataError(NewInsufficientDataError("SPY", 14, 10)))
	suite.True(IsInsufficientDataError(fmt.Errorf("load: %w", NewInsufficientDataError("", 2, 1))))
	suite.False(IsInsufficientDataError(errors.New("standard error")))
	suite.False(IsInsufficientDataError(New(ErrCodeInvalidParameter, "invalid parameter")))
	suite.False(IsInsufficientDataError(nil))
}

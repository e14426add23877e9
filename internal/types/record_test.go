package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RecordTestSuite struct {
	suite.Suite
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordTestSuite))
}

func (suite *RecordTestSuite) day(i int) time.Time {
	return time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func (suite *RecordTestSuite) TestNewPerformanceRowIsUnrecorded() {
	row := NewPerformanceRow(suite.day(0), 42)
	suite.False(row.Recorded)
	suite.True(math.IsNaN(row.ShortAvg))
	suite.True(math.IsNaN(row.LongAvg))
	suite.Equal(42.0, row.Price)
}

func (suite *RecordTestSuite) TestWithRecord() {
	row := NewPerformanceRow(suite.day(0), 42).WithRecord(Record{ShortAvg: 3, LongAvg: 2, Buy: true})
	suite.True(row.Recorded)
	suite.Equal(3.0, row.ShortAvg)
	suite.Equal(2.0, row.LongAvg)
	suite.True(row.Buy)
	suite.False(row.Sell)
}

func (suite *RecordTestSuite) TestPerformanceAccessors() {
	perf := Performance{
		Symbol: "GOOG",
		Rows: []PerformanceRow{
			NewPerformanceRow(suite.day(0), 10),
			NewPerformanceRow(suite.day(1), 11).WithRecord(Record{ShortAvg: 3, LongAvg: 2, Buy: true}),
			NewPerformanceRow(suite.day(2), 12).WithRecord(Record{ShortAvg: 3, LongAvg: 2}),
			NewPerformanceRow(suite.day(3), 9).WithRecord(Record{ShortAvg: 1, LongAvg: 2, Sell: true}),
		},
	}
	perf.Rows[3].PortfolioValue = 1234

	records := perf.Records()
	suite.Len(records, 3)
	suite.Equal(suite.day(1), records[0].Time)

	suite.Len(perf.Buys(), 1)
	suite.Equal(suite.day(1), perf.Buys()[0].Time)
	suite.Len(perf.Sells(), 1)
	suite.Equal(suite.day(3), perf.Sells()[0].Time)
	suite.Equal(1234.0, perf.FinalValue())
}

func (suite *RecordTestSuite) TestEmptyPerformance() {
	perf := Performance{}
	suite.Empty(perf.Records())
	suite.Empty(perf.Buys())
	suite.Equal(0.0, perf.FinalValue())
}

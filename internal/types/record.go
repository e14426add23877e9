package types

import (
	"math"
	"time"
)

// Record is the set of values the decision engine records for one simulated day.
// Records are append-only: the engine never changes one after the day is closed.
type Record struct {
	Time     time.Time `yaml:"time" json:"time" csv:"time"`
	ShortAvg float64   `yaml:"short_mavg" json:"short_mavg" csv:"short_mavg"`
	LongAvg  float64   `yaml:"long_mavg" json:"long_mavg" csv:"long_mavg"`
	Buy      bool      `yaml:"buy" json:"buy" csv:"buy"`
	Sell     bool      `yaml:"sell" json:"sell" csv:"sell"`
}

// PerformanceRow is one day of the performance table produced by a backtest run.
type PerformanceRow struct {
	Time  time.Time `csv:"time"`
	Price float64   `csv:"price"`
	// Recorded is false on days the strategy hook was withheld (warm-up skip mode).
	Recorded bool    `csv:"recorded"`
	ShortAvg float64 `csv:"short_mavg"`
	LongAvg  float64 `csv:"long_mavg"`
	Buy      bool    `csv:"buy"`
	Sell     bool    `csv:"sell"`

	Cash             float64 `csv:"cash"`
	PositionQuantity float64 `csv:"position_quantity"`
	PositionValue    float64 `csv:"position_value"`
	PortfolioValue   float64 `csv:"portfolio_value"`
	Fees             float64 `csv:"fees"`
}

// NewPerformanceRow creates a row for a day on which the strategy was not invoked.
func NewPerformanceRow(t time.Time, price float64) PerformanceRow {
	return PerformanceRow{
		Time:     t,
		Price:    price,
		ShortAvg: math.NaN(),
		LongAvg:  math.NaN(),
	}
}

// WithRecord copies the strategy's record into the row.
func (r PerformanceRow) WithRecord(record Record) PerformanceRow {
	r.Recorded = true
	r.ShortAvg = record.ShortAvg
	r.LongAvg = record.LongAvg
	r.Buy = record.Buy
	r.Sell = record.Sell

	return r
}

// Performance is the chronological performance table of one run.
type Performance struct {
	Symbol string
	Rows   []PerformanceRow
}

// Records returns the strategy records in day order, skipping withheld days.
func (p Performance) Records() []Record {
	records := make([]Record, 0, len(p.Rows))

	for _, row := range p.Rows {
		if !row.Recorded {
			continue
		}

		records = append(records, Record{
			Time:     row.Time,
			ShortAvg: row.ShortAvg,
			LongAvg:  row.LongAvg,
			Buy:      row.Buy,
			Sell:     row.Sell,
		})
	}

	return records
}

// Buys returns the rows on which a buy was recorded.
func (p Performance) Buys() []PerformanceRow {
	return p.filter(func(row PerformanceRow) bool { return row.Buy })
}

// Sells returns the rows on which a sell was recorded.
func (p Performance) Sells() []PerformanceRow {
	return p.filter(func(row PerformanceRow) bool { return row.Sell })
}

// FinalValue is the portfolio value on the last day, or 0 for an empty table.
func (p Performance) FinalValue() float64 {
	if len(p.Rows) == 0 {
		return 0
	}

	return p.Rows[len(p.Rows)-1].PortfolioValue
}

func (p Performance) filter(keep func(PerformanceRow) bool) []PerformanceRow {
	var rows []PerformanceRow

	for _, row := range p.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}

	return rows
}

package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dma/internal/types"
)

// Format is the on-disk format of a market data file.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

type DataSource interface {
	// Initialize loads the market data file at path. Parquet and CSV are supported.
	Initialize(path string) error
	// SetSymbol restricts every read to a single symbol. An empty symbol reads all rows.
	SetSymbol(symbol string)
	// ReadAll yields the bars between start and end in chronological order
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool)
	// Count returns the number of bars between start and end
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// GetAllSymbols returns all distinct symbols in the loaded file
	GetAllSymbols() ([]string, error)
	// Close closes the data source and releases any resources
	Close() error
}

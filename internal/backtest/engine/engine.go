package engine

import (
	"context"

	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/rxtech-lab/argo-dma/internal/strategy"
	"github.com/rxtech-lab/argo-dma/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnRunStartCallback is called before the first bar is processed.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, symbol string, totalDataPoints int) error

// OnRunEndCallback is called when the run ends (always called via defer).
// err is nil for a completed run.
type OnRunEndCallback func(runID string, resultFolderPath string, err error)

// OnProcessDataCallback is called for each data point processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnProcessData *OnProcessDataCallback
}

type Engine interface {
	// Initialize the engine with the given run configuration.
	Initialize(config config.RunConfig) error
	// SetDataSource sets the data source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// SetResultsFolder sets the output directory for the performance table and run statistics.
	// Nothing is written when the folder is empty.
	SetResultsFolder(folder string) error
	// LoadStrategy loads the strategy the engine drives. A later call replaces the earlier strategy.
	LoadStrategy(strategy strategy.Strategy) error
	// Run runs the engine and executes the trading strategy over every bar in the configured range.
	// The context can be used to cancel the backtest operation; a cancelled run writes nothing.
	// Use LifecycleCallbacks to receive notifications at different phases of the backtest.
	Run(ctx context.Context, callbacks LifecycleCallbacks) (types.Performance, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}

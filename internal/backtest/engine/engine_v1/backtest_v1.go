package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dma/internal/backtest/engine"
	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/rxtech-lab/argo-dma/internal/indicator"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/internal/report"
	"github.com/rxtech-lab/argo-dma/internal/strategy"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"go.uber.org/zap"
)

type BacktestEngineV1 struct {
	config        config.RunConfig
	initialized   bool
	strategy      strategy.Strategy
	resultsFolder string
	log           *logger.Logger
	tradingSystem *BacktestTrading
	recorder      *PerformanceRecorder
	datasource    datasource.DataSource
	lastStats     optional.Option[types.RunStats]
}

func NewBacktestEngineV1(log *logger.Logger) engine.Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BacktestEngineV1{
		config:        config.Default(),
		initialized:   false,
		strategy:      nil,
		resultsFolder: "",
		log:           log,
		tradingSystem: nil,
		recorder:      nil,
		datasource:    nil,
		lastStats:     optional.None[types.RunStats](),
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(cfg config.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "invalid run configuration", err)
	}

	b.config = cfg

	b.log.Debug("Backtest engine initialized",
		zap.String("symbol", cfg.Symbol),
		zap.Time("start", cfg.StartDate),
		zap.Time("end", cfg.EndDate),
		zap.Int("short_window", cfg.ShortWindow),
		zap.Int("long_window", cfg.LongWindow),
		zap.String("warm_up", string(cfg.WarmUp)),
		zap.String("broker", string(cfg.Broker)),
	)

	if b.recorder != nil {
		if err := b.recorder.Close(); err != nil {
			b.log.Warn("Failed to close previous recorder", zap.Error(err))
		}
	}

	recorder, err := NewPerformanceRecorder(b.log)
	if err != nil {
		return err
	}

	if err := recorder.Initialize(); err != nil {
		return err
	}

	b.recorder = recorder
	b.tradingSystem = NewBacktestTrading(
		cfg.Symbol,
		cfg.InitialCapital,
		commission_fee.GetCommissionFeeHandler(cfg.Broker),
		cfg.DecimalPrecision,
		b.log,
	)
	b.initialized = true

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(strategy strategy.Strategy) error {
	if strategy == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "strategy is nil")
	}

	b.strategy = strategy
	b.log.Debug("Strategy loaded", zap.String("strategy", strategy.Name()))

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(datasource datasource.DataSource) error {
	b.datasource = datasource

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.log.Debug("Results folder set", zap.String("folder", folder))

	return nil
}

// LastStats returns the statistics of the last completed run.
func (b *BacktestEngineV1) LastStats() optional.Option[types.RunStats] {
	return b.lastStats
}

// Trades returns the fills of the last run.
func (b *BacktestEngineV1) Trades() []types.Trade {
	if b.tradingSystem == nil {
		return nil
	}

	return b.tradingSystem.Trades()
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (perf types.Performance, err error) {
	if err := b.preRunCheck(); err != nil {
		return types.Performance{}, err
	}

	runID := uuid.New().String()
	b.lastStats = optional.None[types.RunStats]()

	if callbacks.OnRunEnd != nil {
		defer func() {
			folder := ""
			if err == nil {
				folder = b.resultsFolder
			}

			(*callbacks.OnRunEnd)(runID, folder, err)
		}()
	}

	if err := b.cleanUpRun(); err != nil {
		return types.Performance{}, err
	}

	params := b.config.StrategyParams()

	state, err := b.strategy.Initialize(params)
	if err != nil {
		return types.Performance{}, fmt.Errorf("failed to initialize strategy: %w", err)
	}

	specs := b.strategy.Transforms(params)

	registry, err := indicator.NewTransformRegistryFromSpecs(specs, b.config.WarmUp)
	if err != nil {
		return types.Performance{}, fmt.Errorf("failed to create transforms: %w", err)
	}

	longestWindow := 0
	for _, spec := range specs {
		longestWindow = max(longestWindow, spec.Window)
	}

	b.datasource.SetSymbol(b.config.Symbol)
	start := optional.Some(b.config.StartDate)
	end := optional.Some(b.config.EndDate)

	count, err := b.datasource.Count(start, end)
	if err != nil {
		return types.Performance{}, fmt.Errorf("failed to get data count: %w", err)
	}

	if count == 0 {
		return types.Performance{}, errors.Newf(errors.ErrCodeDataNotFound, "no data for %s between %s and %s",
			b.config.Symbol, b.config.StartDate.Format("2006-01-02"), b.config.EndDate.Format("2006-01-02"))
	}

	if count < longestWindow {
		return types.Performance{}, errors.NewInsufficientDataError(b.config.Symbol, longestWindow, count)
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, b.config.Symbol, count); err != nil {
			return types.Performance{}, err
		}
	}

	b.log.Info("Running backtest",
		zap.String("run_id", runID),
		zap.String("strategy", b.strategy.Name()),
		zap.String("symbol", b.config.Symbol),
		zap.Int("bars", count),
	)

	currentCount := 0

	for data, err := range b.datasource.ReadAll(start, end) {
		if err != nil {
			return types.Performance{}, fmt.Errorf("failed to read data: %w", err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Performance{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", ctxErr)
		}

		state, err = b.processBar(state, registry, data)
		if err != nil {
			return types.Performance{}, err
		}

		currentCount++

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(currentCount, count); err != nil {
				return types.Performance{}, err
			}
		}
	}

	rows, err := b.recorder.Rows()
	if err != nil {
		return types.Performance{}, err
	}

	perf = types.Performance{Symbol: b.config.Symbol, Rows: rows}
	stats := GetStats(b.config, b.strategy.Name(), perf, b.tradingSystem.Trades())

	if b.resultsFolder != "" {
		if err := b.writeResults(&stats); err != nil {
			return types.Performance{}, fmt.Errorf("failed to write results: %w", err)
		}
	}

	b.lastStats = optional.Some(stats)

	b.log.Info("Backtest finished",
		zap.String("run_id", runID),
		zap.Int("bars", len(rows)),
		zap.Int("trades", stats.TradeResult.NumberOfTrades),
		zap.Float64("final_value", stats.FinalValue),
		zap.Float64("total_return", stats.TotalReturn),
	)

	return perf, nil
}

// processBar runs one bar through the broker, the transforms, the strategy and the recorder.
func (b *BacktestEngineV1) processBar(state strategy.State, registry indicator.TransformRegistry, data types.MarketData) (strategy.State, error) {
	b.tradingSystem.UpdateCurrentMarketData(data)

	if err := registry.Update(data.Price()); err != nil {
		return state, fmt.Errorf("failed to update transforms on %s: %w", data.Time.Format("2006-01-02"), err)
	}

	row := types.NewPerformanceRow(data.Time, data.Price())

	if b.config.WarmUp != indicator.WarmUpSkip || registry.Ready() {
		bar := strategy.Bar{MarketData: data, Indicators: registry.Values()}

		nextState, decision, err := b.strategy.OnBar(state, bar)
		if err != nil {
			return state, fmt.Errorf("strategy failed on %s: %w", data.Time.Format("2006-01-02"), err)
		}

		state = nextState

		if decision.Order.IsSome() {
			if err := b.tradingSystem.PlaceOrder(decision.Order.Unwrap()); err != nil {
				return state, errors.Wrapf(errors.ErrCodeOrderFailed, err, "failed to place order on %s", data.Time.Format("2006-01-02"))
			}
		}

		row = row.WithRecord(decision.Record)
	}

	portfolio := b.tradingSystem.Portfolio()
	position := portfolio.Position()

	row.Cash = portfolio.Cash()
	row.PositionQuantity = position.Quantity
	row.PositionValue = position.MarketValue(data.Price()).InexactFloat64()
	row.PortfolioValue = portfolio.Value(data.Price())
	row.Fees = portfolio.TotalFees()

	if err := b.recorder.Record(row); err != nil {
		return state, err
	}

	return state, nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	schema, err := b.config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// ResultPaths returns where a run's artifacts are written inside the results folder.
func (b *BacktestEngineV1) ResultPaths() ResultPaths {
	return NewResultPaths(b.resultsFolder, b.config)
}

func (b *BacktestEngineV1) writeResults(stats *types.RunStats) error {
	if err := os.MkdirAll(b.resultsFolder, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to create results folder %s", b.resultsFolder)
	}

	paths := b.ResultPaths()

	if err := b.recorder.WriteParquet(paths.Parquet); err != nil {
		return err
	}

	if err := b.recorder.WriteCSV(paths.CSV); err != nil {
		return err
	}

	stats.ReportPath = paths.Report
	stats.PerformancePath = paths.Parquet
	stats.DataPath = b.config.DataPath

	if err := types.WriteRunStats(paths.Stats, *stats); err != nil {
		return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to write stats", err)
	}

	return nil
}

func (b *BacktestEngineV1) cleanUpRun() error {
	if err := b.recorder.Cleanup(); err != nil {
		return fmt.Errorf("failed to cleanup recorder: %w", err)
	}

	b.tradingSystem.Reset(b.config.InitialCapital)

	return nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		b.log.Error("Engine not initialized")

		return errors.New(errors.ErrCodeBacktestInitFailed, "engine not initialized")
	}

	if b.strategy == nil {
		b.log.Error("No strategy loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy loaded")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	return nil
}

// ResultPaths are the files one run writes.
type ResultPaths struct {
	Report  string
	Parquet string
	CSV     string
	Stats   string
}

// NewResultPaths names every artifact after the report so one folder can hold many runs.
func NewResultPaths(folder string, cfg config.RunConfig) ResultPaths {
	stem := filepath.Join(folder, report.FileStem(cfg.OutputPrefix, cfg.Symbol, cfg.StartDate, cfg.EndDate))

	return ResultPaths{
		Report:  stem + ".pdf",
		Parquet: stem + "_performance.parquet",
		CSV:     stem + "_performance.csv",
		Stats:   stem + "_stats.yaml",
	}
}

// Remove deletes whichever of the files exist.
func (p ResultPaths) Remove() {
	for _, path := range []string{p.Report, p.Parquet, p.CSV, p.Stats} {
		_ = os.Remove(path)
	}
}

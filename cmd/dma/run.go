package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dma/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/rxtech-lab/argo-dma/internal/indicator"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/internal/report"
	"github.com/rxtech-lab/argo-dma/internal/strategy/dma"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/rxtech-lab/argo-dma/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the backtest and write the report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML run configuration",
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Ticker to backtest",
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "First day in `YYYY-MM-DD` format",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Last day in `YYYY-MM-DD` format",
			},
			&cli.IntFlag{
				Name:  "short-window",
				Usage: "Bars in the short moving average",
			},
			&cli.IntFlag{
				Name:  "long-window",
				Usage: "Bars in the long moving average",
			},
			&cli.FloatFlag{
				Name:  "quantity",
				Usage: "Shares bought on entry and sold on exit",
			},
			&cli.StringFlag{
				Name:  "warm-up",
				Usage: fmt.Sprintf("Moving average warm-up mode (%s, %s, %s)", indicator.WarmUpNaN, indicator.WarmUpPartial, indicator.WarmUpSkip),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Read bars from this parquet or CSV file instead of downloading",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the report and performance files are written to",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Download again even when the data file already exists",
			},
		},
		Action: runAction,
	}
}

// loadRunConfig reads the config file, if any, and applies flag overrides on top.
func loadRunConfig(cmd *cli.Command) (config.RunConfig, error) {
	cfg := config.Default()
	cfg.PolygonAPIKey = os.Getenv(config.PolygonAPIKeyEnv)

	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.RunConfig{}, err
		}

		cfg = loaded
	}

	if cmd.IsSet("symbol") {
		cfg.Symbol = cmd.String("symbol")
	}

	if cmd.IsSet("start") {
		start, err := config.ParseDate(cmd.String("start"))
		if err != nil {
			return config.RunConfig{}, err
		}

		cfg.StartDate = start
	}

	if cmd.IsSet("end") {
		end, err := config.ParseDate(cmd.String("end"))
		if err != nil {
			return config.RunConfig{}, err
		}

		cfg.EndDate = end
	}

	if cmd.IsSet("short-window") {
		cfg.ShortWindow = int(cmd.Int("short-window"))
	}

	if cmd.IsSet("long-window") {
		cfg.LongWindow = int(cmd.Int("long-window"))
	}

	if cmd.IsSet("quantity") {
		cfg.Quantity = cmd.Float("quantity")
	}

	if cmd.IsSet("warm-up") {
		cfg.WarmUp = indicator.WarmUpMode(cmd.String("warm-up"))
	}

	if cmd.IsSet("data") {
		cfg.Provider = config.DataProviderFile
		cfg.DataPath = cmd.String("data")
	}

	if cmd.IsSet("output") {
		cfg.OutputDir = optional.Some(cmd.String("output"))
	}

	if err := cfg.Validate(); err != nil {
		return config.RunConfig{}, err
	}

	return cfg, nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer syncLogger(log)

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	dataPath, err := acquire(ctx, cfg, cmd.Bool("refresh"), log)
	if err != nil {
		return err
	}

	cfg.DataPath = dataPath

	source, err := openDataSource(dataPath, cfg.Symbol, log)
	if err != nil {
		return err
	}

	defer func() {
		if err := source.Close(); err != nil {
			log.Warn("Failed to close data source", zap.Error(err))
		}
	}()

	backtest := enginev1.NewBacktestEngineV1(log).(*enginev1.BacktestEngineV1)

	if err := backtest.Initialize(cfg); err != nil {
		return err
	}

	if err := backtest.LoadStrategy(dma.NewStrategy()); err != nil {
		return err
	}

	if err := backtest.SetDataSource(source); err != nil {
		return err
	}

	if err := backtest.SetResultsFolder(cfg.OutputDirectory()); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onRunStart := engine.OnRunStartCallback(func(runID string, symbol string, total int) error {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", symbol)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)

		return nil
	})
	onProcessData := engine.OnProcessDataCallback(func(current int, total int) error {
		return bar.Set(current)
	})
	onRunEnd := engine.OnRunEndCallback(func(runID string, resultFolderPath string, err error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	perf, err := backtest.Run(ctx, engine.LifecycleCallbacks{
		OnRunStart:    &onRunStart,
		OnRunEnd:      &onRunEnd,
		OnProcessData: &onProcessData,
	})
	if err != nil {
		return err
	}

	reportPath, err := report.NewRenderer(log).Render(perf, report.OptionsFromConfig(cfg))
	if err != nil {
		backtest.ResultPaths().Remove()

		return err
	}

	stats := backtest.LastStats().TakeOr(types.RunStats{})

	log.Info("Backtest complete",
		zap.String("report", reportPath),
		zap.String("performance", stats.PerformancePath),
		zap.Int("days", stats.NumberOfDays),
		zap.Int("trades", stats.TradeResult.NumberOfTrades),
		zap.Float64("final_value", stats.FinalValue),
		zap.Float64("total_return", stats.TotalReturn),
		zap.Float64("max_drawdown", stats.TradeResult.MaxDrawdown),
	)

	fmt.Fprintln(os.Stdout, reportPath)

	return nil
}

// openDataSource attaches the bar file at path and fails when it holds no rows for symbol.
func openDataSource(path string, symbol string, log *logger.Logger) (datasource.DataSource, error) {
	source, err := datasource.NewDataSource(":memory:", log)
	if err != nil {
		return nil, err
	}

	if err := source.Initialize(path); err != nil {
		_ = source.Close()

		return nil, err
	}

	symbols, err := source.GetAllSymbols()
	if err != nil {
		_ = source.Close()

		return nil, err
	}

	if !slices.Contains(symbols, symbol) {
		_ = source.Close()

		return nil, errors.Newf(errors.ErrCodeDataNotFound, "%s has no rows for %s (found %s)", path, symbol, strings.Join(symbols, ", "))
	}

	return source, nil
}

// acquire returns the path of the bar file for the run, downloading it when the
// provider is remote and the file is missing or refresh is set.
func acquire(ctx context.Context, cfg config.RunConfig, refresh bool, log *logger.Logger) (string, error) {
	if cfg.Provider == config.DataProviderFile {
		if _, err := os.Stat(cfg.DataPath); err != nil {
			return "", errors.Wrapf(errors.ErrCodeDataNotFound, err, "data file %s", cfg.DataPath)
		}

		return cfg.DataPath, nil
	}

	clientConfig := marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderType(cfg.Provider),
		WriterType:    marketdata.WriterDuckDB,
		DataPath:      cfg.DataPath,
		PolygonApiKey: cfg.PolygonAPIKey,
	}

	params := marketdata.DownloadParams{
		Ticker:     cfg.Symbol,
		StartDate:  cfg.StartDate,
		EndDate:    cfg.EndDate,
		Multiplier: marketdata.TimespanOneDay.Multiplier(),
		Timespan:   marketdata.TimespanOneDay.Timespan(),
		Adjusted:   cfg.Adjusted,
	}

	existing := filepath.Join(cfg.DataPath, params.FileName())
	if _, err := os.Stat(existing); err == nil && !refresh {
		log.Info("Reusing downloaded data", zap.String("path", existing))

		return existing, nil
	}

	return download(ctx, clientConfig, params, log)
}

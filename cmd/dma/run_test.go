package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/rxtech-lab/argo-dma/internal/indicator"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/rxtech-lab/argo-dma/pkg/marketdata"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"
)

type RunCommandTestSuite struct {
	suite.Suite
}

func TestRunCommandSuite(t *testing.T) {
	suite.Run(t, new(RunCommandTestSuite))
}

func (suite *RunCommandTestSuite) SetupTest() {
	suite.T().Setenv(config.PolygonAPIKeyEnv, "test-key")
}

func (suite *RunCommandTestSuite) load(args ...string) (config.RunConfig, error) {
	var (
		cfg config.RunConfig
		err error
	)

	cmd := &cli.Command{
		Name:  "run",
		Flags: runCommand().Flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err = loadRunConfig(cmd)

			return nil
		},
	}

	suite.Require().NoError(cmd.Run(context.Background(), append([]string{"run"}, args...)))

	return cfg, err
}

func (suite *RunCommandTestSuite) TestDefaults() {
	cfg, err := suite.load()
	suite.Require().NoError(err)
	suite.Equal(config.Default().Symbol, cfg.Symbol)
	suite.Equal("test-key", cfg.PolygonAPIKey)
}

func (suite *RunCommandTestSuite) TestFlagsOverrideFile() {
	path := filepath.Join(suite.T().TempDir(), "run.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("symbol: SPY\nshort_window: 10\nlong_window: 40\n"), 0644))

	cfg, err := suite.load(
		"--config", path,
		"--symbol", "MSFT",
		"--start", "2012-01-03",
		"--end", "2014-06-30",
		"--long-window", "50",
		"--warm-up", "skip",
		"--data", "msft.csv",
		"--output", "reports",
	)
	suite.Require().NoError(err)

	suite.Equal("MSFT", cfg.Symbol)
	suite.Equal(10, cfg.ShortWindow)
	suite.Equal(50, cfg.LongWindow)
	suite.Equal(time.Date(2012, 1, 3, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	suite.Equal(time.Date(2014, 6, 30, 0, 0, 0, 0, time.UTC), cfg.EndDate)
	suite.Equal(indicator.WarmUpSkip, cfg.WarmUp)
	suite.Equal(config.DataProviderFile, cfg.Provider)
	suite.Equal("msft.csv", cfg.DataPath)
	suite.Equal("reports", cfg.OutputDirectory())
}

func (suite *RunCommandTestSuite) TestInvalidOverrides() {
	_, err := suite.load("--short-window", "500")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration), "got %v", err)

	_, err = suite.load("--start", "03/01/2012")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDateRange), "got %v", err)
}

func (suite *RunCommandTestSuite) TestAcquireFile() {
	cfg := config.Default()
	cfg.Provider = config.DataProviderFile
	cfg.DataPath = filepath.Join(suite.T().TempDir(), "missing.parquet")

	_, err := acquire(context.Background(), cfg, false, logger.NewNopLogger())
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))

	suite.Require().NoError(os.WriteFile(cfg.DataPath, []byte("x"), 0644))

	path, err := acquire(context.Background(), cfg, false, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Equal(cfg.DataPath, path)
}

func (suite *RunCommandTestSuite) TestAcquireReusesDownload() {
	cfg := config.Default()
	cfg.PolygonAPIKey = "test-key"
	cfg.DataPath = suite.T().TempDir()

	params := marketdata.DownloadParams{
		Ticker:     cfg.Symbol,
		StartDate:  cfg.StartDate,
		EndDate:    cfg.EndDate,
		Multiplier: 1,
		Timespan:   marketdata.TimespanOneDay.Timespan(),
	}
	existing := filepath.Join(cfg.DataPath, params.FileName())
	suite.Require().NoError(os.WriteFile(existing, []byte("x"), 0644))

	path, err := acquire(context.Background(), cfg, false, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Equal(existing, path)
}

func (suite *RunCommandTestSuite) writeCSV(rows string) string {
	path := filepath.Join(suite.T().TempDir(), "bars.csv")
	suite.Require().NoError(os.WriteFile(path, []byte("time,symbol,open,high,low,close,volume\n"+rows), 0644))

	return path
}

func (suite *RunCommandTestSuite) TestOpenDataSource() {
	path := suite.writeCSV("2024-01-02 00:00:00,MSFT,300,301,299,300,1000\n2024-01-03 00:00:00,MSFT,300,302,299,301,1000\n")

	source, err := openDataSource(path, "MSFT", logger.NewNopLogger())
	suite.Require().NoError(err)
	defer source.Close()

	symbols, err := source.GetAllSymbols()
	suite.Require().NoError(err)
	suite.Equal([]string{"MSFT"}, symbols)
}

func (suite *RunCommandTestSuite) TestOpenDataSourceMissingSymbol() {
	path := suite.writeCSV("2024-01-02 00:00:00,MSFT,300,301,299,300,1000\n")

	_, err := openDataSource(path, "GOOG", logger.NewNopLogger())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound), "got %v", err)
	suite.Contains(err.Error(), "GOOG")
}

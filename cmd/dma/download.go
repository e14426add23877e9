package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/pkg/marketdata"
	"github.com/rxtech-lab/argo-dma/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download historical daily prices to a parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Stock ticker symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   providerUsage(),
				Value:   string(marketdata.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval",
				Value:   string(marketdata.TimespanOneDay),
			},
			&cli.BoolFlag{
				Name:  "unadjusted",
				Usage: "Download prices that are not adjusted for splits",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   config.DefaultDataDir,
			},
		},
		Action: downloadAction,
	}
}

// downloadAction downloads one ticker and prints the written file.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer syncLogger(log)

	timespan, err := marketdata.ParseTimespan(cmd.String("interval"))
	if err != nil {
		return err
	}

	info, err := resolveProvider(cmd.String("provider"), !cmd.Bool("unadjusted"), log)
	if err != nil {
		return err
	}

	clientConfig := marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderType(info.Name),
		WriterType:    marketdata.WriterDuckDB,
		DataPath:      cmd.String("data"),
		PolygonApiKey: os.Getenv(config.PolygonAPIKeyEnv),
	}

	params := marketdata.DownloadParams{
		Ticker:     cmd.String("ticker"),
		StartDate:  cmd.Timestamp("start").UTC(),
		EndDate:    cmd.Timestamp("end").UTC(),
		Multiplier: timespan.Multiplier(),
		Timespan:   timespan.Timespan(),
		Adjusted:   !cmd.Bool("unadjusted"),
	}

	path, err := download(ctx, clientConfig, params, log)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, path)

	return nil
}

// providerUsage lists every registered provider for the --provider flag.
func providerUsage() string {
	var names []string

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			continue
		}

		names = append(names, fmt.Sprintf("%s (%s)", name, info.DisplayName))
	}

	return fmt.Sprintf("Data provider to use: %s", strings.Join(names, ", "))
}

// resolveProvider validates the provider name. Asking for adjusted prices from a
// provider that only serves raw bars is logged, not rejected.
func resolveProvider(name string, adjusted bool, log *logger.Logger) (marketdata.ProviderInfo, error) {
	info, err := marketdata.GetProviderInfo(name)
	if err != nil {
		return marketdata.ProviderInfo{}, err
	}

	if adjusted && !info.AdjustedPrices {
		log.Warn("Provider does not adjust prices, bars will be raw", zap.String("provider", info.DisplayName))
	}

	if info.RequiresAuth && os.Getenv(config.PolygonAPIKeyEnv) == "" {
		log.Warn("Provider requires an API key", zap.String("provider", info.DisplayName), zap.String("env", config.PolygonAPIKeyEnv))
	}

	return info, nil
}

// download runs a client download with a terminal progress bar.
func download(ctx context.Context, clientConfig marketdata.ClientConfig, params marketdata.DownloadParams, log *logger.Logger) (string, error) {
	var bar *progressbar.ProgressBar

	onProgress := provider.OnDownloadProgress(func(current float64, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions64(int64(total),
				progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", params.Ticker)),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWriter(os.Stderr),
			)
		}

		if err := bar.Set64(int64(current)); err != nil {
			log.Debug("Failed to update progress bar", zap.Error(err))
		}
	})

	client, err := marketdata.NewClient(clientConfig, onProgress, log)
	if err != nil {
		return "", fmt.Errorf("failed to create market data client: %w", err)
	}

	path, err := client.Download(ctx, params)
	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		return "", err
	}

	return path, nil
}

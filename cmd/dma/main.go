package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	cmd := &cli.Command{
		Name:  "dma",
		Usage: "Backtest a dual moving average crossover strategy on daily prices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Env files to load before reading the configuration",
				Value: []string{".env"},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := config.LoadEnv(cmd.StringSlice("env-file")...); err != nil {
				return ctx, err
			}

			return ctx, nil
		},
		Commands: []*cli.Command{
			runCommand(),
			downloadCommand(),
			schemaCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dma: %s failed: %v\n", errors.FailedStage(err), err)
		stop()
		os.Exit(1)
	}
}

// newLogger builds the logger for the level given on the root command.
func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid --log-level", err)
	}

	return log, nil
}

func syncLogger(log *logger.Logger) {
	// stdout cannot be synced on some platforms
	if err := log.Sync(); err != nil {
		log.Debug("Failed to sync logger", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	enginev1 "github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	schemaFileName       = "dma-run-config.json"
	sampleConfigFileName = "dma-run-config.yaml"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the run configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Write the schema and a sample config into this directory instead of printing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			schema, err := enginev1.NewBacktestEngineV1(nil).GetConfigSchema()
			if err != nil {
				return err
			}

			dir := cmd.String("dir")
			if dir == "" {
				fmt.Fprintln(os.Stdout, schema)

				return nil
			}

			return writeSchema(dir, schema)
		},
	}
}

// writeSchema writes the schema and, when none exists yet, a sample config that points at it.
func writeSchema(dir string, schema string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, schemaFileName), []byte(schema), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	samplePath := filepath.Join(dir, sampleConfigFileName)
	if _, err := os.Stat(samplePath); !os.IsNotExist(err) {
		return nil
	}

	data, err := yaml.Marshal(sampleConfig(config.Default()))
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	data = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), data...)

	if err := os.WriteFile(samplePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	return nil
}

func sampleConfig(cfg config.RunConfig) map[string]any {
	return map[string]any{
		"symbol":          cfg.Symbol,
		"start_date":      cfg.StartDate.Format("2006-01-02"),
		"end_date":        cfg.EndDate.Format("2006-01-02"),
		"adjusted":        cfg.Adjusted,
		"initial_capital": cfg.InitialCapital,
		"short_window":    cfg.ShortWindow,
		"long_window":     cfg.LongWindow,
		"quantity":        cfg.Quantity,
		"broker":          string(cfg.Broker),
		"warm_up":         string(cfg.WarmUp),
		"provider":        string(cfg.Provider),
		"data_path":       cfg.DataPath,
		"output_prefix":   cfg.OutputPrefix,
		"output_dir":      cfg.OutputDirectory(),
	}
}

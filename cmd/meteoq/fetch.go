package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skysweep/meteoq/internal/adapter/openmeteo"
	"github.com/skysweep/meteoq/internal/config"
	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/observability"
	"github.com/skysweep/meteoq/internal/resilience"
	"github.com/skysweep/meteoq/internal/unified"
)

func newFetchCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "fetch <variables> <location> <mode> <start> <end>",
		Short: "Fetch a unified dataset and print it as JSON",
		Long: `Fetch one unified dataset.

Arguments:
  variables  comma-separated variable names (see "meteoq variables")
  location   latitude,longitude (e.g. 40.71,-74.01)
  mode       history, forecast, or both
  start      start date, YYYY-MM-DD
  end        end date, YYYY-MM-DD`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return printError(cmd, err)
			}

			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			metrics := observability.NewMetrics()
			catalog := domain.NewCatalog(cfg.Endpoints)

			var fetcher domain.SegmentFetcher = openmeteo.NewClient(cfg.FetchTimeout, logger, metrics)
			if cfg.RetryMax > 0 {
				fetcher = resilience.NewFetcher(fetcher, resilience.Config{
					MaxRetries:      cfg.RetryMax,
					InitialInterval: cfg.RetryInitialInterval,
					MaxInterval:     cfg.RetryMaxInterval,
				}, logger, metrics)
			}

			svc := unified.NewService(catalog, fetcher, logger, metrics, cfg.MaxConcurrency)

			ds, err := svc.Fetch(cmd.Context(), unified.Request{
				Variables: args[0],
				Location:  args[1],
				Mode:      args[2],
				StartDate: args[3],
				EndDate:   args[4],
			})
			if err != nil {
				return printError(cmd, err)
			}

			payload, err := json.MarshalIndent(ds, "", "  ")
			if err != nil {
				return printError(cmd, fmt.Errorf("encode dataset: %w", err))
			}

			if outPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}

			if err := os.WriteFile(outPath, append(payload, '\n'), 0o644); err != nil {
				return printError(cmd, fmt.Errorf("write output file: %w", err))
			}
			abs, err := filepath.Abs(outPath)
			if err != nil {
				abs = outPath
			}
			fmt.Fprintln(cmd.OutOrStdout(), abs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the dataset to this file instead of stdout")

	return cmd
}

// printError emits the failure as a JSON error body on stdout, matching the
// dataset output channel, and returns the error so the process exits
// non-zero.
func printError(cmd *cobra.Command, err error) error {
	body, _ := json.Marshal(domain.ErrorBody{Error: err.Error()})
	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return err
}

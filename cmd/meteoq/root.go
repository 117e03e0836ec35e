package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meteoq",
		Short: "Unified Open-Meteo time-series acquisition",
		Long: `meteoq fetches weather and air-quality time series from Open-Meteo,
splitting requests across the archive, forecast, and air-quality endpoints
and merging the results into one unified dataset.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newFetchCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVariablesCmd())
	root.AddCommand(newInspectCmd())

	return root
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skysweep/meteoq/internal/domain"
)

func newVariablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variables",
		Short: "List the supported variables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := domain.NewCatalog(domain.DefaultEndpoints())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCATEGORY\tCADENCE")
			for _, name := range catalog.Names() {
				d, err := catalog.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Category, d.Cadence)
			}
			return w.Flush()
		},
	}
}

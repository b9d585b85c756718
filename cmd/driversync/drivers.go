package main

import (
	"fmt"
	"text/tabwriter"

	"driversync/pkg/driver"

	"github.com/spf13/cobra"
)

func init() {
	Registry.FromGetter(func() *cobra.Command {
		return &cobra.Command{
			Use:   "drivers",
			Short: "List registered drivers and their weights",
			Long:  "Weights come from the [drivers] table of the config file; a weight of 0 disables a driver.",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TYPE\tID\tNAME\tWEIGHT")
				for _, info := range driver.List() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", info.Type, info.ID, info.Name, info.Weight)
				}
				return w.Flush()
			},
		}
	})
}

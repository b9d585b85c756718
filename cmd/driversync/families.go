package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"driversync/pkg/family"

	"github.com/spf13/cobra"
)

func init() {
	Registry.FromGetter(func() *cobra.Command {
		return &cobra.Command{
			Use:   "families",
			Short: "List the supported browser families",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tBROWSER\tDRIVER\tSTRATEGY\tBROWSER PATH")
				for _, id := range family.IDs() {
					f, err := globals.cfg.Lookup(id)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.DisplayName, f.DriverName, f.Strategy, f.BrowserPath)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				if len(globals.cfg.Families) > 0 {
					fmt.Fprintf(c.OutOrStdout(), "\nsync default: %s\n", strings.Join(globals.cfg.Families, ", "))
				}
				return nil
			},
		}
	})
}

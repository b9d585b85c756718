package main

import (
	"fmt"

	"driversync/pkg/family"
	"driversync/pkg/updater"

	"github.com/spf13/cobra"
)

func init() {
	Registry.FromGetter(func() *cobra.Command {
		return &cobra.Command{
			Use:       "check [family...]",
			Short:     "Report whether drivers need an update without changing anything",
			ValidArgs: family.IDs(),
			RunE: func(c *cobra.Command, args []string) error {
				ctx := c.Context()
				cfg := globals.cfg
				fams, err := cfg.Select(args)
				if err != nil {
					return err
				}

				u := updater.New(ctx, updater.Options{
					WorkDir:        cfg.WorkDir,
					CatalogTimeout: cfg.CatalogTimeout.Duration,
				})
				out := c.OutOrStdout()
				failed := 0
				for _, f := range fams {
					plan, err := u.Check(ctx, f)
					if err != nil {
						fmt.Fprintf(out, "%s: Error: %s\n", f.DisplayName, err)
						failed++
						continue
					}
					fmt.Fprintf(out, "%s: browser %s, %s %s at %s\n",
						f.DisplayName, plan.Browser.Version, f.DriverName, plan.Driver.Version, plan.Driver.Path)
					if plan.UpToDate {
						fmt.Fprintf(out, "  up to date\n")
					} else {
						fmt.Fprintf(out, "  %s to %s from %s\n", plan.Direction(), plan.TargetVersion, plan.URL)
					}
				}
				if failed > 0 {
					return errReported
				}
				return nil
			},
		}
	})
}

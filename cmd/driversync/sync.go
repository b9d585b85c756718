package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"driversync/pkg/config"
	"driversync/pkg/family"
	"driversync/pkg/logging"
	"driversync/pkg/updater"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
)

// errReported means the failure was already printed to the user.
var errReported = errors.New("one or more families failed")

type syncOptions struct {
	force  bool
	sha256 string
	pick   bool
}

type reconciler interface {
	Run(ctx context.Context, f family.Family) (updater.Result, error)
}

var newReconciler = func(ctx context.Context, cfg config.Config, opts syncOptions, progress io.Writer) reconciler {
	return updater.New(ctx, updater.Options{
		WorkDir:         cfg.WorkDir,
		Force:           opts.force,
		SHA256:          opts.sha256,
		CatalogTimeout:  cfg.CatalogTimeout.Duration,
		DownloadTimeout: cfg.DownloadTimeout.Duration,
		Progress:        progress,
	})
}

func init() {
	Registry.FromGetter(func() *cobra.Command {
		var opts syncOptions
		cmd := &cobra.Command{
			Use:   "sync [family...]",
			Short: "Update drivers whose version does not match their browser",
			Long: `Detect the installed browser and driver of each family and, when the
driver is not the newest healthy build for the browser's main version,
download and install it.

Families run one after another; a failure in one does not stop the rest.
Without arguments the families from the config file are used, or all of them.`,
			ValidArgs: family.IDs(),
			RunE: func(c *cobra.Command, args []string) error {
				return runSync(c, args, opts)
			},
		}
		cmd.Flags().BoolVar(&opts.force, "force", false, "Reinstall even when the versions already match")
		cmd.Flags().StringVar(&opts.sha256, "sha256", "", "Expected SHA-256 of the driver archive (single family only)")
		cmd.Flags().BoolVar(&opts.pick, "pick", false, "Choose the families interactively")
		return cmd
	})
}

func runSync(c *cobra.Command, args []string, opts syncOptions) error {
	ctx := c.Context()
	cfg := globals.cfg

	fams, err := cfg.Select(args)
	if err != nil {
		return err
	}
	if opts.pick {
		if fams, err = pickFamilies(fams); err != nil {
			return err
		}
		if len(fams) == 0 {
			return nil
		}
	}
	if opts.sha256 != "" && len(fams) != 1 {
		return fmt.Errorf("--sha256 needs exactly one family, got %d", len(fams))
	}

	release, err := acquireLock(ctx, cfg.WorkDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			logging.GetLogger(ctx).Warn("failed to release lock", "error", err)
		}
	}()

	r := newReconciler(ctx, cfg, opts, c.ErrOrStderr())
	if failed := reconcile(ctx, r, fams, c.OutOrStdout()); failed > 0 {
		return errReported
	}
	return nil
}

// reconcile runs every family in order and prints one line per family.
// It returns how many families failed.
func reconcile(ctx context.Context, r reconciler, fams []family.Family, out io.Writer) int {
	logger := logging.GetLogger(ctx)
	failed := 0
	for _, f := range fams {
		if ctx.Err() != nil {
			fmt.Fprintf(out, "Error: %s skipped: %v\n", f.DisplayName, ctx.Err())
			failed++
			continue
		}
		res, err := r.Run(ctx, f)
		if err != nil {
			var uerr *updater.Error
			if errors.As(err, &uerr) {
				logger.Error("reconciliation failed", "family", f.ID, "code", uerr.Code, "state", uerr.State, "detail", uerr.Detail())
			} else {
				logger.Error("reconciliation failed", "family", f.ID, "error", err)
			}
			fmt.Fprintf(out, "Error: %s\n", err)
			failed++
			continue
		}
		logger.Info("reconciliation finished", "family", f.ID, "outcome", res.Outcome, "version", res.Plan.TargetVersion)
		fmt.Fprintf(out, "Success: %s\n", res.Message)
	}
	return failed
}

func pickFamilies(fams []family.Family) ([]family.Family, error) {
	idx, err := fuzzyfinder.FindMulti(
		fams,
		func(i int) string {
			return fams[i].DisplayName
		},
		fuzzyfinder.WithPreviewWindow(func(i int, width int, height int) string {
			if i == -1 {
				return ""
			}
			f := fams[i]
			return fmt.Sprintf("Driver:   %s\nBrowser:  %s\nCatalog:  %s\nStrategy: %s",
				f.DriverName, f.BrowserPath, f.CatalogURL, f.Strategy)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder failed: %w", err)
	}
	out := make([]family.Family, 0, len(idx))
	for _, i := range idx {
		out = append(out, fams[i])
	}
	return out, nil
}

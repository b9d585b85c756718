package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"driversync/pkg/config"
	"driversync/pkg/driver"
	_ "driversync/pkg/driver/prelude"
	fetchurlimpl "driversync/pkg/driver/fetchurl/fetchurl"
	"driversync/pkg/logging"
	"driversync/pkg/registry"
	"driversync/pkg/version"

	"github.com/spf13/cobra"
)

var Registry registry.CommandRegistry

// globals holds the state shared by every subcommand once the root's
// PersistentPreRunE has run.
var globals struct {
	cfg        config.Config
	verbose    bool
	configPath string
	workDir    string
	logFile    string
	closeLog   func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	if globals.closeLog != nil {
		if closeErr := globals.closeLog(); closeErr != nil {
			slog.Debug("failed to close log file", "err", closeErr)
		}
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			slog.Error("error", "err", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "driversync",
		Short:         "driversync - keep browser automation drivers in sync with their browsers",
		Version:       version.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return setup(c)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return runSync(c, args, syncOptions{})
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "Config file (default <user config dir>/driversync/config.toml)")
	cmd.PersistentFlags().StringVar(&globals.workDir, "work-dir", "", "Directory for the downloaded archive and extracted files")
	cmd.PersistentFlags().StringVar(&globals.logFile, "log-file", "", "Also write JSON logs to this file, rotated by size")
	Registry.FillCommands(cmd)
	return cmd
}

func setup(c *cobra.Command) error {
	cfg, err := config.Load(globals.configPath)
	if err != nil {
		return err
	}
	if globals.workDir != "" {
		cfg.WorkDir = globals.workDir
	}
	if globals.logFile != "" {
		cfg.LogFile = globals.logFile
	}
	globals.cfg = cfg

	logger, closeLog := logging.Setup(logging.Options{
		Verbose:    globals.verbose,
		Console:    c.ErrOrStderr(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	globals.closeLog = closeLog
	c.SetContext(logging.WithLogger(c.Context(), logger))

	for id, weight := range cfg.Drivers {
		driver.SetWeight(id, weight)
	}
	fetchurlimpl.Servers = cfg.FetchurlServers

	logger.Debug("config loaded", "work_dir", cfg.WorkDir, "log_file", cfg.LogFile, "families", cfg.Families)
	return nil
}

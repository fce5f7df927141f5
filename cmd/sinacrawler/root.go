package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"sinacrawler/pkg/checkpoint"
	"sinacrawler/pkg/config"
	"sinacrawler/pkg/logger"
	"sinacrawler/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sinacrawler",
	Short: "Incremental crawler for Sina Weibo account timelines",
	Long: `sinacrawler pages through the public timeline of a Sina Weibo account and
exports every post it sees to CSV and JSON.

A checkpoint per account records how far the timeline has been crawled, so that:
  - a default run only fetches posts newer than the previous run
  - a continue-mode run resumes deeper into history where the last one stopped

Checkpoints live in Redis by default; a file or in-memory store can be used instead.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColorEnabled(false)
		}
		if quiet {
			ui.SetQuietMode(true)
			logLevel = "error"
		}
		if verbose && !quiet {
			logLevel = "debug"
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.sinacrawler.yaml or ~/.config/sinacrawler/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors and the run summary")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every page and request")

	rootCmd.SetVersionTemplate(`sinacrawler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig layers config file, environment and the given flags, then
// initializes the global logger from the result
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// openRepository connects the configured checkpoint store
func openRepository(ctx context.Context, cfg *config.Config) (*checkpoint.Repository, func(), error) {
	log := logger.GetLogger()
	store, err := checkpoint.NewStore(ctx, cfg.Checkpoint, log)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close checkpoint store")
		}
	}
	return checkpoint.NewRepository(store, cfg.Checkpoint.Platform, log), closeStore, nil
}

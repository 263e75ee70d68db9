package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/maxpreps-stats/internal/config"
	"github.com/pfrederiksen/maxpreps-stats/internal/logger"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitSkippedTeams = 2
)

// Version is set by the binary at startup
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maxpreps-stats",
		Short: "Scrape MaxPreps baseball team stats into per-category CSV datasets",
		Long: `A CLI tool to scrape MaxPreps varsity baseball team stats.
Each team's print page is fetched, its tables are classified as batting,
baserunning, fielding or pitching, merged per athlete, and appended to
per-state category datasets.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newClassifyCmd())

	return cmd
}

// setupLogging points the default logger at the config's log file and stderr.
// The returned func closes the log file.
func setupLogging(cfg config.Config, verbose bool) (func() error, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = logger.LevelDebug
	}

	if cfg.LogFile == "" {
		logger.SetDefault(logger.New(level, os.Stderr))
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	logger.SetDefault(logger.New(level, io.MultiWriter(f, os.Stderr)))
	return f.Close, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

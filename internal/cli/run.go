package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pfrederiksen/maxpreps-stats/internal/config"
	"github.com/pfrederiksen/maxpreps-stats/internal/logger"
	"github.com/pfrederiksen/maxpreps-stats/internal/runner"
	"github.com/pfrederiksen/maxpreps-stats/internal/scraper"
	"github.com/pfrederiksen/maxpreps-stats/internal/storage"
	"github.com/pfrederiksen/maxpreps-stats/internal/team"
	"github.com/spf13/cobra"
)

var (
	flagState     string
	flagConfig    string
	flagLookup    string
	flagOutputDir string
	flagMinTables int
	flagDelay     time.Duration
	flagFormat    string
	flagSort      string
	flagVerbose   bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape every team of a state",
		RunE:  runStateCmd,
	}

	cmd.Flags().StringVar(&flagState, "state", "", "State abbreviation from the lookup table, e.g. pa (required)")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a json5 config file")
	cmd.Flags().StringVar(&flagLookup, "lookup", "", "Team lookup CSV (overrides config)")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Dataset output directory (overrides config)")
	cmd.Flags().IntVar(&flagMinTables, "min-tables", config.DefaultMinTables, "Fewest tables a print page must have")
	cmd.Flags().DurationVar(&flagDelay, "delay", time.Second, "Pause between teams")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or table")
	cmd.Flags().StringVar(&flagSort, "sort", "team", "Order of skipped teams in the summary: team or reason")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.MarkFlagRequired("state")

	return cmd
}

// loadConfig reads the config file and applies the flags the user set
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("lookup") {
		cfg.LookupFile = flagLookup
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = flagOutputDir
	}
	if flags.Changed("min-tables") {
		cfg.MinTables = flagMinTables
	}
	if flags.Changed("delay") {
		cfg.TeamDelay = flagDelay.String()
	}

	return cfg, cfg.Validate()
}

// runStateCmd is the run command logic
func runStateCmd(cmd *cobra.Command, args []string) error {
	code, err := runState(cmd)
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}

// runState scrapes the state and prints the summary. Deferred cleanup runs
// before the caller exits with the returned code.
func runState(cmd *cobra.Command) (int, error) {
	state := strings.ToLower(strings.TrimSpace(flagState))
	if state == "" {
		return ExitError, fmt.Errorf("--state is required")
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return ExitError, err
	}
	order, err := parseSortOrder(flagSort)
	if err != nil {
		return ExitError, err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return ExitError, fmt.Errorf("loading config: %w", err)
	}

	closeLog, err := setupLogging(cfg, flagVerbose)
	if err != nil {
		return ExitError, err
	}
	defer closeLog()

	teams, err := team.LoadLookup(cfg.LookupFile)
	if err != nil {
		return ExitError, fmt.Errorf("loading team lookup: %w", err)
	}
	teams = team.ForState(teams, state)

	store, err := storage.New(cfg.OutputDir, cfg.TeamsDir, cfg.FailureLogDir)
	if err != nil {
		return ExitError, fmt.Errorf("initializing storage: %w", err)
	}

	failureLog, err := store.OpenFailureLog(state)
	if err != nil {
		return ExitError, err
	}
	defer failureLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	metrics := logger.DefaultMetrics()
	processor := runner.New(scraper.New(cfg.ScraperOptions()), store, metrics)
	rc := runner.RunContext{
		State:     state,
		MinTables: cfg.MinTables,
		TeamDelay: cfg.TeamDelayDuration(),
		Failures:  failureLog,
	}

	summary, err := processor.RunState(ctx, rc, teams)
	if err != nil {
		return ExitError, fmt.Errorf("running %s: %w", state, err)
	}
	sortFailures(summary.Failures, order)
	snapshot := metrics.Snapshot()

	result := &OutputResult{
		Summary:    summary,
		FailureLog: failureLog.Path(),
		OutputDir:  store.OutputDir(),
		Metrics:    &snapshot,
	}
	if err := WriteOutput(os.Stdout, result, format, flagVerbose); err != nil {
		return ExitError, fmt.Errorf("writing output: %w", err)
	}

	return ExitCode(summary), nil
}

// ExitCode maps a finished run to the process exit code
func ExitCode(summary *runner.Summary) int {
	if summary.Skipped > 0 {
		return ExitSkippedTeams
	}
	return ExitSuccess
}

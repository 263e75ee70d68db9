package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pfrederiksen/maxpreps-stats/internal/logger"
	"github.com/pfrederiksen/maxpreps-stats/internal/runner"
	"github.com/pfrederiksen/maxpreps-stats/internal/stats"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatText, FormatJSON, FormatTable:
		return format, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'table')", s)
}

// OutputResult contains data to be output
type OutputResult struct {
	*runner.Summary
	FailureLog string           `json:"failure_log"`
	OutputDir  string           `json:"output_dir"`
	Metrics    *logger.Snapshot `json:"metrics,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatTable:
		return writeTable(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	fmt.Fprintf(w, "State %s: %d teams, %d processed, %d skipped (%s)\n",
		strings.ToUpper(result.State), result.Teams, result.Processed, result.Skipped,
		result.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "\nRows written to %s:\n", result.OutputDir)
	for _, c := range stats.Categories() {
		fmt.Fprintf(w, "  %-12s %d\n", c, result.Rows[c])
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "\nSkipped teams (%s):\n", result.FailureLog)
		for _, f := range result.Failures {
			if f.TablesFound > 0 {
				fmt.Fprintf(w, "  %s: %s (%d tables)\n", f.TeamName, f.Reason, f.TablesFound)
			} else {
				fmt.Fprintf(w, "  %s: %s\n", f.TeamName, f.Reason)
			}
			if verbose {
				fmt.Fprintf(w, "       URL: %s\n", f.StatsURL)
			}
		}
	}

	if verbose && result.Metrics != nil {
		if len(result.Metrics.Counters) > 0 {
			fmt.Fprintln(w, "\nCounters:")
			for _, name := range sortedKeys(result.Metrics.Counters) {
				fmt.Fprintf(w, "  %s: %d\n", name, result.Metrics.Counters[name])
			}
		}
		if timing, ok := result.Metrics.Timings["team.process"]; ok {
			fmt.Fprintf(w, "\nPer team: avg %s, max %s over %d teams\n",
				timing.Average().Round(time.Millisecond), timing.Max.Round(time.Millisecond), timing.Count)
		}
	}

	return nil
}

// writeTable renders the summary and skipped teams as go-pretty tables. Headings
// are printed above the tables since a title wider than the columns is wrapped.
func writeTable(w io.Writer, result *OutputResult) error {
	fmt.Fprintf(w, "%s: %d/%d teams processed\n", strings.ToUpper(result.State), result.Processed, result.Teams)
	rows := newTable(w)
	rows.AppendHeader(table.Row{"Category", "Rows"})
	total := 0
	for _, c := range stats.Categories() {
		rows.AppendRow(table.Row{c, result.Rows[c]})
		total += result.Rows[c]
	}
	rows.AppendFooter(table.Row{"Total", total})
	rows.Render()

	if len(result.Failures) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\nSkipped teams (%d)\n", result.Skipped)
	skipped := newTable(w)
	skipped.AppendHeader(table.Row{"Team", "Reason", "Tables"})
	for _, f := range result.Failures {
		skipped.AppendRow(table.Row{f.TeamName, f.Reason, f.TablesFound})
	}
	skipped.Render()

	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pfrederiksen/maxpreps-stats/internal/scraper"
	"github.com/pfrederiksen/maxpreps-stats/internal/stats"
	"github.com/spf13/cobra"
)

var flagClassifyFormat string

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <page.html>",
		Short: "Show how each table of a saved print page is classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flagClassifyFormat)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening page: %w", err)
			}
			defer f.Close()

			return classifyPage(f, cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&flagClassifyFormat, "format", "table", "Output format: text, json or table")

	return cmd
}

// TableClass is the classification of one table of a page
type TableClass struct {
	Index        int            `json:"index"`
	Headers      []string       `json:"headers"`
	Rows         int            `json:"rows"`
	Category     stats.Category `json:"category"`
	PitchingKind string         `json:"pitching_kind,omitempty"`
}

// PageClass is the classification of a saved print page
type PageClass struct {
	TablesFound int          `json:"tables_found"`
	Tables      []TableClass `json:"tables"`
	Errors      []string     `json:"errors,omitempty"`
}

// ClassifyPage parses a print page and classifies every extracted table
func ClassifyPage(r io.Reader) (*PageClass, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	doc, err := scraper.ParseDocument(string(data))
	if err != nil {
		return nil, err
	}

	page := &PageClass{TablesFound: scraper.CountTables(doc)}
	tables, errs := scraper.ParseTables(doc)
	for _, err := range errs {
		page.Errors = append(page.Errors, err.Error())
	}

	for i, t := range tables {
		normalized := stats.NormalizeTable(t)
		tc := TableClass{
			Index:    i,
			Headers:  normalized.Header,
			Rows:     len(normalized.Rows),
			Category: stats.Classify(normalized.Header),
		}
		if tc.Category == stats.Pitching {
			tc.PitchingKind = stats.PitchingKind(normalized.Header)
		}
		page.Tables = append(page.Tables, tc)
	}

	return page, nil
}

func classifyPage(r io.Reader, w io.Writer, format OutputFormat) error {
	page, err := ClassifyPage(r)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(page)
	case FormatText:
		for _, tc := range page.Tables {
			fmt.Fprintf(w, "%d %s %s: %s\n", tc.Index, categoryLabel(tc.Category), tc.PitchingKind, strings.Join(tc.Headers, ", "))
		}
		for _, e := range page.Errors {
			fmt.Fprintf(w, "dropped: %s\n", e)
		}
		return nil
	}

	fmt.Fprintf(w, "%d tables found, %d extracted\n", page.TablesFound, len(page.Tables))
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Category", "Kind", "Rows", "Headers"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 60},
	})
	for _, tc := range page.Tables {
		t.AppendRow(table.Row{tc.Index, categoryLabel(tc.Category), tc.PitchingKind, tc.Rows, strings.Join(tc.Headers, " ")})
	}
	t.Render()

	for _, e := range page.Errors {
		fmt.Fprintf(w, "dropped: %s\n", e)
	}
	return nil
}

func categoryLabel(c stats.Category) string {
	if c == stats.Unclassified {
		return "-"
	}
	return string(c)
}

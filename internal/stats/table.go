package stats

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoHeader is returned for a table without a header row
	ErrNoHeader = errors.New("table has no header row")
	// ErrRaggedRow is returned when a body row is wider than the header
	ErrRaggedRow = errors.New("row width does not match header")
)

// RawTable is one scraped table. Header is the table's first row.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// NewRawTable builds a RawTable. Rows shorter than the header are padded with
// empty cells; a row wider than the header rejects the table.
func NewRawTable(header []string, rows [][]string) (RawTable, error) {
	if len(header) == 0 {
		return RawTable{}, ErrNoHeader
	}
	padded := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > len(header) {
			return RawTable{}, fmt.Errorf("row %d has %d cells, header has %d: %w", i+1, len(row), len(header), ErrRaggedRow)
		}
		if len(row) < len(header) {
			row = append(append(make([]string, 0, len(header)), row...), make([]string, len(header)-len(row))...)
		}
		padded[i] = row
	}
	return RawTable{Header: header, Rows: padded}, nil
}

// Empty reports whether the table has no body rows
func (t RawTable) Empty() bool {
	return len(t.Rows) == 0
}

// FilterSummaryRows drops the site's injected subtotal rows ("Team Totals",
// "2024 Season", ...) and rows too short to carry an athlete name.
func FilterSummaryRows(header []string, rows [][]string) [][]string {
	nameIdx := nameColumn(header)
	if nameIdx < 0 {
		nameIdx = 1
	}

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 || nameIdx >= len(row) {
			continue
		}
		if isSummaryName(row[nameIdx]) {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func isSummaryName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "season") || strings.Contains(lower, "totals")
}

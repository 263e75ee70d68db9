package team

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pfrederiksen/maxpreps-stats/internal/stats"
)

// Lookup table column names
const (
	ColumnSchool    = "school"
	ColumnCityState = "city_state"
	ColumnStatsURL  = "stats_url"
	ColumnAbbr      = "abbr"
)

// Team is one row of the lookup table
type Team struct {
	School    string `json:"school"`
	CityState string `json:"city_state"`
	StatsURL  string `json:"stats_url"`
	Abbr      string `json:"abbr"`
}

// Info returns the identity stamped onto the team's merged rows
func (t Team) Info() stats.TeamInfo {
	return stats.TeamInfo{
		Name:      t.School,
		CityState: t.CityState,
		StatsURL:  t.StatsURL,
	}
}

// FileName returns a filesystem-safe base name for the team
func (t Team) FileName() string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(strings.TrimSpace(t.School))
}

// LoadLookup reads the lookup table from path
func LoadLookup(path string) ([]Team, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lookup file: %w", err)
	}
	defer f.Close()

	return ParseLookup(f)
}

// ParseLookup reads a lookup table. Extra columns are ignored; the four
// required columns must be present in the header.
func ParseLookup(r io.Reader) ([]Team, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("lookup file is empty")
		}
		return nil, fmt.Errorf("reading lookup header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{ColumnSchool, ColumnCityState, ColumnStatsURL, ColumnAbbr} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("lookup file missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	teams := make([]Team, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading lookup row: %w", err)
		}

		teams = append(teams, Team{
			School:    field(record, ColumnSchool),
			CityState: field(record, ColumnCityState),
			StatsURL:  field(record, ColumnStatsURL),
			Abbr:      strings.ToLower(field(record, ColumnAbbr)),
		})
	}

	return teams, nil
}

// ForState returns the teams whose abbreviation matches state, in lookup order
func ForState(teams []Team, state string) []Team {
	state = strings.ToLower(strings.TrimSpace(state))
	filtered := make([]Team, 0)
	for _, t := range teams {
		if t.Abbr == state {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

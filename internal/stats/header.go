package stats

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Join key and injected column names
const (
	NumberColumn    = "#"
	AthleteColumn   = "ATHLETE NAME"
	TeamColumn      = "TEAM"
	CityStateColumn = "CITY_STATE"
	StatsURLColumn  = "STATS_URL"
)

// nameHeaders are the headers accepted as the athlete-name join column, in
// order of preference.
var nameHeaders = []string{AthleteColumn, "NAME", "ATHLETE", "PLAYER"}

// headerSynonyms maps long-form or alternate header text to the canonical
// abbreviation. Canonical values never appear as keys mapping elsewhere, which
// keeps NormalizeHeader idempotent.
var headerSynonyms = map[string]string{
	"BATTING AVG":          "AVG",
	"BA":                   "AVG",
	"RUNS BATTED IN":       "RBI",
	"RBI":                  "RBI",
	"RUNS SCORED":          "R",
	"R":                    "R",
	"AT BATS":              "AB",
	"AB":                   "AB",
	"HITS":                 "H",
	"H":                    "H",
	"DOUBLES":              "2B",
	"2B":                   "2B",
	"TRIPLES":              "3B",
	"3B":                   "3B",
	"HOME RUNS":            "HR",
	"HR":                   "HR",
	"WALKS":                "BB",
	"BB":                   "BB",
	"STRIKEOUTS":           "K",
	"K":                    "K",
	"OPPONENT AVG":         "OBA",
	"OPP BA":               "OBA",
	"OPP AVG":              "OBA",
	"ON BASE %":            "OBP",
	"ON BASE PCT":          "OBP",
	"WILD PITCHES":         "WP",
	"HIT BATTERS":          "HBP",
	"SACRIFICE FLIES":      "SF",
	"SACRIFICE HITS":       "SH/B",
	"PITCH COUNT":          "#P",
	"PITCHES":              "#P",
	"BALKS":                "BK",
	"PICKOFFS":             "PO",
	"STOLEN BASES AGAINST": "SB",
	"EARNED RUN AVERAGE":   "ERA",
	"INNINGS PITCHED":      "IP",
	"FIELDING PERCENTAGE":  "FLD%",
	"PUTOUTS":              "PO",
	"ASSISTS":              "A",
	"ERRORS":               "E",
	"DOUBLE PLAYS":         "DP",
	"STOLEN BASES":         "SB",
	"CAUGHT STEALING":      "CS",
	"GAMES PLAYED":         "GP",
	"GAMES STARTED":        "GS",
	"APPEARANCES":          "APP",
}

// NormalizeHeader returns the canonical form of a raw header.
// Unmapped headers come back cleaned and upper-cased.
func NormalizeHeader(raw string) string {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(norm.NFKC.String(raw)), " "))
	if canonical, ok := headerSynonyms[cleaned]; ok {
		return canonical
	}
	return cleaned
}

// NormalizeHeaders normalizes every header in order
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// NormalizeTable returns a copy of t with canonical headers. When two headers
// collapse to the same canonical name the later column is dropped.
func NormalizeTable(t RawTable) RawTable {
	seen := make(map[string]bool, len(t.Header))
	keep := make([]int, 0, len(t.Header))
	header := make([]string, 0, len(t.Header))

	for i, h := range t.Header {
		canonical := NormalizeHeader(h)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		keep = append(keep, i)
		header = append(header, canonical)
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for j, i := range keep {
			if i < len(row) {
				out[j] = row[i]
			}
		}
		rows[r] = out
	}

	return RawTable{Header: header, Rows: rows}
}

// nameColumn returns the index of the athlete-name column, or -1
func nameColumn(header []string) int {
	normalized := NormalizeHeaders(header)
	for _, want := range nameHeaders {
		for i, h := range normalized {
			if h == want {
				return i
			}
		}
	}
	return -1
}

// numberColumn returns the index of the jersey-number column, or -1
func numberColumn(header []string) int {
	for i, h := range header {
		if NormalizeHeader(h) == NumberColumn {
			return i
		}
	}
	return -1
}

package stats

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Category
	}{
		{
			name:    "pitching despite batting overlap",
			headers: []string{"ERA", "W", "L", "IP", "H", "R", "ER", "BB", "SO"},
			want:    Pitching,
		},
		{
			name:    "pitching basic only",
			headers: []string{"#", "Athlete Name", "ERA", "W", "L"},
			want:    Pitching,
		},
		{
			name:    "pitching additional",
			headers: []string{"#", "Athlete Name", "OBA", "WP"},
			want:    Pitching,
		},
		{
			name:    "pitching from long-form headers",
			headers: []string{"Earned Run Average", "Appearances", "W"},
			want:    Pitching,
		},
		{
			name:    "batting",
			headers: []string{"AVG", "AB", "H", "R", "RBI", "HR"},
			want:    Batting,
		},
		{
			name:    "batting from additional set",
			headers: []string{"#", "Athlete Name", "2B", "3B"},
			want:    Batting,
		},
		{
			name:    "fielding",
			headers: []string{"FPCT", "PO", "A", "E"},
			want:    Fielding,
		},
		{
			name:    "fielding needs both sets",
			headers: []string{"FPCT", "GP"},
			want:    Unclassified,
		},
		{
			name:    "baserunning",
			headers: []string{"SB", "CS"},
			want:    Baserunning,
		},
		{
			name:    "stolen bases against reads as baserunning",
			headers: []string{"#", "Athlete Name", "Stolen Bases Against"},
			want:    Baserunning,
		},
		{
			name:    "no match",
			headers: []string{"X", "Y", "Z"},
			want:    Unclassified,
		},
		{
			name:    "empty header",
			headers: nil,
			want:    Unclassified,
		},
		{
			name:    "single batting indicator is not enough",
			headers: []string{"#", "Athlete Name", "AVG"},
			want:    Unclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.headers); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.headers, got, tt.want)
			}
		})
	}
}

func TestClassify_PermutationInvariant(t *testing.T) {
	sets := [][]string{
		{"ERA", "W", "L", "IP", "H", "R", "ER", "BB", "SO"},
		{"AVG", "AB", "H", "R", "RBI", "HR"},
		{"FPCT", "PO", "A", "E"},
		{"SB", "CS"},
		{"X", "Y", "Z"},
		{"#", "Athlete Name", "H", "R", "BB", "SB"},
	}

	for _, headers := range sets {
		want := Classify(headers)
		for i := range headers {
			rotated := append(append([]string{}, headers[i:]...), headers[:i]...)
			if got := Classify(rotated); got != want {
				t.Errorf("Classify(%v) = %q, want %q (order of %v)", rotated, got, want, headers)
			}
			reversed := make([]string, len(rotated))
			for j, h := range rotated {
				reversed[len(rotated)-1-j] = h
			}
			if got := Classify(reversed); got != want {
				t.Errorf("Classify(%v) = %q, want %q (order of %v)", reversed, got, want, headers)
			}
		}
	}
}

func TestClassifyTables(t *testing.T) {
	tables := []RawTable{
		{Header: []string{"#", "Athlete Name", "Batting Avg", "AB", "RBI"}, Rows: [][]string{{"1", "Alice", ".300", "10", "2"}}},
		{Header: []string{"#", "Athlete Name", "2B", "3B", "HR"}, Rows: [][]string{{"1", "Alice", "1", "0", "1"}}},
		{Header: []string{"#", "Athlete Name", "SB", "CS"}, Rows: [][]string{{"1", "Alice", "3", "1"}}},
		{Header: []string{"Date", "Opponent", "Result"}, Rows: [][]string{{"3/1", "Dover", "W 5-2"}}},
	}

	groups, report := ClassifyTables(tables)

	if report.Found != 4 {
		t.Errorf("report.Found = %d, want 4", report.Found)
	}
	if report.Classified != 3 {
		t.Errorf("report.Classified = %d, want 3", report.Classified)
	}
	if report.ByCategory[Batting] != 2 {
		t.Errorf("report.ByCategory[batting] = %d, want 2", report.ByCategory[Batting])
	}
	if len(groups[Baserunning]) != 1 {
		t.Errorf("len(groups[baserunning]) = %d, want 1", len(groups[Baserunning]))
	}
	if _, ok := groups[Unclassified]; ok {
		t.Error("unclassified tables should not be grouped")
	}
	if got := groups[Batting][0].Header[2]; got != "AVG" {
		t.Errorf("grouped table header = %q, want normalized AVG", got)
	}
}

func TestPitchingKind(t *testing.T) {
	tests := []struct {
		headers []string
		want    string
	}{
		{[]string{"#", "Athlete Name", "ERA", "W", "L", "W%", "APP"}, "basic"},
		{[]string{"IP", "H", "R", "ER", "BB", "SO"}, "advanced"},
		{[]string{"OBA", "Wild Pitches", "Hit Batters", "Balks"}, "additional"},
		{[]string{"ERA", "W", "L"}, ""},
	}

	for _, tt := range tests {
		if got := PitchingKind(tt.headers); got != tt.want {
			t.Errorf("PitchingKind(%v) = %q, want %q", tt.headers, got, tt.want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, ok := ParseCategory(string(c))
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, ok)
		}
	}
	if _, ok := ParseCategory("hitting"); ok {
		t.Error("ParseCategory(hitting) should fail")
	}
}

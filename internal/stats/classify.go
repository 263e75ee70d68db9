package stats

// Category is the statistical category of a table
type Category string

const (
	Unclassified Category = ""
	Batting      Category = "batting"
	Baserunning  Category = "baserunning"
	Fielding     Category = "fielding"
	Pitching     Category = "pitching"
)

// Categories returns the four categories in output order
func Categories() []Category {
	return []Category{Batting, Baserunning, Fielding, Pitching}
}

// ParseCategory maps a category name to a Category
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return Unclassified, false
}

type headerSet map[string]struct{}

func newHeaderSet(headers []string) headerSet {
	set := make(headerSet, len(headers))
	for _, h := range headers {
		set[NormalizeHeader(h)] = struct{}{}
	}
	return set
}

// count returns how many of the indicators are present
func (s headerSet) count(indicators ...string) int {
	n := 0
	for _, ind := range indicators {
		if _, ok := s[ind]; ok {
			n++
		}
	}
	return n
}

func (s headerSet) has(indicators ...string) bool {
	return s.count(indicators...) > 0
}

// Indicator sets
var (
	pitchingBasic      = []string{"ERA", "W", "L", "W%", "APP"}
	pitchingAdvanced   = []string{"IP", "H", "R", "ER", "BB", "SO"}
	pitchingAdditional = []string{"OBA", "WP", "HBP", "BK"}

	fieldingRequired   = []string{"FPCT", "TC", "FLD%"}
	fieldingAdditional = []string{"PO", "A", "E", "DP"}

	baserunningRequired = []string{"SB", "CS", "SBA"}

	battingRequired   = []string{"AVG", "AB", "H", "R", "RBI"}
	battingAdditional = []string{"2B", "3B", "HR", "BB", "K", "HBP", "SF", "SH", "ROE", "FC", "LOB", "OBP", "SLG", "OPS"}
)

type rule struct {
	category Category
	match    func(headerSet) bool
}

// rules are evaluated in order and the first match wins. Pitching comes first
// because its summary tables share H, R and BB with batting.
var rules = []rule{
	{Pitching, func(s headerSet) bool {
		return s.count(pitchingBasic...) >= 3 ||
			s.count(pitchingAdvanced...) >= 3 ||
			s.count(pitchingAdditional...) >= 2
	}},
	{Fielding, func(s headerSet) bool {
		return s.has(fieldingRequired...) && s.has(fieldingAdditional...)
	}},
	{Baserunning, func(s headerSet) bool {
		return s.has(baserunningRequired...)
	}},
	{Batting, func(s headerSet) bool {
		return s.count(battingRequired...) >= 2 || s.count(battingAdditional...) >= 2
	}},
}

// Classify decides a table's category from its headers, raw or normalized.
// It returns Unclassified when no rule matches.
func Classify(headers []string) Category {
	set := newHeaderSet(headers)
	if len(set) == 0 {
		return Unclassified
	}
	for _, r := range rules {
		if r.match(set) {
			return r.category
		}
	}
	return Unclassified
}

// Report summarizes the classification of one team's tables
type Report struct {
	Found      int              `json:"found"`
	Classified int              `json:"classified"`
	ByCategory map[Category]int `json:"by_category"`
}

// ClassifyTables classifies every table exactly once and groups the normalized
// tables by category. Unclassified tables are dropped and only counted.
func ClassifyTables(tables []RawTable) (map[Category][]RawTable, Report) {
	groups := make(map[Category][]RawTable)
	report := Report{
		Found:      len(tables),
		ByCategory: make(map[Category]int),
	}

	for _, t := range tables {
		normalized := NormalizeTable(t)
		category := Classify(normalized.Header)
		if category == Unclassified {
			continue
		}
		groups[category] = append(groups[category], normalized)
		report.Classified++
		report.ByCategory[category]++
	}

	return groups, report
}

// PitchingKind names which pitching sub-table the headers describe:
// "basic", "advanced", "additional", or "" when none fully matches.
func PitchingKind(headers []string) string {
	set := newHeaderSet(headers)
	switch {
	case set.count(pitchingBasic...) == len(pitchingBasic):
		return "basic"
	case set.count(pitchingAdvanced...) == len(pitchingAdvanced):
		return "advanced"
	case set.count(pitchingAdditional...) == len(pitchingAdditional):
		return "additional"
	}
	return ""
}

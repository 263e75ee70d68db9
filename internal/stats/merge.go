package stats

import (
	"cmp"
	"slices"
	"strings"
)

// TeamInfo identifies the team whose tables are merged. It is stamped verbatim
// onto every merged row.
type TeamInfo struct {
	Name      string
	CityState string
	StatsURL  string
}

// MergedTable is one category's tables for one team, joined into a single
// row-per-athlete table. Every row has len(Columns) cells.
type MergedTable struct {
	Category Category
	Columns  []string
	Rows     [][]string
}

// MergeByCategory merges each category group. Categories with no tables are absent
// from the result.
func MergeByCategory(groups map[Category][]RawTable, team TeamInfo) map[Category]*MergedTable {
	merged := make(map[Category]*MergedTable)
	for _, category := range Categories() {
		if m := Merge(category, groups[category], team); m != nil {
			merged[category] = m
		}
	}
	return merged
}

// Merge outer-joins tables on (#, athlete name) and appends the team columns.
// The first table is the base; later tables contribute only their non-key
// columns. When any table was joined, rows are ordered by key. It returns nil
// for an empty input.
func Merge(category Category, tables []RawTable, team TeamInfo) *MergedTable {
	if len(tables) == 0 {
		return nil
	}

	m := newMerger(withKeyColumns(NormalizeTable(tables[0])))
	for _, t := range tables[1:] {
		m.join(NormalizeTable(t))
	}
	if m.joined {
		m.sortByKey()
	}

	m.set(TeamColumn, team.Name)
	m.set(CityStateColumn, team.CityState)
	m.set(StatsURLColumn, team.StatsURL)

	return &MergedTable{
		Category: category,
		Columns:  m.columns,
		Rows:     m.rows,
	}
}

type joinKey struct {
	number string
	name   string
}

func keyOf(row []string, numIdx, nameIdx int) joinKey {
	var k joinKey
	if numIdx >= 0 && numIdx < len(row) {
		k.number = strings.TrimSpace(row[numIdx])
	}
	if nameIdx >= 0 && nameIdx < len(row) {
		k.name = strings.TrimSpace(row[nameIdx])
	}
	return k
}

type merger struct {
	columns []string
	index   map[string]int
	rows    [][]string
	keys    map[joinKey]int // first row holding each key
	nameCol string
	joined  bool
}

// withKeyColumns prepends empty # and athlete-name columns when the table lacks
// them, so joined rows always have somewhere to carry their key.
func withKeyColumns(t RawTable) RawTable {
	var prefix []string
	if numberColumn(t.Header) < 0 {
		prefix = append(prefix, NumberColumn)
	}
	if nameColumn(t.Header) < 0 {
		prefix = append(prefix, AthleteColumn)
	}
	if len(prefix) == 0 {
		return t
	}

	out := RawTable{
		Header: append(append([]string{}, prefix...), t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append(make([]string, len(prefix)), row...)
	}
	return out
}

func newMerger(base RawTable) *merger {
	m := &merger{
		index: make(map[string]int),
		keys:  make(map[joinKey]int),
	}
	for _, h := range base.Header {
		m.addColumn(h)
	}
	m.nameCol = base.Header[nameColumn(base.Header)]

	numIdx, nameIdx := numberColumn(base.Header), nameColumn(base.Header)
	for _, row := range base.Rows {
		k := keyOf(row, numIdx, nameIdx)
		if _, ok := m.keys[k]; !ok {
			m.keys[k] = len(m.rows)
		}
		m.rows = append(m.rows, append([]string(nil), row...))
	}
	return m
}

func (m *merger) addColumn(name string) {
	if _, ok := m.index[name]; ok {
		return
	}
	m.index[name] = len(m.columns)
	m.columns = append(m.columns, name)
	for i := range m.rows {
		m.rows[i] = append(m.rows[i], "")
	}
}

func (m *merger) appendRow(k joinKey) int {
	row := make([]string, len(m.columns))
	row[m.index[NumberColumn]] = k.number
	row[m.index[m.nameCol]] = k.name
	m.rows = append(m.rows, row)
	return len(m.rows) - 1
}

// join outer-joins t into the accumulated rows. Columns already present are
// filled where still empty rather than duplicated.
func (m *merger) join(t RawTable) {
	numIdx, nameIdx := numberColumn(t.Header), nameColumn(t.Header)

	var valueCols []int
	for i := range t.Header {
		if i == numIdx || i == nameIdx {
			continue
		}
		valueCols = append(valueCols, i)
	}
	if len(valueCols) == 0 {
		return
	}
	for _, i := range valueCols {
		m.addColumn(t.Header[i])
	}
	m.joined = true

	matched := make(map[int]bool)
	for _, row := range t.Rows {
		k := keyOf(row, numIdx, nameIdx)
		target, ok := m.keys[k]
		if !ok || matched[target] {
			target = m.appendRow(k)
			if !ok {
				m.keys[k] = target
			}
		}
		matched[target] = true

		for _, i := range valueCols {
			col := m.index[t.Header[i]]
			if m.rows[target][col] == "" && i < len(row) {
				m.rows[target][col] = row[i]
			}
		}
	}
}

// sortByKey orders rows by (#, athlete name) as plain strings, the way an outer
// join keyed on those columns lays out its result. Rows with equal keys keep
// their order. The keys index is stale afterwards.
func (m *merger) sortByKey() {
	numIdx, nameIdx := m.index[NumberColumn], m.index[m.nameCol]
	slices.SortStableFunc(m.rows, func(a, b []string) int {
		if c := cmp.Compare(a[numIdx], b[numIdx]); c != 0 {
			return c
		}
		return cmp.Compare(a[nameIdx], b[nameIdx])
	})
}

// set writes value into column name on every row, adding the column if needed
func (m *merger) set(name, value string) {
	m.addColumn(name)
	col := m.index[name]
	for _, row := range m.rows {
		row[col] = value
	}
}

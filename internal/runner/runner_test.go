package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/pfrederiksen/maxpreps-stats/internal/logger"
	"github.com/pfrederiksen/maxpreps-stats/internal/scraper"
	"github.com/pfrederiksen/maxpreps-stats/internal/stats"
	"github.com/pfrederiksen/maxpreps-stats/internal/storage"
	"github.com/pfrederiksen/maxpreps-stats/internal/team"
)

// htmlTable renders a header and body rows as an HTML table
func htmlTable(header []string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<table><tr>")
	for _, h := range header {
		fmt.Fprintf(&b, "<th>%s</th>", h)
	}
	b.WriteString("</tr>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, c := range row {
			fmt.Fprintf(&b, "<td>%s</td>", c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func page(tables ...string) string {
	return "<html><body>" + strings.Join(tables, "\n") + "</body></html>"
}

// fullPage has seven tables: two batting, one baserunning, one fielding, two
// pitching, and a schedule table that matches no category.
func fullPage() string {
	return page(
		htmlTable([]string{"#", "Athlete Name", "GP", "Batting Avg", "AB", "R", "H", "RBI"},
			[]string{"1", "Alice Smith", "10", ".300", "30", "5", "9", "4"},
			[]string{"2", "Bob Jones", "9", ".250", "24", "3", "6", "2"},
			[]string{"", "Team Totals", "10", ".280", "54", "8", "15", "6"},
		),
		htmlTable([]string{"#", "Athlete Name", "2B", "3B", "HR"},
			[]string{"1", "Alice Smith", "2", "0", "1"},
			[]string{"3", "Cara Lee", "1", "1", "0"},
		),
		htmlTable([]string{"#", "Athlete Name", "SB", "CS"},
			[]string{"1", "Alice Smith", "4", "1"},
		),
		htmlTable([]string{"#", "Athlete Name", "FPCT", "PO", "A", "E"},
			[]string{"2", "Bob Jones", ".950", "12", "7", "1"},
		),
		htmlTable([]string{"#", "Athlete Name", "ERA", "W", "L", "W%", "APP"},
			[]string{"7", "Dana Cruz", "2.10", "3", "1", ".750", "6"},
			[]string{"", "2024 Season", "2.10", "3", "1", ".750", "6"},
		),
		htmlTable([]string{"#", "Athlete Name", "IP", "H", "R", "ER", "BB", "SO"},
			[]string{"7", "Dana Cruz", "30.0", "20", "10", "7", "8", "35"},
		),
		htmlTable([]string{"Date", "Opponent", "Result"},
			[]string{"3/21", "Dover", "W 5-2"},
		),
	)
}

type fakeFetcher struct {
	printURLs  map[string]string
	pages      map[string]string
	resolveErr error
	fetchErr   error
	panicOn    string
}

func (f *fakeFetcher) ResolvePrintURL(_ context.Context, teamURL string) (string, error) {
	if teamURL == f.panicOn {
		panic("unexpected markup")
	}
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	u, ok := f.printURLs[teamURL]
	if !ok {
		return "", scraper.ErrNoPrintURL
	}
	return u, nil
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) (string, error) {
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	p, ok := f.pages[url]
	if !ok {
		return "", &scraper.StatusError{URL: url, Code: http.StatusNotFound}
	}
	return p, nil
}

type fakeSink struct {
	appended  map[stats.Category][]*stats.MergedTable
	saved     []string
	resets    []string
	appendErr error
	failOn    stats.Category // when set, appendErr applies to this category only
	saveErr   error
}

func newFakeSink() *fakeSink {
	return &fakeSink{appended: make(map[stats.Category][]*stats.MergedTable)}
}

func (s *fakeSink) ResetState(state string) error {
	s.resets = append(s.resets, state)
	return nil
}

func (s *fakeSink) AppendCategory(state string, table *stats.MergedTable) (storage.AppendResult, error) {
	if s.appendErr != nil && (s.failOn == stats.Unclassified || s.failOn == table.Category) {
		return storage.AppendResult{}, s.appendErr
	}
	s.appended[table.Category] = append(s.appended[table.Category], table)
	return storage.AppendResult{Path: state + "_" + string(table.Category), Rows: len(table.Rows)}, nil
}

func (s *fakeSink) SaveHTML(state, name, _ string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, state+"/"+name)
	return name, nil
}

type fakeRecorder struct {
	failures []storage.Failure
}

func (r *fakeRecorder) Record(f storage.Failure) error {
	r.failures = append(r.failures, f)
	return nil
}

var riders = team.Team{
	School:    "Caesar Rodney Riders",
	CityState: "Camden, DE",
	StatsURL:  "https://www.maxpreps.com/de/camden/caesar-rodney-riders/baseball/stats/",
	Abbr:      "de",
}

const ridersPrint = "https://www.maxpreps.com/print/team_stats.aspx?schoolid=riders"

func newRunContext(rec FailureRecorder) RunContext {
	return RunContext{State: "de", MinTables: 7, Failures: rec}
}

func TestProcessTeam_FullPage(t *testing.T) {
	fetcher := &fakeFetcher{
		printURLs: map[string]string{riders.StatsURL: ridersPrint},
		pages:     map[string]string{ridersPrint: fullPage()},
	}
	sink := newFakeSink()
	rec := &fakeRecorder{}
	metrics := logger.NewMetrics()

	result := New(fetcher, sink, metrics).ProcessTeam(context.Background(), newRunContext(rec), riders)

	if result.Failure != nil {
		t.Fatalf("ProcessTeam() failure = %+v, want none", result.Failure)
	}
	if len(rec.failures) != 0 {
		t.Errorf("recorded %d failures, want 0", len(rec.failures))
	}
	if result.TablesFound != 7 {
		t.Errorf("TablesFound = %d, want 7", result.TablesFound)
	}
	if result.Report.Found != 7 || result.Report.Classified != 6 {
		t.Errorf("Report = %+v, want 7 found, 6 classified", result.Report)
	}

	wantRows := map[stats.Category]int{
		stats.Batting:     3, // Alice, Bob, Cara after outer join
		stats.Baserunning: 1,
		stats.Fielding:    1,
		stats.Pitching:    1,
	}
	for c, want := range wantRows {
		if result.Rows[c] != want {
			t.Errorf("Rows[%s] = %d, want %d", c, result.Rows[c], want)
		}
		if len(sink.appended[c]) != 1 {
			t.Errorf("appended %d %s tables, want 1", len(sink.appended[c]), c)
		}
	}

	batting := sink.appended[stats.Batting][0]
	for i, row := range batting.Rows {
		if row[len(row)-3] != riders.School || row[len(row)-2] != riders.CityState || row[len(row)-1] != riders.StatsURL {
			t.Errorf("batting row %d missing team columns: %v", i, row)
		}
		if strings.Contains(strings.ToLower(row[1]), "totals") {
			t.Errorf("batting row %d is a summary row: %v", i, row)
		}
	}

	if len(sink.saved) != 1 || sink.saved[0] != "de/Caesar_Rodney_Riders" {
		t.Errorf("saved pages = %v, want de/Caesar_Rodney_Riders", sink.saved)
	}
	if metrics.Counter("teams.processed") != 1 {
		t.Errorf("teams.processed = %d, want 1", metrics.Counter("teams.processed"))
	}
	if metrics.Counter("rows.batting") != 3 {
		t.Errorf("rows.batting = %d, want 3", metrics.Counter("rows.batting"))
	}
}

func TestProcessTeam_Failures(t *testing.T) {
	fiveTables := page(
		htmlTable([]string{"#", "Athlete Name", "AVG", "AB"}, []string{"1", "A", ".1", "1"}),
		htmlTable([]string{"#", "Athlete Name", "SB"}, []string{"1", "A", "1"}),
		htmlTable([]string{"x"}), htmlTable([]string{"y"}), htmlTable([]string{"z"}),
	)

	tests := []struct {
		name       string
		fetcher    *fakeFetcher
		sink       *fakeSink
		wantReason string
		wantPrefix bool
		wantTables int
	}{
		{
			name:       "no print url",
			fetcher:    &fakeFetcher{},
			wantReason: storage.ReasonNoPrintURL,
		},
		{
			name:       "team page fetch error counts as no print url",
			fetcher:    &fakeFetcher{resolveErr: &scraper.StatusError{Code: http.StatusBadGateway}},
			wantReason: storage.ReasonNoPrintURL,
		},
		{
			name: "print page 404",
			fetcher: &fakeFetcher{
				printURLs: map[string]string{riders.StatsURL: ridersPrint},
			},
			wantReason: storage.ReasonNotFound,
		},
		{
			name: "print page server error",
			fetcher: &fakeFetcher{
				printURLs: map[string]string{riders.StatsURL: ridersPrint},
				fetchErr:  &scraper.StatusError{URL: ridersPrint, Code: http.StatusInternalServerError},
			},
			wantReason: "Error: unexpected status code 500",
			wantPrefix: true,
		},
		{
			name: "no tables",
			fetcher: &fakeFetcher{
				printURLs: map[string]string{riders.StatsURL: ridersPrint},
				pages:     map[string]string{ridersPrint: page()},
			},
			wantReason: storage.ReasonNoTables,
		},
		{
			name: "insufficient tables",
			fetcher: &fakeFetcher{
				printURLs: map[string]string{riders.StatsURL: ridersPrint},
				pages:     map[string]string{ridersPrint: fiveTables},
			},
			wantReason: storage.ReasonInsufficientTables,
			wantTables: 5,
		},
		{
			name: "dataset write error",
			fetcher: &fakeFetcher{
				printURLs: map[string]string{riders.StatsURL: ridersPrint},
				pages:     map[string]string{ridersPrint: fullPage()},
			},
			sink:       &fakeSink{appendErr: errors.New("disk full")},
			wantReason: "Error: saving batting stats: disk full",
		},
		{
			name:       "panic is contained",
			fetcher:    &fakeFetcher{panicOn: riders.StatsURL},
			wantReason: "Error: panic: unexpected markup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := tt.sink
			if sink == nil {
				sink = newFakeSink()
			}
			rec := &fakeRecorder{}
			metrics := logger.NewMetrics()

			result := New(tt.fetcher, sink, metrics).ProcessTeam(context.Background(), newRunContext(rec), riders)

			if result.Failure == nil {
				t.Fatal("ProcessTeam() expected failure, got none")
			}
			if len(rec.failures) != 1 {
				t.Fatalf("recorded %d failures, want exactly 1", len(rec.failures))
			}

			got := rec.failures[0]
			if tt.wantPrefix {
				if !strings.HasPrefix(got.Reason, tt.wantReason) {
					t.Errorf("Reason = %q, want prefix %q", got.Reason, tt.wantReason)
				}
			} else if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.TablesFound != tt.wantTables {
				t.Errorf("TablesFound = %d, want %d", got.TablesFound, tt.wantTables)
			}
			if got.TeamName != riders.School || got.StatsURL != riders.StatsURL {
				t.Errorf("failure identity = %q %q, want team name and stats URL", got.TeamName, got.StatsURL)
			}
			if len(sink.appended) != 0 || len(result.Rows) != 0 {
				t.Errorf("failed team produced output: appended=%v rows=%v", sink.appended, result.Rows)
			}
			if metrics.Counter("teams.skipped") != 1 {
				t.Errorf("teams.skipped = %d, want 1", metrics.Counter("teams.skipped"))
			}
		})
	}
}

func TestProcessTeam_BadTableIsDropped(t *testing.T) {
	p := page(
		htmlTable([]string{"#", "Athlete Name", "AVG", "AB"}, []string{"1", "Alice", ".300", "10"}),
		htmlTable([]string{"#", "Athlete Name", "SB"}, []string{"1", "Alice", "2", "extra"}),
		htmlTable([]string{"x"}), htmlTable([]string{"y"}), htmlTable([]string{"z"}),
		htmlTable([]string{"w"}), htmlTable([]string{"v"}),
	)
	fetcher := &fakeFetcher{
		printURLs: map[string]string{riders.StatsURL: ridersPrint},
		pages:     map[string]string{ridersPrint: p},
	}
	sink := newFakeSink()
	metrics := logger.NewMetrics()

	result := New(fetcher, sink, metrics).ProcessTeam(context.Background(), newRunContext(&fakeRecorder{}), riders)

	if result.Failure != nil {
		t.Fatalf("ProcessTeam() failure = %+v, want none", result.Failure)
	}
	if result.Rows[stats.Batting] != 1 {
		t.Errorf("Rows[batting] = %d, want 1", result.Rows[stats.Batting])
	}
	if _, ok := result.Rows[stats.Baserunning]; ok {
		t.Error("ragged baserunning table should be dropped")
	}
	if metrics.Counter("tables.dropped") != 1 {
		t.Errorf("tables.dropped = %d, want 1", metrics.Counter("tables.dropped"))
	}
}

func TestProcessTeam_ArchiveErrorIsNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{
		printURLs: map[string]string{riders.StatsURL: ridersPrint},
		pages:     map[string]string{ridersPrint: fullPage()},
	}
	sink := newFakeSink()
	sink.saveErr = errors.New("read-only")

	result := New(fetcher, sink, logger.NewMetrics()).ProcessTeam(context.Background(), newRunContext(&fakeRecorder{}), riders)

	if result.Failure != nil {
		t.Errorf("ProcessTeam() failure = %+v, want none", result.Failure)
	}
}

func TestProcessTeam_PartialWriteKeepsRows(t *testing.T) {
	fetcher := &fakeFetcher{
		printURLs: map[string]string{riders.StatsURL: ridersPrint},
		pages:     map[string]string{ridersPrint: fullPage()},
	}
	sink := newFakeSink()
	sink.appendErr = errors.New("disk full")
	sink.failOn = stats.Pitching
	rec := &fakeRecorder{}

	result := New(fetcher, sink, logger.NewMetrics()).ProcessTeam(context.Background(), newRunContext(rec), riders)

	if result.Failure == nil || result.Failure.Reason != "Error: saving pitching stats: disk full" {
		t.Fatalf("Failure = %+v, want pitching write error", result.Failure)
	}
	if len(rec.failures) != 1 {
		t.Errorf("recorded %d failures, want 1", len(rec.failures))
	}

	want := map[stats.Category]int{stats.Batting: 3, stats.Baserunning: 1, stats.Fielding: 1}
	if len(result.Rows) != len(want) {
		t.Errorf("Rows = %v, want %v", result.Rows, want)
	}
	for c, n := range want {
		if result.Rows[c] != n {
			t.Errorf("Rows[%s] = %d, want %d", c, result.Rows[c], n)
		}
	}
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/maxpreps-stats/internal/logger"
	"github.com/pfrederiksen/maxpreps-stats/internal/scraper"
	"github.com/pfrederiksen/maxpreps-stats/internal/stats"
	"github.com/pfrederiksen/maxpreps-stats/internal/storage"
	"github.com/pfrederiksen/maxpreps-stats/internal/team"
)

// ErrNoTeams is returned by RunState when the state has no teams
var ErrNoTeams = errors.New("no teams found for state")

// Fetcher retrieves team pages
type Fetcher interface {
	ResolvePrintURL(ctx context.Context, teamURL string) (string, error)
	FetchPage(ctx context.Context, url string) (string, error)
}

// Sink receives a run's output
type Sink interface {
	ResetState(state string) error
	AppendCategory(state string, table *stats.MergedTable) (storage.AppendResult, error)
	SaveHTML(state, name, page string) (string, error)
}

// FailureRecorder receives one record per team that produced no output
type FailureRecorder interface {
	Record(f storage.Failure) error
}

// RunContext carries the per-run settings into every team call
type RunContext struct {
	State     string
	MinTables int
	TeamDelay time.Duration
	Failures  FailureRecorder
}

// TeamResult is the outcome of processing one team
type TeamResult struct {
	Team        team.Team              `json:"team"`
	PrintURL    string                 `json:"print_url,omitempty"`
	TablesFound int                    `json:"tables_found"`
	Report      stats.Report           `json:"report"`
	Rows        map[stats.Category]int `json:"rows,omitempty"` // rows on disk, kept on failure
	Failure     *storage.Failure       `json:"failure,omitempty"`
	Duration    time.Duration          `json:"duration"`
}

// Processor processes teams
type Processor struct {
	fetcher Fetcher
	sink    Sink
	metrics *logger.Metrics
}

// New creates a Processor. A nil metrics uses the logger's default tracker.
func New(fetcher Fetcher, sink Sink, metrics *logger.Metrics) *Processor {
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	return &Processor{
		fetcher: fetcher,
		sink:    sink,
		metrics: metrics,
	}
}

// teamError is a failure with a fixed diagnostic reason
type teamError struct {
	reason string
	tables int
	err    error
}

func (e *teamError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.reason, e.err)
	}
	return e.reason
}

func (e *teamError) Unwrap() error {
	return e.err
}

// ProcessTeam runs one team through the pipeline. It never returns an error:
// failures, including panics, end up in result.Failure and the failure log.
func (p *Processor) ProcessTeam(ctx context.Context, rc RunContext, t team.Team) (result TeamResult) {
	start := time.Now()
	result = TeamResult{Team: t, Rows: make(map[stats.Category]int)}

	defer func() {
		if r := recover(); r != nil {
			p.fail(rc, &result, fmt.Errorf("panic: %v", r))
		}
		result.Duration = time.Since(start)
		p.metrics.RecordTiming("team.process", result.Duration)
	}()

	logger.Info("Processing team", logger.Fields{"team": t.School, "state": rc.State})

	if err := p.process(ctx, rc, t, &result); err != nil {
		p.fail(rc, &result, err)
		return result
	}

	p.metrics.IncrCounter("teams.processed")
	logger.Info("Completed team", logger.Fields{
		"team":       t.School,
		"found":      result.Report.Found,
		"classified": result.Report.Classified,
	})
	return result
}

func (p *Processor) process(ctx context.Context, rc RunContext, t team.Team, result *TeamResult) error {
	printURL, err := p.fetcher.ResolvePrintURL(ctx, t.StatsURL)
	if err != nil {
		return &teamError{reason: storage.ReasonNoPrintURL, err: err}
	}
	result.PrintURL = printURL

	page, err := p.fetcher.FetchPage(ctx, printURL)
	if err != nil {
		if scraper.IsNotFound(err) {
			return &teamError{reason: storage.ReasonNotFound, err: err}
		}
		return err
	}

	if path, err := p.sink.SaveHTML(rc.State, t.FileName(), page); err != nil {
		logger.Warn("Could not archive team page", logger.Fields{"team": t.School, "error": err.Error()})
	} else {
		logger.Debug("Saved team page", logger.Fields{"team": t.School, "path": path})
	}

	doc, err := scraper.ParseDocument(page)
	if err != nil {
		return err
	}

	result.TablesFound = scraper.CountTables(doc)
	p.metrics.AddCounter("tables.found", int64(result.TablesFound))
	if result.TablesFound == 0 {
		return &teamError{reason: storage.ReasonNoTables}
	}
	if result.TablesFound < rc.MinTables {
		return &teamError{reason: storage.ReasonInsufficientTables, tables: result.TablesFound}
	}

	tables, errs := scraper.ParseTables(doc)
	for _, err := range errs {
		p.metrics.IncrCounter("tables.dropped")
		logger.Warn("Dropped table", logger.Fields{"team": t.School, "error": err.Error()})
	}

	groups, report := stats.ClassifyTables(tables)
	result.Report = report
	p.metrics.AddCounter("tables.classified", int64(report.Classified))
	logger.Info("Classified tables", logger.Fields{
		"team":        t.School,
		"found":       result.TablesFound,
		"extracted":   report.Found,
		"classified":  report.Classified,
		"by_category": report.ByCategory,
	})

	merged := stats.MergeByCategory(groups, t.Info())
	for _, c := range stats.Categories() {
		table, ok := merged[c]
		if !ok {
			continue
		}
		res, err := p.sink.AppendCategory(rc.State, table)
		if err != nil {
			return fmt.Errorf("saving %s stats: %w", c, err)
		}
		if res.SchemaChanged {
			logger.Warn("Dataset columns differ from existing header", logger.Fields{
				"team": t.School,
				"path": res.Path,
			})
		}
		result.Rows[c] = res.Rows
		p.metrics.AddCounter("rows."+string(c), int64(res.Rows))
		logger.Info("Saved rows", logger.Fields{"team": t.School, "rows": res.Rows, "path": res.Path})
	}

	return nil
}

// fail turns err into the team's diagnostic record
func (p *Processor) fail(rc RunContext, result *TeamResult, err error) {
	failure := storage.Failure{
		TeamName: result.Team.School,
		StatsURL: result.Team.StatsURL,
	}

	var te *teamError
	if errors.As(err, &te) {
		failure.Reason = te.reason
		failure.TablesFound = te.tables
	} else {
		failure.Reason = "Error: " + err.Error()
	}

	result.Failure = &failure
	p.metrics.IncrCounter("teams.skipped")

	if len(result.Rows) > 0 {
		logger.Warn("Team skipped after partial write", logger.Fields{
			"team": failure.TeamName,
			"rows": result.Rows,
		})
	}

	logger.Error("Skipped team", logger.Fields{
		"team":         failure.TeamName,
		"reason":       failure.Reason,
		"tables_found": failure.TablesFound,
	}, err)

	if rc.Failures == nil {
		return
	}
	if recErr := rc.Failures.Record(failure); recErr != nil {
		logger.Error("Could not write failure log", logger.Fields{"team": failure.TeamName}, recErr)
	}
}

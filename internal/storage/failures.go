package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Failure reasons
const (
	ReasonNoPrintURL         = "No print URL found"
	ReasonNotFound           = "404 Error"
	ReasonNoTables           = "No tables found"
	ReasonInsufficientTables = "Insufficient tables"
)

var failureHeader = []string{"team_name", "stats_url", "reason", "tables_found"}

// Failure records why a team produced no output
type Failure struct {
	TeamName    string `json:"team_name"`
	StatsURL    string `json:"stats_url"`
	Reason      string `json:"reason"`
	TablesFound int    `json:"tables_found"`
}

// FailureLog is a per-run CSV of teams without stats
type FailureLog struct {
	path string
	f    *os.File
	w    *csv.Writer
}

// FailureLogPath returns the failure log file for a state
func (s *Storage) FailureLogPath(state string) string {
	return filepath.Join(s.failureDir, fmt.Sprintf("%s_teams_without_stats.csv", strings.ToLower(state)))
}

// OpenFailureLog truncates the state's failure log and writes its header
func (s *Storage) OpenFailureLog(state string) (*FailureLog, error) {
	path := s.FailureLogPath(state)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating failure log: %w", err)
	}

	log := &FailureLog{path: path, f: f, w: csv.NewWriter(f)}
	if err := log.write(failureHeader); err != nil {
		f.Close()
		return nil, err
	}
	return log, nil
}

// Path returns the log's file path
func (l *FailureLog) Path() string {
	return l.path
}

// Record appends one failure and flushes it to disk
func (l *FailureLog) Record(f Failure) error {
	return l.write([]string{f.TeamName, f.StatsURL, f.Reason, strconv.Itoa(f.TablesFound)})
}

func (l *FailureLog) write(record []string) error {
	if err := l.w.Write(record); err != nil {
		return fmt.Errorf("writing failure log: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("flushing failure log: %w", err)
	}
	return nil
}

// Close closes the log file
func (l *FailureLog) Close() error {
	return l.f.Close()
}

// ReadFailures loads a failure log written by FailureLog
func ReadFailures(path string) ([]Failure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening failure log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading failure log header: %w", err)
	}

	var failures []Failure
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading failure log: %w", err)
		}
		count, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("parsing tables_found %q: %w", record[3], err)
		}
		failures = append(failures, Failure{
			TeamName:    record[0],
			StatsURL:    record[1],
			Reason:      record[2],
			TablesFound: count,
		})
	}
	return failures, nil
}

package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pfrederiksen/maxpreps-stats/internal/stats"
)

// Storage handles the on-disk layout of a run
type Storage struct {
	outputDir  string
	teamsDir   string
	failureDir string
}

// New creates the output, category, and archive directories. A leading ~/ in any
// directory is expanded to the user's home.
func New(outputDir, teamsDir, failureDir string) (*Storage, error) {
	var err error
	if outputDir, err = expandHome(outputDir); err != nil {
		return nil, err
	}
	if teamsDir, err = expandHome(teamsDir); err != nil {
		return nil, err
	}
	if failureDir, err = expandHome(failureDir); err != nil {
		return nil, err
	}

	dirs := []string{teamsDir, failureDir}
	for _, c := range stats.Categories() {
		dirs = append(dirs, filepath.Join(outputDir, string(c)))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	return &Storage{
		outputDir:  outputDir,
		teamsDir:   teamsDir,
		failureDir: failureDir,
	}, nil
}

func expandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}

// OutputDir returns the root of the category datasets
func (s *Storage) OutputDir() string {
	return s.outputDir
}

// CategoryPath returns the dataset file for a state and category
func (s *Storage) CategoryPath(state string, category stats.Category) string {
	state = strings.ToLower(state)
	return filepath.Join(s.outputDir, string(category), fmt.Sprintf("%s_%s_stats.csv", state, category))
}

// ResetState removes the state's category datasets so a run starts clean
func (s *Storage) ResetState(state string) error {
	for _, c := range stats.Categories() {
		path := s.CategoryPath(state, c)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// AppendResult describes one append to a category dataset
type AppendResult struct {
	Path          string
	Rows          int
	HeaderWritten bool
	// SchemaChanged is set when the dataset already had a header that differs
	// from the appended table's columns. The rows are still appended as-is.
	SchemaChanged bool
}

// AppendCategory appends a merged table to its state dataset. The header is
// written only when the file is new.
func (s *Storage) AppendCategory(state string, table *stats.MergedTable) (AppendResult, error) {
	path := s.CategoryPath(state, table.Category)
	result := AppendResult{Path: path, Rows: len(table.Rows)}

	existing, err := readHeader(path)
	if err != nil {
		return result, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return result, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if existing == nil {
		if err := w.Write(table.Columns); err != nil {
			return result, fmt.Errorf("writing header: %w", err)
		}
		result.HeaderWritten = true
	} else if !slices.Equal(existing, table.Columns) {
		result.SchemaChanged = true
	}

	if err := w.WriteAll(table.Rows); err != nil {
		return result, fmt.Errorf("writing rows: %w", err)
	}

	return result, nil
}

// readHeader returns the first record of a CSV file, or nil if the file does
// not exist or is empty.
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}
	return header, nil
}

// SaveHTML archives a fetched page as teams/<STATE>/<name>.html
func (s *Storage) SaveHTML(state, name, page string) (string, error) {
	dir := filepath.Join(s.teamsDir, strings.ToUpper(state))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating team archive directory: %w", err)
	}

	path := filepath.Join(dir, name+".html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return "", fmt.Errorf("writing team page: %w", err)
	}
	return path, nil
}

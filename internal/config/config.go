// Package config loads run settings from an optional json5 file layered over
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/pfrederiksen/maxpreps-stats/internal/logger"
	"github.com/pfrederiksen/maxpreps-stats/internal/scraper"
	"github.com/titanous/json5"
)

// DefaultMinTables is the fewest tables a fully rendered print page carries
const DefaultMinTables = 7

// Config holds the settings of a scraping run
type Config struct {
	BaseURL       string `json:"base_url"`
	LookupFile    string `json:"lookup_file"`
	OutputDir     string `json:"output_dir"`
	TeamsDir      string `json:"teams_dir"`
	FailureLogDir string `json:"failure_log_dir"`

	MinTables int    `json:"min_tables"`
	TeamDelay string `json:"team_delay"`

	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
	Timeout           string  `json:"timeout"`
	UserAgent         string  `json:"user_agent"`

	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"`

	// PrintURLOverrides maps a stats-URL substring to a known print URL
	PrintURLOverrides map[string]string `json:"print_url_overrides"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		BaseURL:           scraper.BaseURL,
		LookupFile:        "maxpreps_varisty_baseball_lu_table",
		OutputDir:         "output",
		TeamsDir:          "teams",
		FailureLogDir:     ".",
		MinTables:         DefaultMinTables,
		TeamDelay:         "1s",
		RequestsPerSecond: 2,
		Burst:             2,
		Timeout:           "10s",
		UserAgent:         scraper.UserAgent,
		LogFile:           "scraper.log",
		LogLevel:          "info",
		PrintURLOverrides: map[string]string{
			"caesar-rodney-riders": "https://www.maxpreps.com/print/team_stats.aspx?admin=0&bygame=0&league=0&print=1&schoolid=a4de46de-cc0c-4f6e-aefb-da009a02b735&ssid=b231ef20-6494-421f-b3a0-9ccbb82d678f",
		},
	}
}

// Load reads a json5 config file and fills unset fields from Default. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("applying config defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings a run cannot use
func (c Config) Validate() error {
	if c.MinTables <= 0 {
		return fmt.Errorf("min_tables must be positive, got %d", c.MinTables)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %v", c.RequestsPerSecond)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("burst must be positive, got %d", c.Burst)
	}
	if d, err := time.ParseDuration(c.TeamDelay); err != nil || d < 0 {
		return fmt.Errorf("invalid team_delay: %q", c.TeamDelay)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// TeamDelayDuration returns the pause between teams. Call Validate first.
func (c Config) TeamDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.TeamDelay)
	return d
}

// TimeoutDuration returns the per-request timeout. Call Validate first.
func (c Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// ScraperOptions returns the HTTP client settings
func (c Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		BaseURL:           c.BaseURL,
		UserAgent:         c.UserAgent,
		Timeout:           c.TimeoutDuration(),
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		PrintURLOverrides: c.PrintURLOverrides,
	}
}

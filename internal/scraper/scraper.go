package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	BaseURL   = "https://www.maxpreps.com"
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	Timeout   = 10 * time.Second

	// PrintPath marks the printable team stats page
	PrintPath = "print/team_stats.aspx"
)

// ErrNoPrintURL is returned when a team page links to no printable stats page
var ErrNoPrintURL = errors.New("no print URL found")

// StatusError is returned for a non-2xx response
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d fetching %s", e.Code, e.URL)
}

// IsNotFound reports whether err is a 404 response
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Options configures a Scraper. Zero fields take the package defaults.
type Options struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	// PrintURLOverrides maps a team-URL substring to a known print URL for teams
	// whose page does not link one.
	PrintURLOverrides map[string]string
}

// Scraper fetches team pages
type Scraper struct {
	client    *resty.Client
	baseURL   string
	overrides map[string]string
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)

	limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Scraper{
		client:    client,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		overrides: opts.PrintURLOverrides,
	}
}

// NormalizeURL makes a site-relative URL absolute. When the site is served
// over https, http URLs are upgraded.
func (s *Scraper) NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		if !strings.HasPrefix(u, "/") {
			u = "/" + u
		}
		u = s.baseURL + u
	}
	if strings.HasPrefix(s.baseURL, "https://") {
		u = strings.Replace(u, "http://", "https://", 1)
	}
	return u
}

// FetchPage downloads url and returns the body. Non-2xx responses return a
// *StatusError.
func (s *Scraper) FetchPage(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}

	if !resp.IsSuccess() {
		return "", &StatusError{URL: url, Code: resp.StatusCode()}
	}

	return resp.String(), nil
}

// ResolvePrintURL finds the printable stats page for a team. Configured
// overrides win; otherwise the team page is scanned for a print link.
func (s *Scraper) ResolvePrintURL(ctx context.Context, teamURL string) (string, error) {
	if u, ok := s.override(teamURL); ok {
		return u, nil
	}

	page, err := s.FetchPage(ctx, s.NormalizeURL(teamURL))
	if err != nil {
		return "", fmt.Errorf("fetching team page: %w", err)
	}

	doc, err := ParseDocument(page)
	if err != nil {
		return "", err
	}

	link, ok := FindPrintLink(doc, s.baseURL)
	if !ok {
		return "", ErrNoPrintURL
	}
	return link, nil
}

// override returns the configured print URL for teamURL, checking substrings in
// sorted order so the choice is stable.
func (s *Scraper) override(teamURL string) (string, bool) {
	if len(s.overrides) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(s.overrides))
	for k := range s.overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k != "" && strings.Contains(teamURL, k) {
			return s.overrides[k], true
		}
	}
	return "", false
}

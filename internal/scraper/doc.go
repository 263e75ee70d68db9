// Package scraper fetches MaxPreps team pages and extracts their stat tables.
//
// The scraper package resolves a team's printable stats page from its public stats
// URL, downloads it through a rate-limited HTTP client, and turns every HTML table
// on the page into a stats.RawTable. Extraction problems are reported per table so
// that one malformed table never costs the rest of the page.
package scraper

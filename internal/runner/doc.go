// Package runner drives a scraping run one team at a time.
//
// For each team the runner resolves and fetches the printable stats page, checks
// that the page rendered the expected number of tables, classifies and merges the
// tables by category, and appends the merged tables to the category datasets.
// Every failure is confined to its team: it is written to the failure log and the
// run moves on to the next team.
package runner

// Package storage lays out a run's output on disk.
//
// Merged category tables are appended to one CSV per state and category
// (output/<category>/<state>_<category>_stats.csv). Teams that produced no output
// are written to a per-state failure log, and each fetched print page is archived
// under teams/<STATE>/ so a run can be re-examined offline.
package storage

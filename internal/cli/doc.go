// Package cli implements the command-line interface for maxpreps-stats.
//
// The cli package provides the Cobra-based CLI. The run command loads the
// config and team lookup, scrapes every team of a state, and prints a run
// summary (text, JSON, or a rendered table). The classify command is an offline
// diagnostic that shows how each table of a saved print page is classified.
package cli

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/maxpreps-stats/internal/storage"
)

// SortOrder represents the available orderings of skipped teams
type SortOrder string

const (
	SortByTeam   SortOrder = "team"
	SortByReason SortOrder = "reason"
)

func parseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortByTeam, SortByReason:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'team' or 'reason')", s)
}

// sortFailures sorts skipped teams in place. The sort is stable so teams with
// equal keys keep their processing order.
func sortFailures(failures []storage.Failure, order SortOrder) {
	switch order {
	case SortByTeam:
		sort.SliceStable(failures, func(i, j int) bool {
			return compareByTeam(failures[i], failures[j])
		})
	case SortByReason:
		sort.SliceStable(failures, func(i, j int) bool {
			if failures[i].Reason != failures[j].Reason {
				return failures[i].Reason < failures[j].Reason
			}
			// If reasons are equal, sort by team
			return compareByTeam(failures[i], failures[j])
		})
	}
}

// compareByTeam orders by team name, case-insensitively
func compareByTeam(i, j storage.Failure) bool {
	return strings.ToLower(i.TeamName) < strings.ToLower(j.TeamName)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

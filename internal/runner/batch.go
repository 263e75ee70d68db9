package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/maxpreps-stats/internal/logger"
	"github.com/pfrederiksen/maxpreps-stats/internal/stats"
	"github.com/pfrederiksen/maxpreps-stats/internal/storage"
	"github.com/pfrederiksen/maxpreps-stats/internal/team"
)

// Summary reports a state run
type Summary struct {
	State     string                 `json:"state"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration"`
	Teams     int                    `json:"teams"`
	Processed int                    `json:"processed"`
	Skipped   int                    `json:"skipped"`
	Rows      map[stats.Category]int `json:"rows"`
	Failures  []storage.Failure      `json:"failures,omitempty"`
}

// RunState clears the state's datasets, even when it has no teams, and processes
// teams one after another, pausing rc.TeamDelay between them. Team failures
// never stop the run; only a cancelled context or a setup error does. Rows a
// failed team already wrote still count toward the summary.
func (p *Processor) RunState(ctx context.Context, rc RunContext, teams []team.Team) (*Summary, error) {
	summary := &Summary{
		State:     rc.State,
		StartedAt: time.Now().UTC(),
		Teams:     len(teams),
		Rows:      make(map[stats.Category]int),
	}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
	}()

	if err := p.sink.ResetState(rc.State); err != nil {
		return summary, fmt.Errorf("resetting datasets: %w", err)
	}

	if len(teams) == 0 {
		return summary, fmt.Errorf("%w: %s", ErrNoTeams, rc.State)
	}

	p.metrics.SetGauge("teams.total", float64(len(teams)))
	logger.Info("Starting run", logger.Fields{"state": rc.State, "teams": len(teams)})

	for i, t := range teams {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := p.ProcessTeam(ctx, rc, t)
		if result.Failure != nil {
			summary.Skipped++
			summary.Failures = append(summary.Failures, *result.Failure)
		} else {
			summary.Processed++
		}
		for c, n := range result.Rows {
			summary.Rows[c] += n
		}

		if i < len(teams)-1 && rc.TeamDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(rc.TeamDelay):
			}
		}
	}

	logger.Info("Completed run", logger.Fields{
		"state":     rc.State,
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
	})
	return summary, nil
}

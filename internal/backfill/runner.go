package backfill

import (
	"context"
	"fmt"

	"github.com/fortuna/footyguess/internal/matches"
)

// Runner copies finished matches from an upstream source into a sink.
type Runner struct {
	source matches.Source
	sink   Sink
}

// NewRunner constructs a runner.
func NewRunner(source matches.Source, sink Sink) *Runner {
	return &Runner{source: source, sink: sink}
}

// Run executes the job spec, reporting progress via the Reporter if provided.
// A league that fails to fetch is reported and skipped; a failed write aborts the run.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (Summary, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if spec.Season == "" {
		spec.Season = matches.DefaultSeason
	}
	if len(spec.Leagues) == 0 {
		spec.Leagues = matches.Leagues
	}

	reporter.OnJobStart(spec)
	summary := Summary{ByLeague: make(map[string]int)}

	total := len(spec.Leagues)
	for idx, league := range spec.Leagues {
		if err := ctx.Err(); err != nil {
			reporter.OnJobError(err)
			return summary, err
		}

		reporter.OnLeagueStart(league, idx, total)

		ms, err := r.source.LeagueMatches(ctx, league, spec.Season)
		if err != nil {
			summary.Failed = append(summary.Failed, league.Name)
			reporter.OnProgress(fmt.Sprintf("⚠️  %s skipped: %v", league.Name, err), idx+1, total)
			continue
		}
		summary.Fetched += len(ms)
		summary.ByLeague[league.Name] = len(ms)

		if spec.DryRun || len(ms) == 0 {
			reporter.OnProgress(fmt.Sprintf("%s: %d finished matches (not written)", league.Name, len(ms)), idx+1, total)
			continue
		}

		saved, err := r.sink.SaveMatches(ctx, spec.Season, r.source.Name(), ms)
		if err != nil {
			err = fmt.Errorf("saving %s: %w", league.Name, err)
			reporter.OnJobError(err)
			return summary, err
		}
		summary.Saved += saved
		reporter.OnProgress(fmt.Sprintf("✓ %s: %d matches saved", league.Name, saved), idx+1, total)
	}

	reporter.OnJobComplete(summary.Saved)
	return summary, nil
}

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec)                     {}
func (nopReporter) OnLeagueStart(matches.League, int, int) {}
func (nopReporter) OnProgress(string, int, int)            {}
func (nopReporter) OnJobComplete(int)                      {}
func (nopReporter) OnJobError(error)                       {}

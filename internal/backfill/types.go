package backfill

import (
	"context"

	"github.com/fortuna/footyguess/internal/matches"
)

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Season  string
	Leagues []matches.League
	DryRun  bool
}

// Sink stores the matches of one season.
type Sink interface {
	SaveMatches(ctx context.Context, season, source string, ms []matches.Match) (int, error)
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnLeagueStart(league matches.League, index int, total int)
	OnProgress(message string, current int, total int)
	OnJobComplete(saved int)
	OnJobError(err error)
}

// Summary is what a finished run did.
type Summary struct {
	Fetched  int            `json:"fetched"`
	Saved    int            `json:"saved"`
	Failed   []string       `json:"failed,omitempty"`
	ByLeague map[string]int `json:"by_league"`
}

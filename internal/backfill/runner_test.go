package backfill

import (
	"context"
	"errors"
	"testing"

	"github.com/fortuna/footyguess/internal/matches"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	byLeague map[string][]matches.Match
	fail     map[string]bool
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) LeagueMatches(ctx context.Context, league matches.League, season string) ([]matches.Match, error) {
	if f.fail[league.Name] {
		return nil, errors.New("upstream down")
	}
	return f.byLeague[league.Name], nil
}

type fakeSink struct {
	saved  map[string]int
	season string
	source string
	err    error
}

func (f *fakeSink) SaveMatches(ctx context.Context, season, source string, ms []matches.Match) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.saved == nil {
		f.saved = map[string]int{}
	}
	f.season, f.source = season, source
	for _, m := range ms {
		f.saved[m.League]++
	}
	return len(ms), nil
}

type recordingReporter struct {
	started   bool
	leagues   []string
	completed int
	errs      []error
}

func (r *recordingReporter) OnJobStart(JobSpec) { r.started = true }
func (r *recordingReporter) OnLeagueStart(l matches.League, _, _ int) {
	r.leagues = append(r.leagues, l.Name)
}
func (r *recordingReporter) OnProgress(string, int, int) {}
func (r *recordingReporter) OnJobComplete(saved int)     { r.completed = saved }
func (r *recordingReporter) OnJobError(err error)        { r.errs = append(r.errs, err) }

func source() *fakeSource {
	return &fakeSource{
		byLeague: map[string][]matches.Match{
			"Premier League": {{ID: "1", League: "Premier League"}, {ID: "2", League: "Premier League"}},
			"Serie A":        {{ID: "3", League: "Serie A"}},
		},
		fail: map[string]bool{"La Liga": true},
	}
}

func TestRunner_Run(t *testing.T) {
	sink := &fakeSink{}
	rep := &recordingReporter{}

	summary, err := NewRunner(source(), sink).Run(context.Background(), JobSpec{}, rep)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 3, summary.Saved)
	assert.Equal(t, []string{"La Liga"}, summary.Failed)
	assert.Equal(t, map[string]int{"Premier League": 2, "Serie A": 1}, sink.saved)
	assert.Equal(t, matches.DefaultSeason, sink.season)
	assert.Equal(t, "fake", sink.source)

	assert.True(t, rep.started)
	assert.Len(t, rep.leagues, len(matches.Leagues))
	assert.Equal(t, 3, rep.completed)
}

func TestRunner_DryRun(t *testing.T) {
	sink := &fakeSink{}
	summary, err := NewRunner(source(), sink).Run(context.Background(), JobSpec{DryRun: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Fetched)
	assert.Zero(t, summary.Saved)
	assert.Nil(t, sink.saved)
}

func TestRunner_SinkFailureAborts(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	rep := &recordingReporter{}

	_, err := NewRunner(source(), sink).Run(context.Background(), JobSpec{}, rep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving Premier League")
	assert.Len(t, rep.errs, 1)
}

func TestRunner_SelectedLeagues(t *testing.T) {
	sa, _ := matches.LeagueByName("Serie A")
	sink := &fakeSink{}
	summary, err := NewRunner(source(), sink).Run(context.Background(), JobSpec{Season: "2023-2024", Leagues: []matches.League{sa}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, "2023-2024", sink.season)
}

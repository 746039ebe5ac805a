package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/footyguess/internal/backfill"
	"github.com/fortuna/footyguess/internal/identity"
	"github.com/fortuna/footyguess/internal/ingest/sportsdb"
	"github.com/fortuna/footyguess/internal/matches"
	"github.com/fortuna/footyguess/internal/metrics"
	"github.com/fortuna/footyguess/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	teams map[string][]sportsdb.Team
}

func (s stubSearcher) SearchTeams(ctx context.Context, term string) ([]sportsdb.Team, error) {
	return s.teams[term], nil
}

type stubLeagueLookup struct{}

func (stubLeagueLookup) LookupLeague(ctx context.Context, id string) ([]sportsdb.League, error) {
	return []sportsdb.League{{ID: id, Badge: "https://badges/league-" + id + ".png"}}, nil
}

type stubRelay struct {
	endpoint string
	params   url.Values
	err      error
}

func (s *stubRelay) Raw(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	s.endpoint, s.params = endpoint, params
	if s.err != nil {
		return nil, s.err
	}
	return []byte(`{"events":[]}`), nil
}

func (s *stubRelay) CompetitionMatchesRaw(ctx context.Context, competition, season string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(`{"matches":[]}`), nil
}

type stubRunner struct{ done chan backfill.JobSpec }

func (s stubRunner) Run(ctx context.Context, spec backfill.JobSpec, reporter backfill.Reporter) (backfill.Summary, error) {
	s.done <- spec
	return backfill.Summary{Saved: 3}, nil
}

type fixture struct {
	server   *Server
	relay    *stubRelay
	resolver *identity.Resolver
	games    *quiz.Store
	runner   stubRunner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)

	catalog := matches.NewCatalog([]matches.Match{
		{ID: "1", League: "Premier League", Flag: "ENG", Date: "2024-08-17",
			Home: matches.Side{ID: "133604", Name: "Arsenal", Badge: "https://b/ars.png", Score: 2},
			Away: matches.Side{ID: "133610", Name: "Chelsea", Score: 1}},
		{ID: "2", League: "Ligue 1", Flag: "🇫🇷", Date: "2024-08-18",
			Home: matches.Side{ID: "133714", Name: "Paris Saint-Germain", Score: 3},
			Away: matches.Side{ID: "133713", Name: "Olympique Lyonnais", Score: 0}},
	})
	library := matches.NewLibrary(catalog)

	m := metrics.New()
	resolver := identity.NewResolver(stubSearcher{teams: map[string][]sportsdb.Team{
		"Chelsea": {{Name: "Chelsea", Badge: "https://badges/chelsea.png", Sport: sportsdb.SportSoccer}},
	}}, identity.Options{Logger: quiet, Metrics: m})
	leagues := identity.NewLeagueResolver(stubLeagueLookup{}, matches.LeagueIDs(), identity.DefaultRetryPolicy(), quiet)
	games := quiz.NewStore(library, 2, m, quiet)

	relay := &stubRelay{}
	runner := stubRunner{done: make(chan backfill.JobSpec, 1)}
	handler := NewHandler(library, resolver, leagues, games)
	handler.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	server := NewServer("0", handler, Options{
		Relay:    NewRelayHandler(relay, relay),
		Backfill: NewBackfillHandler(runner),
		Metrics:  m.Handler(),
	})
	return &fixture{server: server, relay: relay, resolver: resolver, games: games, runner: runner}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 2, body["matches"])
}

func TestLeagues(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/leagues", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body []leagueResponse
	decodeBody(t, rec, &body)
	require.Len(t, body, len(matches.Leagues)+1)
	assert.Equal(t, matches.AllLeagues, body[0].Name)
	assert.Equal(t, 2, body[0].Matches)
	assert.Equal(t, "Premier League", body[1].Name)
	assert.Equal(t, "https://badges/league-4328.png", body[1].Badge)

	rec = f.do(t, http.MethodGet, "/api/v1/leagues/Serie%20A/badge", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "league-4332")

	rec = f.do(t, http.MethodGet, "/api/v1/leagues/Eredivisie/badge", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeagueTeams(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/leagues/Premier%20League/teams", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []struct {
		ID  string       `json:"id"`
		Art identity.Art `json:"art"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body, 2)
	assert.Equal(t, "Arsenal", body[0].Art.Name)
	assert.Equal(t, "https://b/ars.png", body[0].Art.BadgeURL)
	assert.Equal(t, "https://badges/chelsea.png", body[1].Art.BadgeURL)
}

func TestTeamBadgeAndMissing(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/teams/Obscure%20FC%20Town%20FC/badge", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var art identity.Art
	decodeBody(t, rec, &art)
	assert.True(t, art.Placeholder)
	assert.Equal(t, "Obscure FC Town", art.CanonicalName)
	assert.Equal(t, "OFT", art.Initials)

	// a second lookup is answered from the cache and not re-recorded
	f.do(t, http.MethodGet, "/api/v1/teams/Obscure%20FC%20Town/badge", "")

	rec = f.do(t, http.MethodGet, "/api/v1/missing-teams", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var missing struct {
		Count int      `json:"count"`
		Teams []string `json:"teams"`
	}
	decodeBody(t, rec, &missing)
	assert.Equal(t, 1, missing.Count)
	assert.Equal(t, []string{"Obscure FC Town"}, missing.Teams)

	rec = f.do(t, http.MethodGet, "/api/v1/missing-teams/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "missing-teams.txt")
	assert.Contains(t, rec.Body.String(), "Generated: 2025-01-01T00:00:00Z")
	assert.Contains(t, rec.Body.String(), "1. Obscure FC Town")

	rec = f.do(t, http.MethodGet, "/api/v1/teams/Paris%20Saint-Germain/placeholder.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), ">PSG</text>")
}

func TestGameFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/games", `{"league":"Ligue 1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created gameResponse
	decodeBody(t, rec, &created)
	require.NotNil(t, created.Round)
	assert.Equal(t, 1, created.Round.Number)
	assert.Equal(t, 2, created.Round.Of)
	assert.Equal(t, "PSG", created.Round.Home.Initials)
	assert.Equal(t, "https://badges/league-4334.png", created.Round.LeagueBadge)
	assert.Nil(t, created.Current)
	assert.NotContains(t, rec.Body.String(), `"current"`, "the match is withheld until the guess")
	id := created.ID

	rec = f.do(t, http.MethodPost, "/api/v1/games/"+id+"/next", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/games/"+id+"/guess", `{"home":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/games/"+id+"/guess", `{"home":3,"away":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var graded struct {
		Result quiz.Result `json:"result"`
	}
	decodeBody(t, rec, &graded)
	assert.Equal(t, 10, graded.Result.Points)

	rec = f.do(t, http.MethodPost, "/api/v1/games/"+id+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/games/"+id+"/guess", `{"home":0,"away":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summary")

	rec = f.do(t, http.MethodPost, "/api/v1/games/"+id+"/next", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "max_score")

	rec = f.do(t, http.MethodGet, "/api/v1/games/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state gameResponse
	decodeBody(t, rec, &state)
	assert.Equal(t, quiz.PhaseFinished, state.Phase)
	assert.Equal(t, 13, state.Score, "exact score then one side right")

	rec = f.do(t, http.MethodGet, "/api/v1/games/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/games", `{"league":"Bundesliga"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRelay(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/sportsdb?endpoint=eventsseason.php&id=4328&s=2024-2025", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"events":[]}`, rec.Body.String())
	assert.Equal(t, "eventsseason.php", f.relay.endpoint)
	assert.Equal(t, "4328", f.relay.params.Get("id"))
	assert.Empty(t, f.relay.params.Get("endpoint"))

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"missing endpoint", http.MethodGet, "/api/sportsdb", http.StatusBadRequest},
		{"bad endpoint", http.MethodGet, "/api/sportsdb?endpoint=../../etc", http.StatusBadRequest},
		{"post rejected", http.MethodPost, "/api/sportsdb?endpoint=lookupleague.php", http.StatusMethodNotAllowed},
		{"preflight", http.MethodOptions, "/api/sportsdb", http.StatusOK},
		{"football-data ok", http.MethodGet, "/api/football-data?competition=PL&season=2024", http.StatusOK},
		{"football-data missing season", http.MethodGet, "/api/football-data?competition=PL", http.StatusBadRequest},
		{"football-data delete", http.MethodDelete, "/api/football-data", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.target, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	f.relay.err = errors.New("upstream 502")
	rec = f.do(t, http.MethodGet, "/api/sportsdb?endpoint=lookupleague.php&id=4328", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "upstream 502", body["message"])
	assert.NotEmpty(t, body["error"])
}

func TestBackfillEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/backfill", `{"leagues":["Eredivisie"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/backfill", `{"season":"2023-2024","leagues":["Serie A"],"dry_run":true}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case spec := <-f.runner.done:
		assert.Equal(t, "2023-2024", spec.Season)
		assert.True(t, spec.DryRun)
		require.Len(t, spec.Leagues, 1)
	case <-time.After(time.Second):
		t.Fatal("backfill did not run")
	}

	require.Eventually(t, func() bool {
		rec := f.do(t, http.MethodGet, "/api/v1/backfill/status", "")
		return strings.Contains(rec.Body.String(), `"running":false`) && strings.Contains(rec.Body.String(), `"saved":3`)
	}, time.Second, 10*time.Millisecond)
}

func TestMetricsAndPanics(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/v1/teams/Chelsea/badge", "")

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `footyguess_badge_resolutions_total{outcome="resolved"} 1`)

	panicky := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec = httptest.NewRecorder()
	panicky.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

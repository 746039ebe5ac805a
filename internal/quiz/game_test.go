package quiz

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/footyguess/internal/matches"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(n int) *matches.Catalog {
	ms := make([]matches.Match, 0, n)
	for i := 0; i < n; i++ {
		league := "Premier League"
		if i%2 == 1 {
			league = "Serie A"
		}
		ms = append(ms, matches.Match{
			ID:     fmt.Sprintf("m%d", i),
			League: league,
			Home:   matches.Side{ID: fmt.Sprintf("h%d", i), Name: fmt.Sprintf("Home %d", i), Score: 2},
			Away:   matches.Side{ID: fmt.Sprintf("a%d", i), Name: fmt.Sprintf("Away %d", i), Score: 1},
		})
	}
	return matches.NewCatalog(ms)
}

func newTestGame(t *testing.T, catalog *matches.Catalog, cfg Config) *Game {
	t.Helper()
	g, err := NewGame(catalog, cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return g
}

func TestGame_Flow(t *testing.T) {
	g := newTestGame(t, testCatalog(20), Config{Rounds: 3})
	assert.Equal(t, PhaseReady, g.State().Phase)

	_, err := g.SubmitGuess(1, 0)
	assert.ErrorIs(t, err, ErrNoRound)

	for i := 1; i <= 3; i++ {
		round, err := g.NextRound()
		require.NoError(t, err)
		assert.Equal(t, i, round.Number)

		_, err = g.NextRound()
		assert.ErrorIs(t, err, ErrRoundInProgress)

		state := g.State()
		assert.Nil(t, state.Current, "match withheld before the guess")
		raw, err := json.Marshal(state)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), `"current"`)

		dealt, ok := g.CurrentRound()
		require.True(t, ok)
		assert.Equal(t, round, dealt)

		res, err := g.SubmitGuess(2, 1)
		require.NoError(t, err)
		assert.Equal(t, 10, res.Points)
		assert.Equal(t, i*10, res.Total)

		revealed := g.State().Current
		require.NotNil(t, revealed)
		assert.Equal(t, 2, revealed.Match.Home.Score)
		assert.Equal(t, 1, revealed.Match.Away.Score)

		_, err = g.SubmitGuess(2, 1)
		if i < 3 {
			assert.ErrorIs(t, err, ErrAlreadyGuessed)
		} else {
			assert.ErrorIs(t, err, ErrGameOver)
		}
	}

	assert.True(t, g.Finished())
	_, err = g.NextRound()
	assert.ErrorIs(t, err, ErrGameOver)

	state := g.State()
	assert.Equal(t, PhaseFinished, state.Phase)
	assert.Len(t, state.History, 3)
	require.NotNil(t, state.Summary)
	assert.Equal(t, 30, state.Summary.Score)
	assert.Equal(t, 30, state.Summary.MaxScore)
	assert.Equal(t, 100, state.Summary.Percentage)
	assert.Equal(t, "Outstanding! You're a football expert!", state.Summary.Performance)
}

func TestGame_Defaults(t *testing.T) {
	g := newTestGame(t, testCatalog(4), Config{})
	state := g.State()
	assert.Equal(t, DefaultRounds, state.Config.Rounds)
	assert.Equal(t, matches.AllLeagues, state.Config.League)

	big := newTestGame(t, testCatalog(4), Config{Rounds: 1000})
	assert.Equal(t, MaxRounds, big.State().Config.Rounds)
}

func TestGame_InvalidGuess(t *testing.T) {
	g := newTestGame(t, testCatalog(2), Config{Rounds: 1})
	_, err := g.NextRound()
	require.NoError(t, err)

	_, err = g.SubmitGuess(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidGuess)
	_, err = g.SubmitGuess(0, 100)
	assert.ErrorIs(t, err, ErrInvalidGuess)
}

func TestGame_NoRepeatsUntilExhausted(t *testing.T) {
	g := newTestGame(t, testCatalog(5), Config{Rounds: 12})

	seen := map[string]int{}
	for i := 0; i < 5; i++ {
		round, err := g.NextRound()
		require.NoError(t, err)
		seen[round.Match.ID]++
		_, err = g.SubmitGuess(0, 0)
		require.NoError(t, err)
	}
	assert.Len(t, seen, 5, "every match once before any repeat")

	// The sixth draw resets the used set and is not itself marked used,
	// so the next five draws again cover every match.
	_, err := g.NextRound()
	require.NoError(t, err)
	_, err = g.SubmitGuess(0, 0)
	require.NoError(t, err)

	again := map[string]int{}
	for i := 0; i < 5; i++ {
		round, err := g.NextRound()
		require.NoError(t, err)
		again[round.Match.ID]++
		_, err = g.SubmitGuess(0, 0)
		require.NoError(t, err)
	}
	assert.Len(t, again, 5)
}

func TestGame_Filters(t *testing.T) {
	catalog := testCatalog(10)

	g := newTestGame(t, catalog, Config{League: "Serie A", Rounds: 5})
	for i := 0; i < 5; i++ {
		round, err := g.NextRound()
		require.NoError(t, err)
		assert.Equal(t, "Serie A", round.Match.League)
		_, err = g.SubmitGuess(1, 1)
		require.NoError(t, err)
	}

	g = newTestGame(t, catalog, Config{League: "Premier League", Team: "h4", Rounds: 2})
	round, err := g.NextRound()
	require.NoError(t, err)
	assert.Equal(t, "m4", round.Match.ID)

	_, err = NewGame(catalog, Config{League: "Ligue 1"}, nil)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestStore(t *testing.T) {
	lib := matches.NewLibrary(testCatalog(6))
	s := NewStore(lib, 2, nil, log.New(io.Discard, "", 0))

	var mu sync.Mutex
	var graded []Result
	s.OnGraded(func(id string, res Result) {
		mu.Lock()
		defer mu.Unlock()
		graded = append(graded, res)
	})

	g, err := s.Create(Config{})
	require.NoError(t, err)
	assert.Equal(t, 2, g.State().Config.Rounds)
	assert.Equal(t, 1, s.Len())

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = s.Guess("nope", 1, 1)
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = s.Next(g.ID())
	require.NoError(t, err)
	res, err := s.Guess(g.ID(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Points)

	_, err = s.Guess(g.ID(), 0, 0)
	assert.ErrorIs(t, err, ErrAlreadyGuessed)
	assert.Len(t, graded, 1)

	assert.Zero(t, s.Sweep(time.Now()))
	assert.Equal(t, 1, s.Sweep(time.Now().Add(7*time.Hour)))

	s.Delete(g.ID())
	assert.Zero(t, s.Len())
}

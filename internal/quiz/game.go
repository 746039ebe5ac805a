// Package quiz runs score-guessing games over a catalog of finished matches.
package quiz

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/fortuna/footyguess/internal/matches"
	"github.com/google/uuid"
)

// DefaultRounds is the length of a game when none is requested.
const DefaultRounds = 10

// MaxRounds caps a requested game length.
const MaxRounds = 50

var (
	ErrNoMatches       = errors.New("no matches for the selected league and team")
	ErrGameOver        = errors.New("game is over")
	ErrNoRound         = errors.New("no round in progress")
	ErrAlreadyGuessed  = errors.New("round already guessed")
	ErrRoundInProgress = errors.New("current round has not been guessed")
	ErrInvalidGuess    = errors.New("scores must be between 0 and 99")
	ErrGameNotFound    = errors.New("game not found")
)

// Config selects the matches and length of a game.
type Config struct {
	Rounds int    `json:"rounds"`
	League string `json:"league"`
	Team   string `json:"team,omitempty"`
}

func (c Config) normalized() Config {
	if c.Rounds <= 0 {
		c.Rounds = DefaultRounds
	}
	if c.Rounds > MaxRounds {
		c.Rounds = MaxRounds
	}
	if c.League == "" {
		c.League = matches.AllLeagues
	}
	return c
}

// Phase is where a game stands.
type Phase string

const (
	PhaseReady    Phase = "ready"
	PhaseGuessing Phase = "guessing"
	PhaseRevealed Phase = "revealed"
	PhaseFinished Phase = "finished"
)

// Round is one match put to the player.
type Round struct {
	Number int           `json:"number"`
	Match  matches.Match `json:"match"`
}

// Result is a graded round.
type Result struct {
	Round     int    `json:"round"`
	MatchID   string `json:"match_id"`
	GuessHome int    `json:"guess_home"`
	GuessAway int    `json:"guess_away"`
	Home      int    `json:"actual_home"`
	Away      int    `json:"actual_away"`
	Grade
	Total int `json:"total"`
}

// Summary is the end-of-game report.
type Summary struct {
	Score       int    `json:"score"`
	MaxScore    int    `json:"max_score"`
	Percentage  int    `json:"percentage"`
	Performance string `json:"performance"`
}

// State is a point-in-time view of a game. The current match's score is only
// present once the round has been guessed.
type State struct {
	ID      string   `json:"id"`
	Config  Config   `json:"config"`
	Phase   Phase    `json:"phase"`
	Round   int      `json:"round"`
	Score   int      `json:"score"`
	Current *Round   `json:"current,omitempty"` // set once the dealt round is graded
	History []Result `json:"history"`
	Summary *Summary `json:"summary,omitempty"`
}

// Game is a single player's session. It is safe for concurrent use.
type Game struct {
	mu sync.Mutex

	id        string
	cfg       Config
	pool      []matches.Match
	used      map[int]struct{}
	rng       *rand.Rand
	createdAt time.Time

	phase   Phase
	number  int
	current int
	score   int
	history []Result
}

// NewGame starts a game over the matches of catalog selected by cfg.
// rng may be nil.
func NewGame(catalog *matches.Catalog, cfg Config, rng *rand.Rand) (*Game, error) {
	cfg = cfg.normalized()
	pool := catalog.Filter(cfg.League, cfg.Team)
	if len(pool) == 0 {
		return nil, ErrNoMatches
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Game{
		id:        uuid.NewString(),
		cfg:       cfg,
		pool:      pool,
		used:      make(map[int]struct{}),
		rng:       rng,
		createdAt: time.Now(),
		phase:     PhaseReady,
		current:   -1,
	}, nil
}

// ID returns the session id.
func (g *Game) ID() string {
	return g.id
}

// CreatedAt returns when the game started.
func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

// NextRound draws the next match.
func (g *Game) NextRound() (Round, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.phase {
	case PhaseFinished:
		return Round{}, ErrGameOver
	case PhaseGuessing:
		return Round{}, ErrRoundInProgress
	}

	g.number++
	g.current = g.pick()
	g.phase = PhaseGuessing
	return Round{Number: g.number, Match: g.pool[g.current]}, nil
}

// pick returns a random unused match. Once every match has been used the used
// set is cleared and any match may come up; that pick is not marked used.
func (g *Game) pick() int {
	available := make([]int, 0, len(g.pool)-len(g.used))
	for i := range g.pool {
		if _, ok := g.used[i]; !ok {
			available = append(available, i)
		}
	}

	if len(available) == 0 {
		g.used = make(map[int]struct{})
		return g.rng.Intn(len(g.pool))
	}

	i := available[g.rng.Intn(len(available))]
	g.used[i] = struct{}{}
	return i
}

// SubmitGuess grades a guess for the current round.
func (g *Game) SubmitGuess(home, away int) (Result, error) {
	if home < 0 || away < 0 || home > 99 || away > 99 {
		return Result{}, ErrInvalidGuess
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.phase {
	case PhaseReady:
		return Result{}, ErrNoRound
	case PhaseRevealed:
		return Result{}, ErrAlreadyGuessed
	case PhaseFinished:
		return Result{}, ErrGameOver
	}

	m := g.pool[g.current]
	grade := GradeGuess(home, away, m.Home.Score, m.Away.Score)
	g.score += grade.Points

	res := Result{
		Round:     g.number,
		MatchID:   m.ID,
		GuessHome: home,
		GuessAway: away,
		Home:      m.Home.Score,
		Away:      m.Away.Score,
		Grade:     grade,
		Total:     g.score,
	}
	g.history = append(g.history, res)

	g.phase = PhaseRevealed
	if g.number >= g.cfg.Rounds {
		g.phase = PhaseFinished
	}
	return res, nil
}

// Finished reports whether every round has been graded.
func (g *Game) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase == PhaseFinished
}

// Summary reports the final score and performance message.
func (g *Game) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.summary()
}

func (g *Game) summary() Summary {
	maxScore := g.cfg.Rounds * PointsExact
	return Summary{
		Score:       g.score,
		MaxScore:    maxScore,
		Percentage:  g.score * 100 / maxScore,
		Performance: Performance(g.score, maxScore),
	}
}

// CurrentRound returns the most recently dealt round, scores included.
// It is for rendering; State withholds the match until the guess is in.
func (g *Game) CurrentRound() (Round, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current < 0 {
		return Round{}, false
	}
	return Round{Number: g.number, Match: g.pool[g.current]}, true
}

// State returns a snapshot of the game.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := State{
		ID:      g.id,
		Config:  g.cfg,
		Phase:   g.phase,
		Round:   g.number,
		Score:   g.score,
		History: append([]Result(nil), g.history...),
	}
	if g.current >= 0 && g.phase != PhaseGuessing {
		s.Current = &Round{Number: g.number, Match: g.pool[g.current]}
	}
	if g.phase == PhaseFinished {
		sum := g.summary()
		s.Summary = &sum
	}
	return s
}

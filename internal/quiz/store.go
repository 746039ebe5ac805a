package quiz

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/fortuna/footyguess/internal/matches"
	"github.com/fortuna/footyguess/internal/metrics"
)

// GradedFunc observes every graded round.
type GradedFunc func(gameID string, res Result)

// Store keeps live games in memory, keyed by id.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Game

	library       *matches.Library
	defaultRounds int
	maxAge        time.Duration
	metrics       *metrics.Metrics
	logger        *log.Logger
	onGraded      GradedFunc

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewStore creates a session store drawing matches from library.
func NewStore(library *matches.Library, defaultRounds int, m *metrics.Metrics, logger *log.Logger) *Store {
	if defaultRounds <= 0 {
		defaultRounds = DefaultRounds
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[quiz] ", log.LstdFlags)
	}
	return &Store{
		games:         make(map[string]*Game),
		library:       library,
		defaultRounds: defaultRounds,
		maxAge:        6 * time.Hour,
		metrics:       m,
		logger:        logger,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// OnGraded registers fn to observe graded rounds.
func (s *Store) OnGraded(fn GradedFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onGraded = fn
}

// Create starts a new game and registers it.
func (s *Store) Create(cfg Config) (*Game, error) {
	if cfg.Rounds <= 0 {
		cfg.Rounds = s.defaultRounds
	}

	s.rngMu.Lock()
	seed := s.rng.Int63()
	s.rngMu.Unlock()

	g, err := NewGame(s.library.Current(), cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.games[g.ID()] = g
	s.mu.Unlock()

	s.logger.Printf("New game %s: league=%q team=%q rounds=%d", g.ID(), g.cfg.League, g.cfg.Team, g.cfg.Rounds)
	return g, nil
}

// Get looks up a game.
func (s *Store) Get(id string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// Delete forgets a game.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// Len returns the number of live games.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Next advances game id to its next round.
func (s *Store) Next(id string) (Round, error) {
	g, err := s.Get(id)
	if err != nil {
		return Round{}, err
	}
	return g.NextRound()
}

// Guess grades a guess for game id and notifies observers.
func (s *Store) Guess(id string, home, away int) (Result, error) {
	g, err := s.Get(id)
	if err != nil {
		return Result{}, err
	}

	res, err := g.SubmitGuess(home, away)
	if err != nil {
		return Result{}, err
	}

	s.metrics.RecordRound(res.Points)

	s.mu.RLock()
	hook := s.onGraded
	s.mu.RUnlock()
	if hook != nil {
		hook(id, res)
	}
	return res, nil
}

// Sweep drops games older than the store's max age and returns how many went.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, g := range s.games {
		if now.Sub(g.CreatedAt()) > s.maxAge {
			delete(s.games, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Printf("Swept %d stale games", removed)
	}
	return removed
}

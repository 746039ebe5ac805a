package matches

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/fortuna/footyguess/internal/metrics"
)

// ErrNoMatches is returned when no league produced a single finished match.
var ErrNoMatches = errors.New("no finished matches loaded")

// Loader pulls every league's season from a Source into a Catalog.
type Loader struct {
	source  Source
	season  string
	leagues []League
	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewLoader creates a loader for season over the supported leagues.
func NewLoader(source Source, season string, m *metrics.Metrics, logger *log.Logger) *Loader {
	if season == "" {
		season = DefaultSeason
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[matches] ", log.LstdFlags)
	}
	return &Loader{
		source:  source,
		season:  season,
		leagues: Leagues,
		metrics: m,
		logger:  logger,
	}
}

// Season returns the season being loaded.
func (l *Loader) Season() string {
	return l.season
}

// Load fetches every league. A failing league is logged and skipped; Load
// only fails when nothing at all could be loaded.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	l.logger.Printf("Loading %s match data from %s...", l.season, l.source.Name())

	var all []Match
	failed := 0
	for _, league := range l.leagues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		leagueMatches, err := l.source.LeagueMatches(ctx, league, l.season)
		if err != nil {
			failed++
			l.logger.Printf("⚠️  Error loading %s: %v", league.Name, err)
			continue
		}

		all = append(all, leagueMatches...)
		l.metrics.SetMatchesLoaded(league.Name, len(leagueMatches))
		l.logger.Printf("%s: %d matches loaded", league.Name, len(leagueMatches))
	}

	l.logger.Println(strings.Repeat("=", 40))
	l.logger.Println("MATCH LOADING SUMMARY")
	l.logger.Println(strings.Repeat("=", 40))
	l.logger.Printf("Leagues loaded: %d/%d", len(l.leagues)-failed, len(l.leagues))
	l.logger.Printf("Finished matches loaded: %d", len(all))
	l.logger.Printf("Source: %s", l.source.Name())
	l.logger.Println(strings.Repeat("=", 40))

	if len(all) == 0 {
		return nil, ErrNoMatches
	}
	return NewCatalog(all), nil
}

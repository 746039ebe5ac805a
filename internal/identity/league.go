package identity

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/fortuna/footyguess/internal/ingest/sportsdb"
	"golang.org/x/sync/singleflight"
)

// LeagueLookup is the league lookup endpoint (lookupleague.php).
type LeagueLookup interface {
	LookupLeague(ctx context.Context, leagueID string) ([]sportsdb.League, error)
}

// LeagueResolver resolves league badges by fixed TheSportsDB id. It keeps its
// own write-once cache, misses included.
type LeagueResolver struct {
	lookup LeagueLookup
	ids    map[string]string
	retry  RetryPolicy
	cache  *ResolutionCache
	logger *log.Logger

	group singleflight.Group
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLeagueResolver creates a resolver for the leagues named in ids (league name -> TheSportsDB id).
func NewLeagueResolver(lookup LeagueLookup, ids map[string]string, retry RetryPolicy, logger *log.Logger) *LeagueResolver {
	if logger == nil {
		logger = log.New(log.Writer(), "[identity] ", log.LstdFlags)
	}
	copied := make(map[string]string, len(ids))
	for k, v := range ids {
		copied[k] = v
	}
	return &LeagueResolver{
		lookup: lookup,
		ids:    copied,
		retry:  retry,
		cache:  NewResolutionCache(),
		logger: logger,
		sleep:  sleepContext,
	}
}

// Cache exposes the league cache.
func (r *LeagueResolver) Cache() *ResolutionCache {
	return r.cache
}

// Resolve returns the badge of the named league.
func (r *LeagueResolver) Resolve(ctx context.Context, league string) (string, bool) {
	if e, ok := r.cache.Get(league); ok {
		return e.URL, e.Found
	}

	if ctx.Err() != nil {
		return "", false
	}

	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(league, func() (interface{}, error) {
		if e, ok := r.cache.Get(league); ok {
			return e, nil
		}
		return r.resolve(shared, league), nil
	})

	select {
	case res := <-ch:
		e := res.Val.(Entry)
		return e.URL, e.Found
	case <-ctx.Done():
		return "", false
	}
}

func (r *LeagueResolver) resolve(ctx context.Context, league string) Entry {
	id, ok := r.ids[league]
	if !ok {
		r.logger.Printf("⚠️  no league id for %q", league)
		stored, _ := r.cache.Store(league, Entry{})
		return stored
	}

	if r.retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.retry.Timeout)
		defer cancel()
	}

	attempts := r.retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		leagues, err := r.lookup.LookupLeague(ctx, id)
		if errors.Is(err, sportsdb.ErrRateLimited) && attempt < attempts {
			r.logger.Printf("rate limited on league %s, retrying in %v", id, r.retry.Backoff)
			if err := r.sleep(ctx, r.retry.Backoff); err != nil {
				break
			}
			continue
		}
		if err != nil {
			r.logger.Printf("Error fetching badge for %s: %v", league, err)
			break
		}
		if len(leagues) > 0 && strings.TrimSpace(leagues[0].Badge) != "" {
			stored, _ := r.cache.Store(league, Entry{URL: strings.TrimSpace(leagues[0].Badge), Found: true})
			return stored
		}
		break
	}

	if err := ctx.Err(); err != nil {
		r.logger.Printf("⚠️  league badge for %q interrupted: %v", league, err)
		return Entry{}
	}

	stored, _ := r.cache.Store(league, Entry{})
	return stored
}

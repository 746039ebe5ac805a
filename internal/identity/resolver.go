package identity

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/fortuna/footyguess/internal/ingest/sportsdb"
	"github.com/fortuna/footyguess/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// TeamSearcher is the team lookup endpoint (searchteams.php).
type TeamSearcher interface {
	SearchTeams(ctx context.Context, term string) ([]sportsdb.Team, error)
}

// BadgeSource is a secondary badge provider consulted once every search term has failed.
type BadgeSource interface {
	Name() string
	FindBadge(ctx context.Context, teamName string) (string, error)
}

// RetryPolicy bounds the work done for one resolution.
type RetryPolicy struct {
	// MaxAttempts per search term; only a 429 answer earns another attempt.
	MaxAttempts int
	// Backoff is the fixed wait after a 429 before retrying the same term.
	Backoff time.Duration
	// Timeout caps a whole resolution. Zero disables it.
	Timeout time.Duration
}

// DefaultRetryPolicy allows one retry per rate-limited term.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Backoff:     time.Second,
		Timeout:     20 * time.Second,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Options configures a Resolver. Zero values pick defaults.
type Options struct {
	Aliases AliasTable
	Retry   *RetryPolicy
	// StrictSport rejects result sets with no soccer team instead of taking the first result.
	StrictSport bool
	Fallback    BadgeSource
	Ledger      *Ledger
	Metrics     *metrics.Metrics
	Logger      *log.Logger
}

// Resolver turns canonical team names into badge URLs. It owns its cache and
// ledger; separate resolvers share nothing.
type Resolver struct {
	searcher    TeamSearcher
	aliases     AliasTable
	retry       RetryPolicy
	strictSport bool
	fallback    BadgeSource

	cache   *ResolutionCache
	ledger  *Ledger
	metrics *metrics.Metrics
	logger  *log.Logger

	group singleflight.Group
	sleep func(ctx context.Context, d time.Duration) error
}

// NewResolver creates a resolver backed by searcher.
func NewResolver(searcher TeamSearcher, opts Options) *Resolver {
	retry := DefaultRetryPolicy()
	if opts.Retry != nil {
		retry = *opts.Retry
	}

	ledger := opts.Ledger
	if ledger == nil {
		ledger = NewLedger()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[identity] ", log.LstdFlags)
	}

	return &Resolver{
		searcher:    searcher,
		aliases:     opts.Aliases,
		retry:       retry,
		strictSport: opts.StrictSport,
		fallback:    opts.Fallback,
		cache:       NewResolutionCache(),
		ledger:      ledger,
		metrics:     opts.Metrics,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// Cache exposes the resolution cache.
func (r *Resolver) Cache() *ResolutionCache {
	return r.cache
}

// Ledger exposes the missing-team ledger.
func (r *Resolver) Ledger() *Ledger {
	return r.ledger
}

// SearchTerms returns the candidate terms the resolver would try for name.
func (r *Resolver) SearchTerms(name string) []string {
	return GenerateSearchTerms(name, r.aliases)
}

// Resolve returns the badge URL for a canonical team name, or false when none
// could be found. A cached answer, positive or negative, is returned without
// touching the network. Failures never escape: the worst case is ("", false).
// Callers asking for the same name share one lookup; a caller whose ctx ends
// returns early without cancelling it for the others.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, bool) {
	if e, ok := r.cache.Get(name); ok {
		r.metrics.RecordResolution(metrics.OutcomeCached)
		return e.URL, e.Found
	}

	if err := ctx.Err(); err != nil {
		r.metrics.RecordResolution(metrics.OutcomeInterrupted)
		return "", false
	}

	// The shared lookup outlives any single caller; RetryPolicy.Timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(name, func() (interface{}, error) {
		if e, ok := r.cache.Get(name); ok {
			return e, nil
		}
		return r.resolve(shared, name), nil
	})

	select {
	case res := <-ch:
		e := res.Val.(Entry)
		return e.URL, e.Found
	case <-ctx.Done():
		r.logger.Printf("⚠️  caller gave up on %q: %v", name, ctx.Err())
		r.metrics.RecordResolution(metrics.OutcomeInterrupted)
		return "", false
	}
}

func (r *Resolver) resolve(ctx context.Context, name string) Entry {
	if r.retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.retry.Timeout)
		defer cancel()
	}

	terms := r.SearchTerms(name)
	for _, term := range terms {
		if ctx.Err() != nil {
			break
		}
		if badge, ok := r.tryTerm(ctx, term); ok {
			r.logger.Printf("✓ %s -> %s (term %q)", name, badge, term)
			r.metrics.RecordResolution(metrics.OutcomeResolved)
			return r.store(name, Entry{URL: badge, Found: true})
		}
	}

	// Candidates were not exhausted, so a miss must not be cached.
	if err := ctx.Err(); err != nil {
		r.logger.Printf("⚠️  resolution of %q interrupted: %v", name, err)
		r.metrics.RecordResolution(metrics.OutcomeInterrupted)
		return Entry{}
	}

	if r.fallback != nil {
		badge, err := r.fallback.FindBadge(ctx, name)
		switch {
		case err != nil:
			r.logger.Printf("%s fallback failed for %q: %v", r.fallback.Name(), name, err)
		case strings.TrimSpace(badge) != "":
			r.logger.Printf("✓ %s -> %s (%s fallback)", name, badge, r.fallback.Name())
			r.metrics.RecordResolution(metrics.OutcomeFallback)
			return r.store(name, Entry{URL: strings.TrimSpace(badge), Found: true})
		}
	}

	r.logger.Printf("⚠️  no badge for %q after %d terms %v", name, len(terms), terms)
	entry := r.store(name, Entry{})
	if !entry.Found {
		r.ledger.Record(name)
		r.metrics.RecordResolution(metrics.OutcomeMissing)
		r.metrics.SetMissingTeams(r.ledger.Len())
	}
	return entry
}

// tryTerm runs one candidate term, retrying only on rate limiting.
func (r *Resolver) tryTerm(ctx context.Context, term string) (string, bool) {
	attempts := r.retry.attempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		teams, err := r.searcher.SearchTeams(ctx, term)
		if errors.Is(err, sportsdb.ErrRateLimited) {
			r.metrics.RecordLookup("rate_limited")
			if attempt == attempts {
				r.logger.Printf("rate limited on %q, giving up after %d attempts", term, attempts)
				return "", false
			}
			r.logger.Printf("rate limited on %q, retrying in %v", term, r.retry.Backoff)
			if err := r.sleep(ctx, r.retry.Backoff); err != nil {
				return "", false
			}
			continue
		}
		if err != nil {
			r.metrics.RecordLookup("error")
			r.logger.Printf("lookup %q failed: %v", term, err)
			return "", false
		}

		badge := pickBadge(teams, r.strictSport)
		if badge == "" {
			r.metrics.RecordLookup("empty")
			return "", false
		}
		r.metrics.RecordLookup("ok")
		return badge, true
	}

	return "", false
}

// store writes e unless another resolution got there first; the cached entry wins.
func (r *Resolver) store(name string, e Entry) Entry {
	stored, _ := r.cache.Store(name, e)
	return stored
}

// pickBadge prefers the first soccer team; otherwise the first result unless strict.
func pickBadge(teams []sportsdb.Team, strict bool) string {
	if len(teams) == 0 {
		return ""
	}
	for _, t := range teams {
		if t.Sport == sportsdb.SportSoccer {
			return strings.TrimSpace(t.Badge)
		}
	}
	if strict {
		return ""
	}
	return strings.TrimSpace(teams[0].Badge)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

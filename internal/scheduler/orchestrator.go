package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fortuna/footyguess/internal/identity"
	"github.com/fortuna/footyguess/internal/matches"
	"golang.org/x/time/rate"
)

// CatalogLoader loads a fresh match catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (*matches.Catalog, error)
}

// TeamResolver resolves team badges and exposes its cache.
type TeamResolver interface {
	Resolve(ctx context.Context, name string) (string, bool)
	Cache() *identity.ResolutionCache
}

// LeagueResolver resolves league badges.
type LeagueResolver interface {
	Resolve(ctx context.Context, league string) (string, bool)
}

// Sweeper drops stale sessions.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Orchestrator loads matches, warms the badge caches and keeps both fresh
type Orchestrator struct {
	loader  CatalogLoader
	library *matches.Library
	teams   TeamResolver
	leagues LeagueResolver
	sweeper Sweeper
	config  *Config
	logger  *log.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// Config holds scheduler configuration
type Config struct {
	ReloadInterval time.Duration // Default: 6h
	SweepInterval  time.Duration // Default: 30m
	WarmupSpacing  time.Duration // Default: 250ms between upstream lookups
	EnableWarmup   bool          // Default: true
	EnableReload   bool          // Default: true
	MaxRetries     int           // Default: 3
	RetryDelay     time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		ReloadInterval: 6 * time.Hour,
		SweepInterval:  30 * time.Minute,
		WarmupSpacing:  250 * time.Millisecond,
		EnableWarmup:   true,
		EnableReload:   true,
		MaxRetries:     3,
		RetryDelay:     5 * time.Second,
	}
}

// WarmupReport summarizes one warmup pass.
type WarmupReport struct {
	Teams    int `json:"teams"`
	Looked   int `json:"looked_up"`
	Resolved int `json:"resolved"`
	Missing  int `json:"missing"`
	Leagues  int `json:"leagues"`
}

// NewOrchestrator creates a new scheduler orchestrator. teams, leagues and sweeper may be nil.
func NewOrchestrator(loader CatalogLoader, library *matches.Library, teams TeamResolver, leagues LeagueResolver, sweeper Sweeper, config *Config, logger *log.Logger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[scheduler] ", log.LstdFlags)
	}
	return &Orchestrator{
		loader:  loader,
		library: library,
		teams:   teams,
		leagues: leagues,
		sweeper: sweeper,
		config:  config,
		logger:  logger,
		stop:    make(chan struct{}),
	}
}

// Start loads the catalog, warms the caches and then runs the periodic tasks
// until ctx is cancelled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.Println("╔════════════════════════════════════════╗")
	o.logger.Println("║   FootyGuess Scheduler                 ║")
	o.logger.Println("╚════════════════════════════════════════╝")
	o.logger.Printf("Reload: %v (interval: %v)", o.config.EnableReload, o.config.ReloadInterval)
	o.logger.Printf("Warmup: %v (spacing: %v)", o.config.EnableWarmup, o.config.WarmupSpacing)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-o.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := o.LoadWithRetry(ctx); err != nil {
		o.logger.Printf("❌ Initial match load failed: %v", err)
	} else if o.config.EnableWarmup {
		o.Warmup(ctx)
	}

	var reload <-chan time.Time
	if o.config.EnableReload && o.config.ReloadInterval > 0 {
		t := time.NewTicker(o.config.ReloadInterval)
		defer t.Stop()
		reload = t.C
	}

	var sweep <-chan time.Time
	if o.sweeper != nil && o.config.SweepInterval > 0 {
		t := time.NewTicker(o.config.SweepInterval)
		defer t.Stop()
		sweep = t.C
	}

	for {
		select {
		case <-ctx.Done():
			o.logger.Println("Scheduler orchestrator stopping...")
			return
		case <-reload:
			o.logger.Println("═══ Match Reload Starting ═══")
			if err := o.LoadWithRetry(ctx); err != nil {
				o.logger.Printf("❌ Reload failed, keeping previous matches: %v", err)
				continue
			}
			if o.config.EnableWarmup {
				o.Warmup(ctx)
			}
			o.logger.Println("═══ Match Reload Complete ═══")
		case now := <-sweep:
			o.sweeper.Sweep(now)
		}
	}
}

// LoadWithRetry loads the catalog, retrying up to MaxRetries times, and swaps it into the library.
func (o *Orchestrator) LoadWithRetry(ctx context.Context) error {
	attempts := o.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var catalog *matches.Catalog
		catalog, err = o.loader.Load(ctx)
		if err == nil {
			o.library.Replace(catalog)
			o.logger.Printf("✓ %d matches available", catalog.Len())
			return nil
		}

		o.logger.Printf("  ⚠️  Load attempt %d/%d failed: %v", attempt, attempts, err)
		if attempt < attempts {
			o.logger.Printf("  Retrying in %v...", o.config.RetryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	return fmt.Errorf("loading matches after %d attempts: %w", attempts, err)
}

// Warmup resolves every league badge and every team badge the match data
// did not supply, spacing upstream lookups by WarmupSpacing.
func (o *Orchestrator) Warmup(ctx context.Context) WarmupReport {
	start := time.Now()
	limit := rate.Inf
	if o.config.WarmupSpacing > 0 {
		limit = rate.Every(o.config.WarmupSpacing)
	}
	limiter := rate.NewLimiter(limit, 1)

	var report WarmupReport

	if o.leagues != nil {
		for _, league := range matches.Leagues {
			if err := limiter.Wait(ctx); err != nil {
				return report
			}
			if _, ok := o.leagues.Resolve(ctx, league.Name); ok {
				report.Leagues++
			}
		}
	}

	if o.teams == nil {
		return report
	}

	for _, team := range o.library.Current().Teams(matches.AllLeagues) {
		report.Teams++
		if team.Badge != "" {
			continue
		}

		name := identity.Normalize(team.Name)
		if e, ok := o.teams.Cache().Get(name); ok {
			if !e.Found {
				report.Missing++
			}
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			o.logger.Printf("Warmup interrupted: %v", err)
			return report
		}
		report.Looked++
		if _, ok := o.teams.Resolve(ctx, name); ok {
			report.Resolved++
		} else {
			report.Missing++
		}
	}

	o.logger.Printf("✓ Warmup complete in %v: %d teams, %d looked up, %d resolved, %d missing, %d league badges",
		time.Since(start).Round(time.Millisecond), report.Teams, report.Looked, report.Resolved, report.Missing, report.Leagues)
	return report
}

// Stop gracefully stops the scheduler. It is safe to call from any goroutine, before or after Start.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.stop) })
	o.logger.Println("✓ Scheduler orchestrator stopped")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"reload_enabled":  o.config.EnableReload,
		"reload_interval": o.config.ReloadInterval.String(),
		"warmup_enabled":  o.config.EnableWarmup,
		"warmup_spacing":  o.config.WarmupSpacing.String(),
		"matches_loaded":  o.library.Current().Len(),
	}
}

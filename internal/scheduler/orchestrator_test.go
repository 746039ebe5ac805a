package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/footyguess/internal/identity"
	"github.com/fortuna/footyguess/internal/matches"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu       sync.Mutex
	failures int
	calls    int
	catalog  *matches.Catalog
}

func (f *fakeLoader) Load(ctx context.Context) (*matches.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream down")
	}
	return f.catalog, nil
}

type fakeTeams struct {
	cache  *identity.ResolutionCache
	badges map[string]string
	calls  []string
}

func (f *fakeTeams) Resolve(ctx context.Context, name string) (string, bool) {
	f.calls = append(f.calls, name)
	url, ok := f.badges[name]
	f.cache.Store(name, identity.Entry{URL: url, Found: ok})
	return url, ok
}

func (f *fakeTeams) Cache() *identity.ResolutionCache { return f.cache }

type fakeLeagues struct{ calls int }

func (f *fakeLeagues) Resolve(ctx context.Context, league string) (string, bool) {
	f.calls++
	return "https://badges/" + league, league != "Ligue 1"
}

func catalog() *matches.Catalog {
	return matches.NewCatalog([]matches.Match{
		{ID: "1", League: "Premier League", Home: matches.Side{ID: "1", Name: "Arsenal", Badge: "https://b/ars.png"}, Away: matches.Side{ID: "2", Name: "Chelsea FC"}},
		{ID: "2", League: "Ligue 1", Home: matches.Side{ID: "3", Name: "Paris Saint-Germain"}, Away: matches.Side{ID: "2", Name: "Chelsea FC"}},
	})
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.WarmupSpacing = 0
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestLoadWithRetry(t *testing.T) {
	loader := &fakeLoader{failures: 2, catalog: catalog()}
	lib := matches.NewLibrary(nil)
	o := NewOrchestrator(loader, lib, nil, nil, nil, testConfig(), quiet())

	require.NoError(t, o.LoadWithRetry(context.Background()))
	assert.Equal(t, 3, loader.calls)
	assert.Equal(t, 2, lib.Current().Len())

	failing := &fakeLoader{failures: 10}
	o = NewOrchestrator(failing, lib, nil, nil, nil, testConfig(), quiet())
	assert.Error(t, o.LoadWithRetry(context.Background()))
	assert.Equal(t, 2, lib.Current().Len(), "previous catalog kept")
}

func TestWarmup(t *testing.T) {
	lib := matches.NewLibrary(catalog())
	teams := &fakeTeams{cache: identity.NewResolutionCache(), badges: map[string]string{"Chelsea": "https://b/che.png"}}
	leagues := &fakeLeagues{}
	o := NewOrchestrator(&fakeLoader{}, lib, teams, leagues, nil, testConfig(), quiet())

	report := o.Warmup(context.Background())
	assert.Equal(t, 3, report.Teams)
	assert.Equal(t, 2, report.Looked)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, 1, report.Missing)
	assert.Equal(t, len(matches.Leagues)-1, report.Leagues)
	assert.ElementsMatch(t, []string{"Chelsea", "Paris Saint-Germain"}, teams.calls)

	// second pass is served from the cache
	report = o.Warmup(context.Background())
	assert.Zero(t, report.Looked)
	assert.Equal(t, 1, report.Missing)
	assert.Len(t, teams.calls, 2)
}

func TestWarmup_Spacing(t *testing.T) {
	lib := matches.NewLibrary(catalog())
	cfg := testConfig()
	cfg.WarmupSpacing = 20 * time.Millisecond
	o := NewOrchestrator(&fakeLoader{}, lib, nil, &fakeLeagues{}, nil, cfg, quiet())

	start := time.Now()
	o.Warmup(context.Background())
	// five league lookups: the first is immediate, four wait one interval each
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestStart_StopsOnCancel(t *testing.T) {
	lib := matches.NewLibrary(nil)
	o := NewOrchestrator(&fakeLoader{catalog: catalog()}, lib, nil, nil, nil, testConfig(), quiet())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return lib.Current().Len() == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not stop")
	}
	assert.Equal(t, 2, o.GetStatus()["matches_loaded"])
}

func TestStop_FromAnotherGoroutine(t *testing.T) {
	lib := matches.NewLibrary(nil)
	o := NewOrchestrator(&fakeLoader{catalog: catalog()}, lib, nil, nil, nil, testConfig(), quiet())

	done := make(chan struct{})
	go func() {
		o.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return lib.Current().Len() == 2 }, time.Second, 5*time.Millisecond)
	o.Stop()
	o.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not stop")
	}
}

func TestStop_BeforeStart(t *testing.T) {
	o := NewOrchestrator(&fakeLoader{catalog: catalog()}, matches.NewLibrary(nil), nil, nil, nil, testConfig(), quiet())
	o.Stop()

	done := make(chan struct{})
	go func() {
		o.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("orchestrator ran after Stop")
	}
}

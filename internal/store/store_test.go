package store

import (
	"context"
	"os"
	"testing"

	"github.com/fortuna/footyguess/internal/matches"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	for _, name := range migrations {
		content, err := readMigration(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, content, name)
	}

	_, err := readMigration("999_missing.sql")
	assert.Error(t, err)
}

// TestMatchRepository runs against a real database when FOOTYGUESS_TEST_DSN is set.
func TestMatchRepository(t *testing.T) {
	dsn := os.Getenv("FOOTYGUESS_TEST_DSN")
	if dsn == "" {
		t.Skip("FOOTYGUESS_TEST_DSN not set")
	}

	db, err := NewDatabase(dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.RunMigrations(ctx))
	require.NoError(t, db.HealthCheck())

	repo := NewMatchRepository(db)
	league, _ := matches.LeagueByName("Serie A")
	season := "test-season"

	_, err = db.DB().ExecContext(ctx, `DELETE FROM finished_matches WHERE season = $1`, season)
	require.NoError(t, err)

	n, err := repo.SaveMatches(ctx, season, "test", []matches.Match{{
		ID: "test-1", League: league.Name, Date: "2024-09-01",
		Home: matches.Side{ID: "1", Name: "Hellas Verona", Score: 1},
		Away: matches.Side{ID: "2", Name: "AC Milan", Badge: "https://b/milan.png", Score: 3},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.LeagueMatches(ctx, league, season)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hellas Verona", got[0].Home.Name)
	assert.Equal(t, 3, got[0].Away.Score)
	assert.Equal(t, league.Flag, got[0].Flag)

	counts, err := repo.CountBySeason(ctx, season)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[league.Name])
}

package store

import (
	"context"
	"fmt"

	"github.com/fortuna/footyguess/internal/matches"
)

// MatchRepository reads and writes finished matches. It doubles as a
// matches.Source so the quiz can run without any upstream API.
type MatchRepository struct {
	db *Database
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *Database) *MatchRepository {
	return &MatchRepository{db: db}
}

// Name identifies the source in logs.
func (r *MatchRepository) Name() string {
	return "postgres"
}

// LeagueMatches returns the stored finished matches of a league season
func (r *MatchRepository) LeagueMatches(ctx context.Context, league matches.League, season string) ([]matches.Match, error) {
	query := `
		SELECT match_id, match_date,
			home_team_id, home_team, home_badge, home_score,
			away_team_id, away_team, away_badge, away_score
		FROM finished_matches
		WHERE league = $1 AND season = $2
		ORDER BY match_date, match_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, league.Name, season)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var out []matches.Match
	for rows.Next() {
		m := matches.Match{League: league.Name, Flag: league.Flag}
		if err := rows.Scan(
			&m.ID, &m.Date,
			&m.Home.ID, &m.Home.Name, &m.Home.Badge, &m.Home.Score,
			&m.Away.ID, &m.Away.Name, &m.Away.Badge, &m.Away.Score,
		); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}

	return out, nil
}

// SaveMatches upserts matches for season in one transaction and returns how many were written
func (r *MatchRepository) SaveMatches(ctx context.Context, season, source string, ms []matches.Match) (int, error) {
	query := `
		INSERT INTO finished_matches (
			match_id, league, season, match_date,
			home_team_id, home_team, home_badge, home_score,
			away_team_id, away_team, away_badge, away_score, source
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (match_id) DO UPDATE SET
			home_badge = EXCLUDED.home_badge,
			away_badge = EXCLUDED.away_badge,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			updated_at = NOW()
	`

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		if _, err := stmt.ExecContext(ctx,
			m.ID, m.League, season, m.Date,
			m.Home.ID, m.Home.Name, m.Home.Badge, m.Home.Score,
			m.Away.ID, m.Away.Name, m.Away.Badge, m.Away.Score, source,
		); err != nil {
			return 0, fmt.Errorf("upsert match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(ms), nil
}

// CountBySeason returns the number of stored matches per league for season
func (r *MatchRepository) CountBySeason(ctx context.Context, season string) (map[string]int, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT league, COUNT(*) FROM finished_matches WHERE season = $1 GROUP BY league`, season)
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var league string
		var n int
		if err := rows.Scan(&league, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[league] = n
	}
	return counts, rows.Err()
}

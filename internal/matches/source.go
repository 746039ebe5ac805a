package matches

import (
	"context"
	"fmt"

	"github.com/fortuna/footyguess/internal/ingest/footballdata"
	"github.com/fortuna/footyguess/internal/ingest/sportsdb"
)

// Source returns the finished matches of one league season.
type Source interface {
	Name() string
	LeagueMatches(ctx context.Context, league League, season string) ([]Match, error)
}

// EventsFetcher is the TheSportsDB season endpoint.
type EventsFetcher interface {
	EventsSeason(ctx context.Context, leagueID, season string) ([]sportsdb.Event, error)
}

// SportsDBSource reads eventsseason.php. Team badges come with the events.
type SportsDBSource struct {
	client EventsFetcher
}

// NewSportsDBSource creates a TheSportsDB-backed source.
func NewSportsDBSource(client EventsFetcher) *SportsDBSource {
	return &SportsDBSource{client: client}
}

func (s *SportsDBSource) Name() string { return "thesportsdb" }

// LeagueMatches keeps finished events that carry both scores.
func (s *SportsDBSource) LeagueMatches(ctx context.Context, league League, season string) ([]Match, error) {
	events, err := s.client.EventsSeason(ctx, league.SportsDBID, season)
	if err != nil {
		return nil, fmt.Errorf("fetching %s events: %w", league.Name, err)
	}

	out := make([]Match, 0, len(events))
	for _, e := range events {
		if !e.Finished() {
			continue
		}
		out = append(out, Match{
			ID:     e.ID,
			League: league.Name,
			Flag:   league.Flag,
			Date:   e.Date,
			Home:   Side{ID: e.HomeTeamID, Name: e.HomeTeam, Badge: e.HomeTeamBadge, Score: e.HomeScore.Value},
			Away:   Side{ID: e.AwayTeamID, Name: e.AwayTeam, Badge: e.AwayTeamBadge, Score: e.AwayScore.Value},
		})
	}
	return out, nil
}

// CompetitionFetcher is the football-data.org matches endpoint.
type CompetitionFetcher interface {
	CompetitionMatches(ctx context.Context, competition, season string) ([]footballdata.Match, error)
}

// FootballDataSource reads football-data.org competition matches.
type FootballDataSource struct {
	client CompetitionFetcher
}

// NewFootballDataSource creates a football-data.org-backed source.
func NewFootballDataSource(client CompetitionFetcher) *FootballDataSource {
	return &FootballDataSource{client: client}
}

func (s *FootballDataSource) Name() string { return "football-data" }

// LeagueMatches keeps FINISHED matches with a full-time score. Crests become badges.
func (s *FootballDataSource) LeagueMatches(ctx context.Context, league League, season string) ([]Match, error) {
	raw, err := s.client.CompetitionMatches(ctx, league.FootballDataCode, SeasonStartYear(season))
	if err != nil {
		return nil, fmt.Errorf("fetching %s matches: %w", league.Name, err)
	}

	out := make([]Match, 0, len(raw))
	for _, m := range raw {
		if !m.Finished() {
			continue
		}
		out = append(out, Match{
			ID:     fmt.Sprintf("fd-%d", m.ID),
			League: league.Name,
			Flag:   league.Flag,
			Date:   m.UTCDate.Format("2006-01-02"),
			Home:   Side{ID: fmt.Sprintf("fd-%d", m.HomeTeam.ID), Name: m.HomeTeam.Name, Badge: m.HomeTeam.Crest, Score: *m.Score.FullTime.Home},
			Away:   Side{ID: fmt.Sprintf("fd-%d", m.AwayTeam.ID), Name: m.AwayTeam.Name, Badge: m.AwayTeam.Crest, Score: *m.Score.FullTime.Away},
		})
	}
	return out, nil
}

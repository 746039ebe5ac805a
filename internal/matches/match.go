// Package matches holds the finished-match catalog the quiz draws from and
// the sources that fill it.
package matches

import (
	"sort"
	"strings"
)

// AllLeagues is the league filter that selects every match.
const AllLeagues = "All Leagues"

// DefaultSeason is the season loaded when none is configured.
const DefaultSeason = "2024-2025"

// League is one supported competition and its identifiers at each upstream.
type League struct {
	Name             string `json:"name"`
	SportsDBID       string `json:"sportsdb_id"`
	FootballDataCode string `json:"football_data_code"`
	Flag             string `json:"flag"`
}

// Leagues are the competitions the game covers, in display order.
var Leagues = []League{
	{Name: "Premier League", SportsDBID: "4328", FootballDataCode: "PL", Flag: "ENG"},
	{Name: "La Liga", SportsDBID: "4335", FootballDataCode: "PD", Flag: "🇪🇸"},
	{Name: "Serie A", SportsDBID: "4332", FootballDataCode: "SA", Flag: "🇮🇹"},
	{Name: "Bundesliga", SportsDBID: "4331", FootballDataCode: "BL1", Flag: "🇩🇪"},
	{Name: "Ligue 1", SportsDBID: "4334", FootballDataCode: "FL1", Flag: "🇫🇷"},
}

// LeagueByName finds a supported league.
func LeagueByName(name string) (League, bool) {
	for _, l := range Leagues {
		if l.Name == name {
			return l, true
		}
	}
	return League{}, false
}

// LeagueIDs maps league names to TheSportsDB ids.
func LeagueIDs() map[string]string {
	ids := make(map[string]string, len(Leagues))
	for _, l := range Leagues {
		ids[l.Name] = l.SportsDBID
	}
	return ids
}

// Side is one team in a match. Badge is whatever the source supplied, possibly empty.
type Side struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Badge string `json:"badge,omitempty"`
	Score int    `json:"score"`
}

// Match is a finished fixture with its final score.
type Match struct {
	ID     string `json:"id"`
	League string `json:"league"`
	Flag   string `json:"flag"`
	Date   string `json:"date"`
	Home   Side   `json:"home"`
	Away   Side   `json:"away"`
}

// Involves reports whether team played in the match (by id, else by name).
func (m Match) Involves(team string) bool {
	if team == "" {
		return true
	}
	return m.Home.ID == team || m.Away.ID == team ||
		strings.EqualFold(m.Home.Name, team) || strings.EqualFold(m.Away.Name, team)
}

// SeasonStartYear turns "2024-2025" into "2024"; a bare year is returned as is.
func SeasonStartYear(season string) string {
	if i := strings.Index(season, "-"); i > 0 {
		return season[:i]
	}
	return season
}

// Team is a distinct team seen in a league's matches.
type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Badge  string `json:"badge,omitempty"`
	League string `json:"league"`
}

// LeagueCount is the number of matches available for a league.
type LeagueCount struct {
	League
	Matches int `json:"matches"`
}

// Catalog is an immutable set of loaded matches.
type Catalog struct {
	matches []Match
}

// NewCatalog wraps matches. The slice must not be modified afterwards.
func NewCatalog(matches []Match) *Catalog {
	return &Catalog{matches: matches}
}

// Len returns the total number of matches.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.matches)
}

// All returns every match.
func (c *Catalog) All() []Match {
	if c == nil {
		return nil
	}
	return c.matches
}

// Filter returns the matches of league (AllLeagues or "" for every league)
// that involve team ("" for any team).
func (c *Catalog) Filter(league, team string) []Match {
	if c == nil {
		return nil
	}
	all := league == "" || league == AllLeagues
	out := make([]Match, 0, len(c.matches))
	for _, m := range c.matches {
		if !all && m.League != league {
			continue
		}
		if !m.Involves(team) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// LeagueCounts returns the match count of every supported league, in display order.
func (c *Catalog) LeagueCounts() []LeagueCount {
	counts := make(map[string]int)
	for _, m := range c.All() {
		counts[m.League]++
	}

	out := make([]LeagueCount, 0, len(Leagues))
	for _, l := range Leagues {
		out = append(out, LeagueCount{League: l, Matches: counts[l.Name]})
	}
	return out
}

// Teams returns the distinct teams of league (AllLeagues for every league),
// unique by id and sorted by name.
func (c *Catalog) Teams(league string) []Team {
	seen := make(map[string]Team)
	add := func(s Side, league string) {
		key := s.ID
		if key == "" {
			key = s.Name
		}
		if existing, ok := seen[key]; ok {
			if existing.Badge == "" && s.Badge != "" {
				existing.Badge = s.Badge
				seen[key] = existing
			}
			return
		}
		seen[key] = Team{ID: s.ID, Name: s.Name, Badge: s.Badge, League: league}
	}

	for _, m := range c.Filter(league, "") {
		add(m.Home, m.League)
		add(m.Away, m.League)
	}

	teams := make([]Team, 0, len(seen))
	for _, t := range seen {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Name == teams[j].Name {
			return teams[i].ID < teams[j].ID
		}
		return teams[i].Name < teams[j].Name
	})
	return teams
}

package sportsdb

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SportSoccer is TheSportsDB's classification for association football.
const SportSoccer = "Soccer"

// StatusFinished marks a completed event in eventsseason.php payloads.
const StatusFinished = "Match Finished"

// Team is one searchteams.php record. Only the fields we read are mapped.
type Team struct {
	ID     string `json:"idTeam"`
	Name   string `json:"strTeam"`
	Badge  string `json:"strBadge"`
	Sport  string `json:"strSport"`
	League string `json:"strLeague"`
}

// League is one lookupleague.php record.
type League struct {
	ID    string `json:"idLeague"`
	Name  string `json:"strLeague"`
	Badge string `json:"strBadge"`
}

// Event is one eventsseason.php record.
type Event struct {
	ID            string `json:"idEvent"`
	Status        string `json:"strStatus"`
	Date          string `json:"dateEvent"`
	HomeTeamID    string `json:"idHomeTeam"`
	AwayTeamID    string `json:"idAwayTeam"`
	HomeTeam      string `json:"strHomeTeam"`
	AwayTeam      string `json:"strAwayTeam"`
	HomeTeamBadge string `json:"strHomeTeamBadge"`
	AwayTeamBadge string `json:"strAwayTeamBadge"`
	HomeScore     Score  `json:"intHomeScore"`
	AwayScore     Score  `json:"intAwayScore"`
}

// Finished reports whether the event has a final result with both scores.
func (e Event) Finished() bool {
	return e.Status == StatusFinished && e.HomeScore.Valid && e.AwayScore.Valid
}

// Score is a nullable goal count. TheSportsDB sends scores as strings,
// numbers or null depending on the endpoint.
type Score struct {
	Value int
	Valid bool
}

// UnmarshalJSON accepts "2", 2, "" and null.
func (s *Score) UnmarshalJSON(data []byte) error {
	*s = Score{}
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		// Unparseable scores are treated as missing rather than failing the whole payload.
		return nil
	}
	s.Value = n
	s.Valid = true
	return nil
}

type teamsResponse struct {
	Teams []Team `json:"teams"`
}

type leaguesResponse struct {
	Leagues []League `json:"leagues"`
}

type eventsResponse struct {
	Events []Event `json:"events"`
}

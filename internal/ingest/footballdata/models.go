package footballdata

import "time"

// Match is one entry of the competition matches payload.
type Match struct {
	ID       int       `json:"id"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	HomeTeam Team      `json:"homeTeam"`
	AwayTeam Team      `json:"awayTeam"`
	Score    Score     `json:"score"`
}

// Team identifies a side. Crest is the team badge URL.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Crest     string `json:"crest"`
}

// Score holds the result breakdown; only full time is used.
type Score struct {
	FullTime ScoreLine `json:"fullTime"`
}

// ScoreLine is nullable until the match has been played.
type ScoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Finished reports whether the match has a final full-time score.
func (m Match) Finished() bool {
	return m.Status == StatusFinished && m.Score.FullTime.Home != nil && m.Score.FullTime.Away != nil
}

type matchesResponse struct {
	Matches []Match `json:"matches"`
}

package websocket

import "github.com/fortuna/footyguess/internal/quiz"

// Client -> server message types.
const (
	TypeStart = "start"
	TypeGuess = "guess"
	TypeNext  = "next"
)

// Server -> client message types.
const (
	TypeRound       = "round"
	TypeResult      = "result"
	TypeGameOver    = "game_over"
	TypeError       = "error"
	TypeMissingTeam = "missing_team"
)

// ClientMessage is anything a player sends.
//
//	start: league, team, rounds (all optional)
//	guess: home, away
//	next:  no fields
type ClientMessage struct {
	Type   string `json:"type"`
	League string `json:"league,omitempty"`
	Team   string `json:"team,omitempty"`
	Rounds int    `json:"rounds,omitempty"`
	Home   *int   `json:"home,omitempty"`
	Away   *int   `json:"away,omitempty"`
}

// ServerMessage is anything sent to a player.
type ServerMessage struct {
	Type    string          `json:"type"`
	GameID  string          `json:"game_id,omitempty"`
	Round   *quiz.RoundView `json:"round,omitempty"`
	Result  *quiz.Result    `json:"result,omitempty"`
	Summary *quiz.Summary   `json:"summary,omitempty"`
	Team    string          `json:"team,omitempty"`
	Error   string          `json:"error,omitempty"`
}

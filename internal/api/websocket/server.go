package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/fortuna/footyguess/internal/quiz"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server plays quiz games over WebSocket connections
type Server struct {
	port      string
	server    *http.Server
	hub       *Hub
	games     *quiz.Store
	presenter *quiz.Presenter
}

// NewServer creates a new WebSocket server and starts its hub
func NewServer(games *quiz.Store, presenter *quiz.Presenter) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		hub:       hub,
		games:     games,
		presenter: presenter,
	}
}

// Handler returns the routes served by the WebSocket server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/games", s.handleGames)
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// Start starts the WebSocket server
func (s *Server) Start(port string) error {
	s.port = port
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: s.Handler(),
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleGames upgrades a connection and lets the player drive a game over it
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		server: s,
		done:   make(chan struct{}),
	}

	s.hub.Register(client)

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// handle applies one player message and returns the replies.
func (s *Server) handle(c *Client, msg ClientMessage) []ServerMessage {
	ctx := context.Background()

	switch msg.Type {
	case TypeStart:
		if c.gameID != "" {
			s.games.Delete(c.gameID)
			c.gameID = ""
		}
		g, err := s.games.Create(quiz.Config{Rounds: msg.Rounds, League: msg.League, Team: msg.Team})
		if err != nil {
			return []ServerMessage{errorMessage(err)}
		}
		c.gameID = g.ID()
		return []ServerMessage{s.deal(ctx, g.ID())}

	case TypeGuess:
		if c.gameID == "" {
			return []ServerMessage{errorMessage(quiz.ErrNoRound)}
		}
		if msg.Home == nil || msg.Away == nil {
			return []ServerMessage{{Type: TypeError, Error: "home and away are required"}}
		}
		res, err := s.games.Guess(c.gameID, *msg.Home, *msg.Away)
		if err != nil {
			return []ServerMessage{errorMessage(err)}
		}
		out := []ServerMessage{{Type: TypeResult, GameID: c.gameID, Result: &res}}
		if g, err := s.games.Get(c.gameID); err == nil && g.Finished() {
			sum := g.Summary()
			out = append(out, ServerMessage{Type: TypeGameOver, GameID: c.gameID, Summary: &sum})
		}
		return out

	case TypeNext:
		if c.gameID == "" {
			return []ServerMessage{errorMessage(quiz.ErrNoRound)}
		}
		return []ServerMessage{s.deal(ctx, c.gameID)}

	default:
		return []ServerMessage{{Type: TypeError, Error: "unknown type"}}
	}
}

// deal advances game id and renders the new round, or the summary once it is over.
func (s *Server) deal(ctx context.Context, id string) ServerMessage {
	round, err := s.games.Next(id)
	if errors.Is(err, quiz.ErrGameOver) {
		g, gerr := s.games.Get(id)
		if gerr != nil {
			return errorMessage(gerr)
		}
		sum := g.Summary()
		return ServerMessage{Type: TypeGameOver, GameID: id, Summary: &sum}
	}
	if err != nil {
		return errorMessage(err)
	}

	g, err := s.games.Get(id)
	if err != nil {
		return errorMessage(err)
	}
	v := s.presenter.Round(ctx, round, g.State().Config.Rounds)
	return ServerMessage{Type: TypeRound, GameID: id, Round: &v}
}

func errorMessage(err error) ServerMessage {
	return ServerMessage{Type: TypeError, Error: err.Error()}
}

// BroadcastMissingTeam tells every connected player a team fell back to a placeholder
func (s *Server) BroadcastMissingTeam(team string) {
	payload, err := json.Marshal(ServerMessage{Type: TypeMissingTeam, Team: team})
	if err != nil {
		return
	}
	s.hub.Broadcast(payload)
}

// ClientCount returns the number of connected players
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

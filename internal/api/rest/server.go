package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Options carries the optional parts of the REST surface.
type Options struct {
	Relay    *RelayHandler
	Backfill *BackfillHandler
	Metrics  http.Handler
}

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
	router  *mux.Router
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, opts Options) *Server {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)

	// Health check and metrics
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods("GET")
	}

	// Upstream relays answer their own CORS and method checks
	if opts.Relay != nil {
		router.HandleFunc("/api/sportsdb", opts.Relay.SportsDB)
		router.HandleFunc("/api/football-data", opts.Relay.FootballData)
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(CORSMiddleware)

	// Leagues
	api.HandleFunc("/leagues", handler.GetLeagues).Methods("GET", "OPTIONS")
	api.HandleFunc("/leagues/{league}/badge", handler.GetLeagueBadge).Methods("GET", "OPTIONS")
	api.HandleFunc("/leagues/{league}/teams", handler.GetLeagueTeams).Methods("GET", "OPTIONS")

	// Teams
	api.HandleFunc("/teams/{name}/badge", handler.GetTeamBadge).Methods("GET", "OPTIONS")
	api.HandleFunc("/teams/{name}/placeholder.svg", handler.GetTeamPlaceholder).Methods("GET", "OPTIONS")
	api.HandleFunc("/missing-teams", handler.GetMissingTeams).Methods("GET", "OPTIONS")
	api.HandleFunc("/missing-teams/export", handler.ExportMissingTeams).Methods("GET", "OPTIONS")

	// Games
	api.HandleFunc("/games", handler.CreateGame).Methods("POST", "OPTIONS")
	api.HandleFunc("/games/{id}", handler.GetGame).Methods("GET", "OPTIONS")
	api.HandleFunc("/games/{id}/guess", handler.SubmitGuess).Methods("POST", "OPTIONS")
	api.HandleFunc("/games/{id}/next", handler.NextRound).Methods("POST", "OPTIONS")

	// Backfill operations
	if opts.Backfill != nil {
		api.HandleFunc("/backfill", opts.Backfill.HandleBackfillRequest).Methods("POST", "OPTIONS")
		api.HandleFunc("/backfill/status", opts.Backfill.HandleBackfillStatus).Methods("GET", "OPTIONS")
	}

	return &Server{
		port:    port,
		handler: handler,
		router:  router,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Router exposes the route table (tests drive it with httptest).
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

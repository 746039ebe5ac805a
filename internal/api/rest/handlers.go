package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fortuna/footyguess/internal/identity"
	"github.com/fortuna/footyguess/internal/matches"
	"github.com/fortuna/footyguess/internal/quiz"
	"github.com/gorilla/mux"
)

const (
	serviceName    = "footyguess"
	serviceVersion = "1.0.0"
)

// TeamArt resolves team art and exposes the missing-team ledger.
type TeamArt interface {
	TeamArt(ctx context.Context, rawName, knownBadge string) identity.Art
	Ledger() *identity.Ledger
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	library   *matches.Library
	teams     TeamArt
	leagues   quiz.LeagueBadges
	games     *quiz.Store
	presenter *quiz.Presenter
	now       func() time.Time
}

// NewHandler creates a new handler
func NewHandler(library *matches.Library, teams TeamArt, leagues quiz.LeagueBadges, games *quiz.Store) *Handler {
	return &Handler{
		library:   library,
		teams:     teams,
		leagues:   leagues,
		games:     games,
		presenter: quiz.NewPresenter(teams, leagues),
		now:       time.Now,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "healthy",
		"service":       serviceName,
		"version":       serviceVersion,
		"matches":       h.library.Current().Len(),
		"missing_teams": h.teams.Ledger().Len(),
		"games":         h.games.Len(),
	})
}

type leagueResponse struct {
	Name    string `json:"name"`
	Flag    string `json:"flag"`
	Badge   string `json:"badge,omitempty"`
	Matches int    `json:"matches"`
}

// GetLeagues lists the selectable leagues with match counts, "All Leagues" first
func (h *Handler) GetLeagues(w http.ResponseWriter, r *http.Request) {
	catalog := h.library.Current()

	out := []leagueResponse{{Name: matches.AllLeagues, Flag: "🌍", Matches: catalog.Len()}}
	for _, lc := range catalog.LeagueCounts() {
		resp := leagueResponse{Name: lc.Name, Flag: lc.Flag, Matches: lc.Matches}
		if badge, ok := h.leagues.Resolve(r.Context(), lc.Name); ok {
			resp.Badge = badge
		}
		out = append(out, resp)
	}

	respondJSON(w, http.StatusOK, out)
}

// GetLeagueBadge returns one league's badge
func (h *Handler) GetLeagueBadge(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["league"]
	if _, ok := matches.LeagueByName(name); !ok {
		respondError(w, http.StatusNotFound, "Unknown league", nil)
		return
	}

	badge, found := h.leagues.Resolve(r.Context(), name)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"league":    name,
		"badge_url": badge,
		"found":     found,
	})
}

// GetLeagueTeams lists a league's teams, sorted by name, with their art
func (h *Handler) GetLeagueTeams(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["league"]
	if _, ok := matches.LeagueByName(name); !ok && name != matches.AllLeagues {
		respondError(w, http.StatusNotFound, "Unknown league", nil)
		return
	}

	teams := h.library.Current().Teams(name)
	out := make([]map[string]interface{}, 0, len(teams))
	for _, t := range teams {
		out = append(out, map[string]interface{}{
			"id":     t.ID,
			"league": t.League,
			"art":    h.teams.TeamArt(r.Context(), t.Name, t.Badge),
		})
	}

	respondJSON(w, http.StatusOK, out)
}

// GetTeamBadge resolves a team's art by raw name
func (h *Handler) GetTeamBadge(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if identity.Normalize(name) == "" {
		respondError(w, http.StatusBadRequest, "Team name required", nil)
		return
	}
	respondJSON(w, http.StatusOK, h.teams.TeamArt(r.Context(), name, ""))
}

// GetTeamPlaceholder serves the synthesized badge as SVG
func (h *Handler) GetTeamPlaceholder(w http.ResponseWriter, r *http.Request) {
	name := identity.Normalize(mux.Vars(r)["name"])
	if name == "" {
		respondError(w, http.StatusBadRequest, "Team name required", nil)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(identity.Synthesize(name).SVG))
}

// GetMissingTeams lists teams shown with a placeholder
func (h *Handler) GetMissingTeams(w http.ResponseWriter, r *http.Request) {
	names := h.teams.Ledger().List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(names),
		"teams": names,
	})
}

// ExportMissingTeams downloads the plain-text missing-team report
func (h *Handler) ExportMissingTeams(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="missing-teams.txt"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.teams.Ledger().Export(h.now())))
}

type gameResponse struct {
	quiz.State
	Round *quiz.RoundView `json:"round_view,omitempty"`
}

func (h *Handler) gameView(ctx context.Context, g *quiz.Game) gameResponse {
	state := g.State()
	resp := gameResponse{State: state}
	if round, ok := g.CurrentRound(); ok {
		v := h.presenter.Round(ctx, round, state.Config.Rounds)
		resp.Round = &v
	}
	return resp
}

// CreateGame starts a game and deals its first round
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var cfg quiz.Config
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	g, err := h.games.Create(cfg)
	if err != nil {
		respondQuizError(w, err)
		return
	}
	if _, err := g.NextRound(); err != nil {
		respondQuizError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.gameView(r.Context(), g))
}

// GetGame returns a game's state
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.Get(mux.Vars(r)["id"])
	if err != nil {
		respondQuizError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.gameView(r.Context(), g))
}

type guessRequest struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// SubmitGuess grades a guess for the current round
func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Home == nil || req.Away == nil {
		respondError(w, http.StatusBadRequest, "Both home and away scores are required", nil)
		return
	}

	id := mux.Vars(r)["id"]
	res, err := h.games.Guess(id, *req.Home, *req.Away)
	if err != nil {
		respondQuizError(w, err)
		return
	}

	out := map[string]interface{}{"result": res}
	if g, err := h.games.Get(id); err == nil && g.Finished() {
		out["summary"] = g.Summary()
	}
	respondJSON(w, http.StatusOK, out)
}

// NextRound deals the next round
func (h *Handler) NextRound(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	round, err := h.games.Next(id)
	if errors.Is(err, quiz.ErrGameOver) {
		g, _ := h.games.Get(id)
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   err.Error(),
			"status":  http.StatusConflict,
			"summary": g.Summary(),
		})
		return
	}
	if err != nil {
		respondQuizError(w, err)
		return
	}

	g, _ := h.games.Get(id)
	v := h.presenter.Round(r.Context(), round, g.State().Config.Rounds)
	respondJSON(w, http.StatusOK, v)
}

func respondQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrGameNotFound):
		respondError(w, http.StatusNotFound, "Game not found", err)
	case errors.Is(err, quiz.ErrNoMatches):
		respondError(w, http.StatusUnprocessableEntity, "No matches for this selection", err)
	case errors.Is(err, quiz.ErrInvalidGuess):
		respondError(w, http.StatusBadRequest, "Invalid guess", err)
	case errors.Is(err, quiz.ErrGameOver),
		errors.Is(err, quiz.ErrNoRound),
		errors.Is(err, quiz.ErrAlreadyGuessed),
		errors.Is(err, quiz.ErrRoundInProgress):
		respondError(w, http.StatusConflict, "Action not allowed now", err)
	default:
		respondError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

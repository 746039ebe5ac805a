package rest

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
)

// SportsDBRelay fetches raw TheSportsDB payloads.
type SportsDBRelay interface {
	Raw(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

// FootballDataRelay fetches raw football-data.org payloads.
type FootballDataRelay interface {
	CompetitionMatchesRaw(ctx context.Context, competition, season string) ([]byte, error)
}

var endpointPattern = regexp.MustCompile(`^[a-z_]+\.php$`)

// RelayHandler forwards browser requests to the upstream APIs so the page
// never calls them cross-origin. It keeps no state.
type RelayHandler struct {
	sportsDB     SportsDBRelay
	footballData FootballDataRelay
}

// NewRelayHandler creates the relay. Either upstream may be nil.
func NewRelayHandler(sportsDB SportsDBRelay, footballData FootballDataRelay) *RelayHandler {
	return &RelayHandler{sportsDB: sportsDB, footballData: footballData}
}

// SportsDB handles /api/sportsdb?endpoint=eventsseason.php&id=4328&s=2024-2025
func (h *RelayHandler) SportsDB(w http.ResponseWriter, r *http.Request) {
	if !relayPreamble(w, r) {
		return
	}

	query := r.URL.Query()
	endpoint := query.Get("endpoint")
	if endpoint == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing endpoint parameter"})
		return
	}
	if !endpointPattern.MatchString(endpoint) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid endpoint parameter"})
		return
	}
	if h.sportsDB == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "TheSportsDB relay not configured"})
		return
	}

	query.Del("endpoint")
	body, err := h.sportsDB.Raw(r.Context(), endpoint, query)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch data from TheSportsDB",
			"message": err.Error(),
		})
		return
	}

	writeRaw(w, body)
}

// FootballData handles /api/football-data?competition=PL&season=2024
func (h *RelayHandler) FootballData(w http.ResponseWriter, r *http.Request) {
	if !relayPreamble(w, r) {
		return
	}

	competition := r.URL.Query().Get("competition")
	season := r.URL.Query().Get("season")
	if competition == "" || season == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing competition or season parameter"})
		return
	}
	if h.footballData == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "football-data.org relay not configured"})
		return
	}

	body, err := h.footballData.CompetitionMatchesRaw(r.Context(), competition, season)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch data",
			"message": err.Error(),
		})
		return
	}

	writeRaw(w, body)
}

// relayPreamble sets CORS headers, answers preflight and rejects other methods.
func relayPreamble(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return false
	case http.MethodGet:
		return true
	default:
		respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return false
	}
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

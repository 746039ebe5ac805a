package rest

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/fortuna/footyguess/internal/backfill"
	"github.com/fortuna/footyguess/internal/matches"
)

// BackfillRunner copies a season into storage.
type BackfillRunner interface {
	Run(ctx context.Context, spec backfill.JobSpec, reporter backfill.Reporter) (backfill.Summary, error)
}

// BackfillHandler runs one backfill job at a time in the background.
type BackfillHandler struct {
	runner BackfillRunner

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	last      *backfillStatus
}

type backfillStatus struct {
	Season     string           `json:"season"`
	DryRun     bool             `json:"dry_run"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Summary    backfill.Summary `json:"summary"`
	Error      string           `json:"error,omitempty"`
}

// NewBackfillHandler wires the REST layer to the backfill runner.
func NewBackfillHandler(runner BackfillRunner) *BackfillHandler {
	return &BackfillHandler{runner: runner}
}

type apiBackfillRequest struct {
	Season  string   `json:"season"`
	Leagues []string `json:"leagues"`
	DryRun  bool     `json:"dry_run"`
}

// HandleBackfillRequest handles POST /api/v1/backfill
func (h *BackfillHandler) HandleBackfillRequest(w http.ResponseWriter, r *http.Request) {
	var req apiBackfillRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	spec := backfill.JobSpec{Season: req.Season, DryRun: req.DryRun}
	for _, name := range req.Leagues {
		league, ok := matches.LeagueByName(name)
		if !ok {
			respondError(w, http.StatusBadRequest, "Unknown league: "+name, nil)
			return
		}
		spec.Leagues = append(spec.Leagues, league)
	}
	if spec.Season == "" {
		spec.Season = matches.DefaultSeason
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		respondError(w, http.StatusConflict, "A backfill is already running", nil)
		return
	}
	h.running = true
	h.startedAt = time.Now()
	h.mu.Unlock()

	go h.run(spec)

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Backfill started",
		"season":  spec.Season,
		"dry_run": spec.DryRun,
	})
}

func (h *BackfillHandler) run(spec backfill.JobSpec) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	h.mu.Lock()
	started := h.startedAt
	h.mu.Unlock()

	summary, err := h.runner.Run(ctx, spec, logReporter{})

	status := &backfillStatus{
		Season:     spec.Season,
		DryRun:     spec.DryRun,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Summary:    summary,
	}
	if err != nil {
		status.Error = err.Error()
	}

	h.mu.Lock()
	h.running = false
	h.last = status
	h.mu.Unlock()
}

// HandleBackfillStatus handles GET /api/v1/backfill/status
func (h *BackfillHandler) HandleBackfillStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	resp := map[string]interface{}{"running": h.running}
	if h.running {
		resp["started_at"] = h.startedAt
	}
	if h.last != nil {
		resp["last"] = h.last
	}
	respondJSON(w, http.StatusOK, resp)
}

type logReporter struct{}

func (logReporter) OnJobStart(spec backfill.JobSpec) {
	log.Printf("[backfill] Starting season %s (dry_run=%v)", spec.Season, spec.DryRun)
}

func (logReporter) OnLeagueStart(league matches.League, index, total int) {
	log.Printf("[backfill] [%d/%d] %s", index+1, total, league.Name)
}

func (logReporter) OnProgress(message string, current, total int) {
	log.Printf("[backfill] %s (%d/%d)", message, current, total)
}

func (logReporter) OnJobComplete(saved int) {
	log.Printf("[backfill] ✓ Job complete: %d matches saved", saved)
}

func (logReporter) OnJobError(err error) {
	log.Printf("[backfill] ❌ Job error: %v", err)
}

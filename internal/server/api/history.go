package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handsoff/internal/store"
)

const defaultListLimit = 100

type listEpisodesResponse struct {
	Episodes []*store.Episode `json:"episodes"`
}

type listTrainingRunsResponse struct {
	TrainingRuns []*store.TrainingRun `json:"training_runs"`
}

// EpisodesHandler serves recorded detection episodes.
//
//	GET /api/episodes?limit=N
//	GET /api/episodes/{id}
type EpisodesHandler struct {
	store *store.Store
}

// NewEpisodesHandler creates a new EpisodesHandler with the given store.
func NewEpisodesHandler(s *store.Store) *EpisodesHandler {
	return &EpisodesHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *EpisodesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/episodes"), "/")
	if id == "" {
		h.list(w, r)
		return
	}

	e, err := h.store.Episodes().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "episode not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get episode")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EpisodesHandler) list(w http.ResponseWriter, r *http.Request) {
	episodes, err := h.store.Episodes().List(limitParam(r, defaultListLimit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list episodes")
		return
	}
	if episodes == nil {
		episodes = []*store.Episode{}
	}
	writeJSON(w, http.StatusOK, listEpisodesResponse{Episodes: episodes})
}

// TrainingRunsHandler serves GET /api/training-runs.
type TrainingRunsHandler struct {
	store *store.Store
}

// NewTrainingRunsHandler creates a new TrainingRunsHandler.
func NewTrainingRunsHandler(s *store.Store) *TrainingRunsHandler {
	return &TrainingRunsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *TrainingRunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runs, err := h.store.TrainingRuns().List(limitParam(r, defaultListLimit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list training runs")
		return
	}
	if runs == nil {
		runs = []*store.TrainingRun{}
	}
	writeJSON(w, http.StatusOK, listTrainingRunsResponse{TrainingRuns: runs})
}

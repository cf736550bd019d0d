// Package handlers exposes the screening API over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mkaravas/valuescreen/internal/domain"
	"github.com/mkaravas/valuescreen/internal/export"
	"github.com/mkaravas/valuescreen/internal/results"
	"github.com/mkaravas/valuescreen/internal/screener"
)

// Handler serves the /api/screen routes.
type Handler struct {
	runner  *screener.Runner
	results *results.Repository
	log     zerolog.Logger
}

// NewHandler creates a screening API handler.
func NewHandler(runner *screener.Runner, res *results.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		runner:  runner,
		results: res,
		log:     log.With().Str("handler", "screen").Logger(),
	}
}

// RegisterRoutes mounts the screen routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/screen", func(r chi.Router) {
		r.Post("/", h.HandleRunScreen)
		r.Get("/runs", h.HandleListRuns)
		r.Get("/runs/{id}", h.HandleGetRun)
		r.Get("/runs/{id}/export.csv", h.HandleExportCSV)
	})
}

// HandleRunScreen runs a screen synchronously and returns the ranked
// run. An empty body screens the stored universe; a body with a
// tickers array screens just those symbols. Progress is visible on
// the events stream meanwhile.
// POST /api/screen {"tickers": ["AAPL", "MSFT"]}
func (h *Handler) HandleRunScreen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tickers []string `json:"tickers"`
	}
	if r.Body != nil {
		// Body is optional; a decode error other than EOF is a bad request.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	var run *domain.ScreenRun
	var err error
	if len(req.Tickers) > 0 {
		run, err = h.runner.RunScreenTickers(r.Context(), req.Tickers)
	} else {
		run, err = h.runner.RunScreen(r.Context())
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Screen failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("screen failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleListRuns returns run summaries, newest first.
// GET /api/screen/runs?limit=N
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := h.results.ListRuns(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []domain.ScreenRun{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// HandleGetRun returns one run with its ranked results. The id
// "latest" resolves to the most recently finished run.
// GET /api/screen/runs/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.loadRun(chi.URLParam(r, "id"))
	if errors.Is(err, results.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load run")
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleExportCSV streams a run's ranked results as CSV.
// GET /api/screen/runs/{id}/export.csv
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := h.loadRun(id)
	if errors.Is(err, results.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load run for export")
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="screen_%s.csv"`, run.ID))

	if err := export.WriteCSV(w, run.Results); err != nil {
		// Headers are already out; all we can do is log.
		h.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to write CSV export")
	}
}

func (h *Handler) loadRun(id string) (*domain.ScreenRun, error) {
	if id == "latest" {
		return h.results.LatestRun()
	}
	return h.results.GetRun(id)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

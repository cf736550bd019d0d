package universe

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers serves the /api/universe routes.
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates universe API handlers.
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "universe").Logger(),
	}
}

// RegisterRoutes mounts the universe routes on the given router.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/universe", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleAdd)
		r.Delete("/{symbol}", h.HandleDeactivate)
	})
}

// HandleList returns the whole universe including inactive tickers.
// GET /api/universe
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.repo.ListAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list universe")
		writeError(w, http.StatusInternalServerError, "failed to list universe")
		return
	}
	if tickers == nil {
		tickers = []Ticker{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tickers": tickers})
}

// HandleAdd adds or reactivates a ticker.
// POST /api/universe {"symbol": "AAPL", "sector": "TECH_LARGE"}
func (h *Handlers) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
		Sector string `json:"sector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	if err := h.repo.Add(req.Symbol, req.Sector); err != nil {
		h.log.Error().Err(err).Str("symbol", req.Symbol).Msg("Failed to add ticker")
		writeError(w, http.StatusInternalServerError, "failed to add ticker")
		return
	}

	h.log.Info().Str("symbol", req.Symbol).Str("sector", req.Sector).Msg("Ticker added")
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// HandleDeactivate removes a ticker from future screens.
// DELETE /api/universe/{symbol}
func (h *Handlers) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if err := h.repo.Deactivate(symbol); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "ticker not found")
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to deactivate ticker")
		writeError(w, http.StatusInternalServerError, "failed to deactivate ticker")
		return
	}

	h.log.Info().Str("symbol", symbol).Msg("Ticker deactivated")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Package handlers provides HTTP handlers for symbol search.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aristath/invesmart/internal/modules/symbols"
	"github.com/rs/zerolog"
)

// SymbolService is the search capability the handlers need
type SymbolService interface {
	Search(ctx context.Context, q string) ([]symbols.Symbol, error)
	Popular() []symbols.PopularSymbol
}

// Handler handles symbol HTTP requests
type Handler struct {
	service SymbolService
	log     zerolog.Logger
}

// NewHandler creates a new symbols handler
func NewHandler(service SymbolService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "symbols").Logger(),
	}
}

// HandleSearch returns instruments matching ?q=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	results, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.log.Error().Err(err).Str("query", q).Msg("Symbol search failed")
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	h.writeJSON(w, http.StatusOK, results)
}

// HandleGetPopular returns the preset symbols
func (h *Handler) HandleGetPopular(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Popular())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

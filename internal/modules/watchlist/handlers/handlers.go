// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/aristath/invesmart/internal/modules/watchlist"
	"github.com/rs/zerolog"
)

// Refresher is the watchlist capability the handlers need
type Refresher interface {
	Current() watchlist.Watch
	Latest() *watchlist.Snapshot
	Set(symbols []string, rng series.Range, interval series.Interval) watchlist.Watch
	Trigger()
}

// Handler handles watchlist HTTP requests
type Handler struct {
	refresher Refresher
	log       zerolog.Logger
}

// NewHandler creates a new watchlist handler
func NewHandler(refresher Refresher, log zerolog.Logger) *Handler {
	return &Handler{
		refresher: refresher,
		log:       log.With().Str("handler", "watchlist").Logger(),
	}
}

// WatchlistResponse is the current watch and its latest snapshot
type WatchlistResponse struct {
	Watch    watchlist.Watch     `json:"watch"`
	Snapshot *watchlist.Snapshot `json:"snapshot"`
}

// UpdateWatchlistRequest replaces the watch
type UpdateWatchlistRequest struct {
	Symbols  []string `json:"symbols"`
	Range    string   `json:"range"`
	Interval string   `json:"interval"`
}

// HandleGetWatchlist returns the watch and its latest snapshot
func (h *Handler) HandleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, WatchlistResponse{
		Watch:    h.refresher.Current(),
		Snapshot: h.refresher.Latest(),
	})
}

// HandleUpdateWatchlist replaces the watch and starts a refresh
func (h *Handler) HandleUpdateWatchlist(w http.ResponseWriter, r *http.Request) {
	var req UpdateWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	watch := h.refresher.Set(req.Symbols, series.Range(req.Range), series.Interval(req.Interval))
	h.refresher.Trigger()

	h.writeJSON(w, http.StatusAccepted, WatchlistResponse{Watch: watch})
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

// Package handlers provides HTTP handlers for portfolio aggregation.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aristath/invesmart/internal/modules/portfolio"
	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/aristath/invesmart/internal/utils"
	"github.com/rs/zerolog"
)

// Aggregator is the portfolio capability the handlers need
type Aggregator interface {
	Report(ctx context.Context, symbols []string, rng series.Range, interval series.Interval) portfolio.Report
	Merged(ctx context.Context, symbols []string, rng series.Range, interval series.Interval) portfolio.MergedReport
}

// Handler handles portfolio HTTP requests
type Handler struct {
	aggregator Aggregator
	log        zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(aggregator Aggregator, log zerolog.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		log:        log.With().Str("handler", "portfolio").Logger(),
	}
}

type windowQuery struct {
	symbols  []string
	rng      series.Range
	interval series.Interval
}

// parseWindow reads ?symbols=A,B&range=&interval=
func parseWindow(r *http.Request) windowQuery {
	q := r.URL.Query()
	return windowQuery{
		symbols:  portfolio.NormalizeSymbols(utils.ParseCSVValues(q["symbols"])),
		rng:      series.Range(q.Get("range")),
		interval: series.Interval(q.Get("interval")),
	}
}

// HandleGetMetrics returns the equal-weight portfolio and its metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	wq := parseWindow(r)
	if len(wq.symbols) == 0 {
		h.writeError(w, http.StatusBadRequest, "symbols parameter is required")
		return
	}

	report := h.aggregator.Report(r.Context(), wq.symbols, wq.rng, wq.interval)
	if err := r.Context().Err(); err != nil {
		h.log.Warn().Err(err).Strs("symbols", wq.symbols).Msg("Portfolio request aborted")
		h.writeError(w, http.StatusInternalServerError, "request aborted")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// HandleGetMerged returns the per-symbol union view
func (h *Handler) HandleGetMerged(w http.ResponseWriter, r *http.Request) {
	wq := parseWindow(r)
	if len(wq.symbols) == 0 {
		h.writeError(w, http.StatusBadRequest, "symbols parameter is required")
		return
	}

	merged := h.aggregator.Merged(r.Context(), wq.symbols, wq.rng, wq.interval)
	if err := r.Context().Err(); err != nil {
		h.log.Warn().Err(err).Strs("symbols", wq.symbols).Msg("Merged chart request aborted")
		h.writeError(w, http.StatusInternalServerError, "request aborted")
		return
	}

	h.writeJSON(w, http.StatusOK, merged)
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

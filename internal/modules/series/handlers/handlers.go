// Package handlers provides HTTP handlers for price series.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/rs/zerolog"
)

// SeriesFetcher is the acquisition capability the handlers need
type SeriesFetcher interface {
	Fetch(ctx context.Context, req series.Request) series.Result
}

// Handler handles series HTTP requests
type Handler struct {
	service SeriesFetcher
	log     zerolog.Logger
}

// NewHandler creates a new series handler
func NewHandler(service SeriesFetcher, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "series").Logger(),
	}
}

// HandleGetChart returns the price series for ?symbol=&range=&interval=.
// An exhausted fallback chain yields an empty array, not an error.
func (h *Handler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := strings.TrimSpace(q.Get("symbol"))
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "symbol parameter is required")
		return
	}

	res := h.service.Fetch(r.Context(), series.Request{
		Symbol:   symbol,
		Range:    series.Range(q.Get("range")),
		Interval: series.Interval(q.Get("interval")),
	})
	if res.Err != nil {
		h.log.Error().Err(res.Err).Str("symbol", symbol).Msg("Chart request failed")
		h.writeError(w, http.StatusInternalServerError, "failed to fetch chart data")
		return
	}

	out := res.Series
	if out == nil {
		out = series.Series{}
	}

	w.Header().Set("X-Series-Source", string(res.Source))
	h.writeJSON(w, http.StatusOK, out)
}

type rangeInfo struct {
	Range     series.Range      `json:"range"`
	Days      int               `json:"days"`
	Intervals []series.Interval `json:"intervals"`
}

// HandleGetRanges returns the supported windows and their allowed intervals
func (h *Handler) HandleGetRanges(w http.ResponseWriter, r *http.Request) {
	ranges := make([]rangeInfo, 0, len(series.Ranges))
	for _, rg := range series.Ranges {
		ranges = append(ranges, rangeInfo{
			Range:     rg,
			Days:      rg.Days(),
			Intervals: series.AllowedIntervals[rg],
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ranges":           ranges,
		"default_range":    series.DefaultRange,
		"default_interval": series.DefaultInterval,
	})
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

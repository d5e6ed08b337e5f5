package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/metrics", h.HandleGetMetrics) // Equal-weight series + metrics
	})

	r.Route("/charts", func(r chi.Router) {
		r.Get("/merged", h.HandleGetMerged) // Per-symbol union by timestamp
	})
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the public chart endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chart", h.HandleGetChart)
}

// RegisterAPIRoutes registers series metadata routes under /api
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/ranges", h.HandleGetRanges)
}

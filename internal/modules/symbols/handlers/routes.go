package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the public search endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/search", h.HandleSearch)
}

// RegisterAPIRoutes registers symbol routes under /api
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Route("/symbols", func(r chi.Router) {
		r.Get("/popular", h.HandleGetPopular)
	})
}

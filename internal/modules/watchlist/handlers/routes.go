package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers watchlist routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", h.HandleGetWatchlist)
		r.Put("/", h.HandleUpdateWatchlist)
	})
}

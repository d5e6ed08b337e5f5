// Package server provides the HTTP server and routing for InveSmart.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/invesmart/internal/config"
	"github.com/aristath/invesmart/internal/di"
	portfoliohandlers "github.com/aristath/invesmart/internal/modules/portfolio/handlers"
	"github.com/aristath/invesmart/internal/modules/series"
	serieshandlers "github.com/aristath/invesmart/internal/modules/series/handlers"
	symbolshandlers "github.com/aristath/invesmart/internal/modules/symbols/handlers"
	watchlisthandlers "github.com/aristath/invesmart/internal/modules/watchlist/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services
	Port      int
	DevMode   bool
}

const (
	// minRequestTimeout is the floor for the REST route group
	minRequestTimeout = 60 * time.Second
	// writeSlack covers encoding the response after the handler deadline
	writeSlack = 5 * time.Second
)

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	container      *di.Container
	systemHandlers *SystemHandlers
	statusMonitor  *StatusMonitor
	requestTimeout time.Duration
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	systemHandlers := NewSystemHandlers(cfg.Log, cfg.Container.CacheDB)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg,
		container:      cfg.Container,
		systemHandlers: systemHandlers,
		statusMonitor:  NewStatusMonitor(cfg.Container.EventManager, systemHandlers, cfg.Log),
		requestTimeout: requestTimeout(cfg.Config),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	// REST routes extend the write deadline per request, streams clear it
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// requestTimeout fits a full fallback walk at the configured provider
// timeout, never going below minRequestTimeout.
func requestTimeout(cfg *config.Config) time.Duration {
	timeout := minRequestTimeout
	if cfg == nil {
		return timeout
	}
	if budget := series.FetchBudget(cfg.Yahoo.Timeout) + writeSlack; budget > timeout {
		timeout = budget
	}
	return timeout
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Series-Source"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	c := s.container
	seriesHandler := serieshandlers.NewHandler(c.SeriesService, s.log)
	symbolsHandler := symbolshandlers.NewHandler(c.SymbolsService, s.log)
	portfolioHandler := portfoliohandlers.NewHandler(c.Aggregator, s.log)
	watchlistHandler := watchlisthandlers.NewHandler(c.Refresher, s.log)
	eventsStream := NewEventsStreamHandler(c.EventBus, s.log)
	eventsWS := NewEventsWebSocketHandler(c.EventBus, s.log)

	// Long-lived streams skip the request timeout and compression
	s.router.Route("/api/events", func(r chi.Router) {
		r.Get("/stream", eventsStream.ServeHTTP)
		r.Get("/ws", eventsWS.ServeHTTP)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(writeDeadlineMiddleware(s.requestTimeout + writeSlack))
		r.Use(middleware.Timeout(s.requestTimeout))
		if !s.cfg.DevMode {
			r.Use(middleware.Compress(5))
		}

		// Health check
		r.Get("/health", s.handleHealth)

		// Public chart and search endpoints
		seriesHandler.RegisterRoutes(r)
		symbolsHandler.RegisterRoutes(r)

		r.Route("/api", func(r chi.Router) {
			// Yahoo-compatible aliases
			r.Route("/yf", func(r chi.Router) {
				seriesHandler.RegisterRoutes(r)
				symbolsHandler.RegisterRoutes(r)
			})

			seriesHandler.RegisterAPIRoutes(r)
			symbolsHandler.RegisterAPIRoutes(r)
			portfolioHandler.RegisterRoutes(r)
			watchlistHandler.RegisterRoutes(r)

			r.Route("/system", func(r chi.Router) {
				r.Get("/stats", s.systemHandlers.HandleSystemStats)
			})
		})
	})
}

// Start starts the HTTP server and background monitors
func (s *Server) Start() error {
	// Start status monitor (check every 60 seconds)
	s.statusMonitor.Start(60 * time.Second)
	s.log.Info().Msg("Status monitor started")

	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.statusMonitor.Stop()
	return s.server.Shutdown(ctx)
}

// writeDeadlineMiddleware moves the connection write deadline past the
// server-wide WriteTimeout, so slow fallback answers still reach the client.
func writeDeadlineMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d))
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

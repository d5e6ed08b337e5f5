// Package main is the entry point for the InveSmart market data service.
// The service acquires per-symbol price series from Yahoo Finance with a
// fallback chain, combines them into equal-weight portfolios, and keeps a
// periodically refreshed watchlist that is streamed to clients.
//
// The application follows the same layering throughout:
// - Provider clients behind the domain.MarketDataProvider interface
// - Dependency injection via DI container
// - Module services for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/invesmart/internal/config"
	"github.com/aristath/invesmart/internal/di"
	"github.com/aristath/invesmart/internal/server"
	"github.com/aristath/invesmart/pkg/logger"
)

// main is the application entry point. It orchestrates the startup sequence:
// 1. Loads configuration from defaults, the optional YAML file and environment
// 2. Initializes logging
// 3. Wires all dependencies via DI container (cache database, provider, services, jobs)
// 4. Starts the scheduler and runs the first watchlist refresh
// 5. Starts the HTTP server
// 6. Waits for shutdown signal and performs graceful shutdown
func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		// This ensures we can log the configuration error even if config loading fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	// Pretty mode enables human-readable output for development
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("provider", cfg.Yahoo.Provider).
		Bool("cache", cfg.Cache.Enabled).
		Msg("Starting InveSmart")

	// Wire all dependencies using DI container
	// - The cache database is opened and migrated first (when enabled)
	// - The market data provider is built and wrapped in the response cache
	// - Series, portfolio, symbols and watchlist services share the provider
	// - Background jobs are registered but the scheduler is not started yet
	container, _, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// Start scheduler
	// Jobs run on their cron schedules from here on:
	// - watchlist refresh (REFRESH_SCHEDULE)
	// - cache cleanup and database check (CACHE_CLEANUP_SCHEDULE)
	container.Scheduler.Start()

	// Initial refresh so the watchlist has a snapshot before the first tick.
	// Triggered in the background; a slow provider must not delay startup.
	container.Refresher.Trigger()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine
	// The HTTP server runs in a separate goroutine so the main goroutine can
	// wait for shutdown signals.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	// The application blocks here until it receives SIGINT (Ctrl+C) or SIGTERM (kill command).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop the refresher first so an in-flight cycle is cancelled instead of
	// holding up the scheduler.
	container.Refresher.Stop()

	// Stop scheduler
	// Waits for running jobs to return.
	container.Scheduler.Stop()

	// Graceful shutdown
	// The HTTP server is given up to 10 seconds to finish processing in-flight requests
	// and close connections gracefully. If the timeout is exceeded, the server is forced
	// to shutdown, which may interrupt active requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Close databases
	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close container")
	}

	log.Info().Msg("Server stopped")
}

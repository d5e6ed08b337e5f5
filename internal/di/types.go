// Package di provides dependency injection type definitions.
//
// The Container is the single source of truth for service instances and is
// passed to the server and main for access to services.
package di

import (
	"github.com/aristath/invesmart/internal/clientdata"
	"github.com/aristath/invesmart/internal/database"
	"github.com/aristath/invesmart/internal/domain"
	"github.com/aristath/invesmart/internal/events"
	"github.com/aristath/invesmart/internal/modules/portfolio"
	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/aristath/invesmart/internal/modules/symbols"
	"github.com/aristath/invesmart/internal/modules/watchlist"
	"github.com/aristath/invesmart/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Databases (nil when the cache is disabled)
	CacheDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository

	// Clients
	Provider domain.MarketDataProvider

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Services
	SeriesService  *series.Service
	Aggregator     *portfolio.Aggregator
	SymbolsService *symbols.Service
	Refresher      *watchlist.Refresher

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered background jobs
type JobInstances struct {
	WatchlistRefresh scheduler.Job
	CacheCleanup     scheduler.Job // nil when the cache is disabled
	CheckDatabases   scheduler.Job // nil when the cache is disabled
}

// Close releases the container's resources. Safe to call on a partially
// initialized container.
func (c *Container) Close() error {
	if c.Refresher != nil {
		c.Refresher.Stop()
	}
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}

package di

import (
	"fmt"

	"github.com/aristath/invesmart/internal/clientdata"
	"github.com/aristath/invesmart/internal/config"
	"github.com/aristath/invesmart/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs registers background jobs with the container's scheduler.
// The scheduler is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		WatchlistRefresh: container.Refresher,
	}

	if err := container.Scheduler.AddJob(cfg.Watchlist.RefreshSchedule, container.Refresher); err != nil {
		return nil, fmt.Errorf("failed to register watchlist refresh job: %w", err)
	}

	if container.ClientDataRepo != nil {
		cleanup := clientdata.NewCleanupJob(container.ClientDataRepo, log)
		if err := container.Scheduler.AddJob(cfg.Cache.CleanupSchedule, cleanup); err != nil {
			return nil, fmt.Errorf("failed to register cache cleanup job: %w", err)
		}
		jobs.CacheCleanup = cleanup

		check := scheduler.NewCheckDatabasesJob(log, container.CacheDB)
		if err := container.Scheduler.AddJob(cfg.Cache.CleanupSchedule, check); err != nil {
			return nil, fmt.Errorf("failed to register database check job: %w", err)
		}
		jobs.CheckDatabases = check
	}

	log.Info().Int("jobs", container.Scheduler.JobCount()).Msg("Background jobs registered")

	return jobs, nil
}

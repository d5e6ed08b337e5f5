package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/invesmart/internal/database"
	"github.com/rs/zerolog"
)

const walWarnFrames = 1000

// CheckDatabasesJob runs a quick integrity check and a passive WAL
// checkpoint on each database.
type CheckDatabasesJob struct {
	log       zerolog.Logger
	databases []*database.DB
	timeout   time.Duration
}

// NewCheckDatabasesJob creates a new CheckDatabasesJob. Nil databases are skipped.
func NewCheckDatabasesJob(log zerolog.Logger, databases ...*database.DB) *CheckDatabasesJob {
	return &CheckDatabasesJob{
		log:       log.With().Str("job", "check_databases").Logger(),
		databases: databases,
		timeout:   30 * time.Second,
	}
}

// Name returns the job name
func (j *CheckDatabasesJob) Name() string {
	return "check_databases"
}

// Run executes the check
func (j *CheckDatabasesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	checked := 0
	for _, db := range j.databases {
		if db == nil {
			continue
		}

		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Database integrity check failed")
			return fmt.Errorf("database %s failed integrity check: %w", db.Name(), err)
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, frames, checkpointed int
		err := db.Conn().QueryRowContext(ctx, "PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to check WAL checkpoint")
		} else if frames > walWarnFrames {
			j.log.Warn().
				Str("database", db.Name()).
				Int("wal_frames", frames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, checkpoint may be needed")
		}

		checked++
	}

	j.log.Debug().Int("checked", checked).Msg("Database check completed")
	return nil
}

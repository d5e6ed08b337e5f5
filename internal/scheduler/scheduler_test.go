package scheduler

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/invesmart/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("not a schedule", &countingJob{})
	assert.Error(t, err)
	assert.Equal(t, 0, s.JobCount())
}

func TestAddJob_Runs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))
	assert.Equal(t, 1, s.JobCount())

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

// blockingJob holds its first run open until release is closed
type blockingJob struct {
	runs    atomic.Int32
	release chan struct{}
}

func (j *blockingJob) Run() error {
	j.runs.Add(1)
	<-j.release
	return nil
}

func (j *blockingJob) Name() string { return "blocking" }

func TestAddJob_SkipsTickWhileStillRunning(t *testing.T) {
	s := New(zerolog.Nop())
	job := &blockingJob{release: make(chan struct{})}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	// Two more ticks pass while the first run is still blocked
	time.Sleep(2200 * time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())

	close(job.release)
	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

type panickingJob struct {
	runs atomic.Int32
}

func (j *panickingJob) Run() error {
	j.runs.Add(1)
	panic("boom")
}

func (j *panickingJob) Name() string { return "panicking" }

func TestAddJob_RecoversPanics(t *testing.T) {
	s := New(zerolog.Nop())
	job := &panickingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 }, 4*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestRunNow_ReturnsJobError(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	err := s.RunNow(job)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestCheckDatabasesJob(t *testing.T) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	job := NewCheckDatabasesJob(zerolog.Nop(), db, nil)
	assert.Equal(t, "check_databases", job.Name())
	assert.NoError(t, job.Run())
}

func TestCheckDatabasesJob_NoDatabases(t *testing.T) {
	job := NewCheckDatabasesJob(zerolog.Nop())
	assert.NoError(t, job.Run())
}

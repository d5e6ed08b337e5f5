// Package watchlist keeps a periodically refreshed portfolio view of a set
// of symbols.
//
// Every refresh cycle takes a generation number. Starting a cycle, replacing
// the watch or stopping the refresher advances the generation and cancels
// the cycle in flight, and a cycle only publishes its snapshot while its
// generation is still current. A slow cycle therefore can never overwrite
// the result of a newer one.
package watchlist

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/invesmart/internal/events"
	"github.com/aristath/invesmart/internal/modules/portfolio"
	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const moduleName = "watchlist"

// Fetcher fans a window out across symbols
type Fetcher interface {
	FetchAll(ctx context.Context, symbols []string, rng series.Range, interval series.Interval) map[string]series.Series
}

// Watch is the set of symbols being refreshed
type Watch struct {
	ID       string          `json:"id"`
	Symbols  []string        `json:"symbols"`
	Range    series.Range    `json:"range"`
	Interval series.Interval `json:"interval"`
}

// Snapshot is the applied result of one refresh cycle
type Snapshot struct {
	WatchID    string                     `json:"watch_id"`
	Generation uint64                     `json:"generation"`
	FetchedAt  time.Time                  `json:"fetched_at"`
	Series     map[string]series.Series   `json:"series"`
	Merged     []portfolio.MergedRow      `json:"merged"`
	Rows       []portfolio.EqualWeightRow `json:"rows"`
	Metrics    portfolio.Metrics          `json:"metrics"`
}

// Refresher re-acquires the watch on every Run
type Refresher struct {
	fetcher Fetcher
	events  *events.Manager
	log     zerolog.Logger
	now     func() time.Time

	base       context.Context
	stopBase   context.CancelFunc
	mu         sync.Mutex
	watch      Watch
	generation uint64
	cancel     context.CancelFunc
	latest     *Snapshot
}

// NewRefresher creates a refresher for the initial watch. eventManager may be nil.
func NewRefresher(fetcher Fetcher, eventManager *events.Manager, symbols []string, rng series.Range, interval series.Interval, log zerolog.Logger) *Refresher {
	base, stop := context.WithCancel(context.Background())
	return &Refresher{
		fetcher:  fetcher,
		events:   eventManager,
		log:      log.With().Str("service", moduleName).Logger(),
		now:      time.Now,
		base:     base,
		stopBase: stop,
		watch:    newWatch(symbols, rng, interval),
	}
}

func newWatch(symbols []string, rng series.Range, interval series.Interval) Watch {
	rng, interval = series.NormalizeForDisplay(rng, interval)
	return Watch{
		ID:       uuid.NewString(),
		Symbols:  portfolio.NormalizeSymbols(symbols),
		Range:    rng,
		Interval: interval,
	}
}

// Name returns the job name
func (r *Refresher) Name() string {
	return "watchlist_refresh"
}

// Current returns the active watch
func (r *Refresher) Current() Watch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyWatch(r.watch)
}

// Latest returns the most recently applied snapshot, or nil before the
// first successful cycle of the current watch.
func (r *Refresher) Latest() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Set replaces the watch. Any cycle in flight for the old watch is
// cancelled and its result discarded.
func (r *Refresher) Set(symbols []string, rng series.Range, interval series.Interval) Watch {
	watch := newWatch(symbols, rng, interval)

	r.mu.Lock()
	r.watch = watch
	r.latest = nil
	r.generation++
	r.cancelInFlightLocked()
	r.mu.Unlock()

	r.log.Info().
		Str("watch_id", watch.ID).
		Strs("symbols", watch.Symbols).
		Str("range", string(watch.Range)).
		Str("interval", string(watch.Interval)).
		Msg("Watchlist replaced")

	if r.events != nil {
		r.events.Emit(moduleName, &events.WatchlistChangedData{
			WatchID:  watch.ID,
			Symbols:  watch.Symbols,
			Range:    string(watch.Range),
			Interval: string(watch.Interval),
		})
	}

	return copyWatch(watch)
}

// Run performs one refresh cycle
func (r *Refresher) Run() error {
	if r.base.Err() != nil {
		return nil
	}

	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.cancelInFlightLocked()
	ctx, cancel := context.WithCancel(r.base)
	r.cancel = cancel
	watch := copyWatch(r.watch)
	r.mu.Unlock()
	defer cancel()

	log := r.log.With().Str("watch_id", watch.ID).Uint64("generation", gen).Logger()

	if len(watch.Symbols) == 0 {
		log.Debug().Msg("Watchlist empty, nothing to refresh")
		return nil
	}

	start := time.Now()
	data := r.fetcher.FetchAll(ctx, watch.Symbols, watch.Range, watch.Interval)
	rows := portfolio.MergeEqualWeight(data)
	snapshot := &Snapshot{
		WatchID:    watch.ID,
		Generation: gen,
		FetchedAt:  r.now(),
		Series:     data,
		Merged:     portfolio.MergeByTime(data),
		Rows:       rows,
		Metrics:    portfolio.ComputeMetrics(rows),
	}

	r.mu.Lock()
	if gen != r.generation || ctx.Err() != nil {
		current := r.generation
		r.mu.Unlock()
		log.Debug().Uint64("current_generation", current).Msg("Discarding stale refresh result")
		return nil
	}
	r.latest = snapshot
	r.cancel = nil
	r.mu.Unlock()

	log.Info().
		Int("symbols", len(watch.Symbols)).
		Int("points", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Watchlist refreshed")

	if r.events != nil {
		r.events.Emit(moduleName, &events.WatchlistRefreshedData{
			WatchID:          watch.ID,
			Generation:       gen,
			FetchedAt:        snapshot.FetchedAt,
			Symbols:          watch.Symbols,
			EmptySymbols:     portfolio.EmptySymbols(data),
			Points:           len(rows),
			CumulativeReturn: snapshot.Metrics.CumulativeReturn,
			Volatility:       snapshot.Metrics.Volatility,
			SharpeRatio:      snapshot.Metrics.SharpeRatio,
		})
	}

	return nil
}

// Trigger starts a refresh cycle in the background
func (r *Refresher) Trigger() {
	go func() {
		if err := r.Run(); err != nil {
			r.log.Error().Err(err).Msg("Triggered refresh failed")
		}
	}()
}

// Stop cancels the cycle in flight. Later Runs are no-ops.
func (r *Refresher) Stop() {
	r.mu.Lock()
	r.generation++
	r.cancelInFlightLocked()
	r.mu.Unlock()
	r.stopBase()
}

func (r *Refresher) cancelInFlightLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func copyWatch(w Watch) Watch {
	w.Symbols = append([]string(nil), w.Symbols...)
	return w
}

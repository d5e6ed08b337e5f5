// Package portfolio combines per-symbol price series into an equal-weight
// portfolio and derives its return statistics.
package portfolio

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/aristath/invesmart/internal/utils"
	"github.com/aristath/invesmart/pkg/formulas"
	"github.com/rs/zerolog"
)

const slowFetchAll = 30 * time.Second

// SeriesFetcher acquires one symbol's series. It never fails; an
// unavailable symbol yields an empty series.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, req series.Request) series.Series
}

// Aggregator fans series requests out across symbols
type Aggregator struct {
	fetcher SeriesFetcher
	log     zerolog.Logger
}

// NewAggregator creates a portfolio aggregator
func NewAggregator(fetcher SeriesFetcher, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		log:     log.With().Str("service", "portfolio").Logger(),
	}
}

// NormalizeSymbols trims and de-duplicates symbols, keeping the first
// occurrence order. Case is preserved so results are keyed by the symbol
// exactly as requested.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// FetchAll acquires every symbol's series concurrently. Each symbol is
// fetched independently: a slow or empty symbol does not affect the others.
// Every requested symbol has an entry in the result, possibly empty.
func (a *Aggregator) FetchAll(ctx context.Context, symbols []string, rng series.Range, interval series.Interval) map[string]series.Series {
	symbols = NormalizeSymbols(symbols)
	results := make(map[string]series.Series, len(symbols))
	defer utils.OperationTimer("portfolio_fetch_all", slowFetchAll, a.log)()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			s := a.fetcher.FetchSeries(ctx, series.Request{Symbol: symbol, Range: rng, Interval: interval})
			if s == nil {
				s = series.Series{}
			}

			mu.Lock()
			results[symbol] = s
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return results
}

// Report builds the equal-weight portfolio for symbols. The window is
// coerced to a supported range/interval combination first.
func (a *Aggregator) Report(ctx context.Context, symbols []string, rng series.Range, interval series.Interval) Report {
	rng, interval = series.NormalizeForDisplay(rng, interval)
	symbols = NormalizeSymbols(symbols)

	data := a.FetchAll(ctx, symbols, rng, interval)
	rows := MergeEqualWeight(data)
	closes := Closes(rows)

	empty := EmptySymbols(data)
	if len(empty) > 0 {
		a.log.Warn().Strs("symbols", empty).Msg("Symbols without usable closes, portfolio intersection is empty")
	}

	return Report{
		Symbols:      symbols,
		Range:        rng,
		Interval:     interval,
		Rows:         rows,
		Metrics:      ComputeMetrics(rows),
		MaxDrawdown:  formulas.CalculateMaxDrawdown(closes),
		RSI:          formulas.CalculateRSI(closes, formulas.DefaultRSILength),
		EmptySymbols: empty,
	}
}

// Merged builds the per-symbol union view for symbols
func (a *Aggregator) Merged(ctx context.Context, symbols []string, rng series.Range, interval series.Interval) MergedReport {
	rng, interval = series.NormalizeForDisplay(rng, interval)
	symbols = NormalizeSymbols(symbols)

	return MergedReport{
		Symbols:  symbols,
		Range:    rng,
		Interval: interval,
		Rows:     MergeByTime(a.FetchAll(ctx, symbols, rng, interval)),
	}
}

// EmptySymbols lists, sorted, the symbols whose series has no usable close
func EmptySymbols(data map[string]series.Series) []string {
	empty := []string{}
	for symbol, s := range data {
		if len(closesByTime(s)) == 0 {
			empty = append(empty, symbol)
		}
	}
	sort.Strings(empty)
	return empty
}

package domain

import (
	"context"
	"time"
)

// Provider-agnostic market data types.
// Nullable numeric fields are pointers: providers regularly omit or null out
// individual OHLC values and downstream code must be able to tell.

// ChartOptions selects a chart window
type ChartOptions struct {
	Range          string // Lookback window (1d, 5d, 1mo, ...)
	Interval       string // Sampling granularity (1m, 5m, 1d, ...)
	IncludePrePost bool   // Include pre/post market bars
}

// SearchOptions limits search results
type SearchOptions struct {
	QuotesCount int
	NewsCount   int
}

// Bar is a single OHLCV observation
type Bar struct {
	Time   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *int64
}

// Quote is a current market snapshot
type Quote struct {
	Symbol               string
	RegularMarketPrice   *float64
	RegularMarketOpen    *float64
	RegularMarketDayHigh *float64
	RegularMarketDayLow  *float64
	RegularMarketVolume  *int64
	RegularMarketTime    time.Time
}

// SearchMatch is one instrument returned by a symbol search
type SearchMatch struct {
	Symbol    string
	ShortName string
	LongName  string
	Exchange  string
	ExchDisp  string
	QuoteType string
	TypeDisp  string
}

// MarketDataProvider is the external price source.
// Implementations return (nil or empty, nil) when the provider has no data
// and an error only when the request itself failed.
type MarketDataProvider interface {
	// Chart returns bars for a range/interval window
	Chart(ctx context.Context, symbol string, opts ChartOptions) ([]Bar, error)

	// Historical returns daily bars between period1 and period2
	Historical(ctx context.Context, symbol string, period1, period2 time.Time) ([]Bar, error)

	// Quote returns the current snapshot for a symbol
	Quote(ctx context.Context, symbol string) (*Quote, error)

	// Search finds instruments matching a free-text query
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchMatch, error)
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 {
	return &v
}

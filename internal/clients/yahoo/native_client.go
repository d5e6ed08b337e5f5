package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/invesmart/internal/domain"
	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/lookup"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// NativeClient implements domain.MarketDataProvider using the go-yfinance library.
// The library handles Yahoo's cookie/crumb handshake, which the v7 quote
// endpoint increasingly requires.
type NativeClient struct {
	log zerolog.Logger
}

// NewNativeClient creates a go-yfinance backed provider
func NewNativeClient(log zerolog.Logger) *NativeClient {
	return &NativeClient{
		log: log.With().Str("client", "yahoo_native").Logger(),
	}
}

// Chart fetches bars for a range/interval window
func (c *NativeClient) Chart(ctx context.Context, symbol string, opts domain.ChartOptions) ([]domain.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := c.history(symbol, chartParams(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart: %w", err)
	}

	return bars, nil
}

// Historical fetches daily bars between period1 and period2
func (c *NativeClient) Historical(ctx context.Context, symbol string, period1, period2 time.Time) ([]domain.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := c.history(symbol, historicalParams(period1, period2))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data: %w", err)
	}

	return bars, nil
}

func chartParams(opts domain.ChartOptions) models.HistoryParams {
	return models.HistoryParams{
		Period:   opts.Range,
		Interval: opts.Interval,
		PrePost:  opts.IncludePrePost,
	}
}

// historicalParams requests an explicit period1/period2 window, which
// go-yfinance prefers over Period when Start or End is set.
func historicalParams(period1, period2 time.Time) models.HistoryParams {
	start, end := period1, period2
	return models.HistoryParams{
		Interval:   "1d",
		Start:      &start,
		End:        &end,
		AutoAdjust: true,
	}
}

func (c *NativeClient) history(symbol string, params models.HistoryParams) ([]domain.Bar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	history, err := t.History(params)
	if err != nil {
		return nil, err
	}

	bars := make([]domain.Bar, 0, len(history))
	for _, bar := range history {
		bars = append(bars, domain.Bar{
			Time:   bar.Date.UTC(),
			Open:   domain.Float64(bar.Open),
			High:   domain.Float64(bar.High),
			Low:    domain.Float64(bar.Low),
			Close:  domain.Float64(bar.Close),
			Volume: domain.Int64(int64(bar.Volume)),
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", params.Period).
		Bool("prepost", params.PrePost).
		Str("interval", params.Interval).
		Int("count", len(bars)).
		Msg("Fetched history")

	return bars, nil
}

// Quote fetches the current regular-session snapshot for a symbol
func (c *NativeClient) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	q, err := t.Quote()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}

	return quoteFromModel(symbol, q), nil
}

// quoteFromModel maps a go-yfinance quote. The library reports missing
// numbers as zero, so only positive values are kept.
func quoteFromModel(symbol string, q *models.Quote) *domain.Quote {
	if q == nil {
		return nil
	}

	positive := func(v float64) *float64 {
		if v > 0 {
			return domain.Float64(v)
		}
		return nil
	}

	quote := &domain.Quote{
		Symbol:               symbol,
		RegularMarketPrice:   positive(q.RegularMarketPrice),
		RegularMarketOpen:    positive(q.RegularMarketOpen),
		RegularMarketDayHigh: positive(q.RegularMarketDayHigh),
		RegularMarketDayLow:  positive(q.RegularMarketDayLow),
	}
	if q.RegularMarketVolume > 0 {
		quote.RegularMarketVolume = domain.Int64(q.RegularMarketVolume)
	}
	if !q.RegularMarketTime.IsZero() {
		quote.RegularMarketTime = q.RegularMarketTime.UTC()
	}

	return quote
}

// Search finds equities matching a query. The lookup endpoint only yields
// symbols, so names fall back to the symbol downstream.
func (c *NativeClient) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lookupClient, err := lookup.New(query)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup client: %w", err)
	}
	defer lookupClient.Close()

	results, err := lookupClient.Stock(opts.QuotesCount)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	matches := make([]domain.SearchMatch, 0, len(results))
	for _, r := range results {
		if r.Symbol == "" {
			continue
		}
		matches = append(matches, domain.SearchMatch{Symbol: r.Symbol})
	}

	return matches, nil
}

package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/invesmart/internal/clientdata"
	"github.com/aristath/invesmart/internal/domain"
	"github.com/rs/zerolog"
)

// CachedProvider is a cache-first decorator around any MarketDataProvider.
// Only non-empty answers are stored. When the upstream call fails and an
// expired entry exists, the expired entry is served.
type CachedProvider struct {
	next domain.MarketDataProvider
	repo *clientdata.Repository
	log  zerolog.Logger
}

// NewCachedProvider wraps next with the client data cache
func NewCachedProvider(next domain.MarketDataProvider, repo *clientdata.Repository, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		next: next,
		repo: repo,
		log:  log.With().Str("client", "yahoo_cache").Logger(),
	}
}

// Chart serves chart bars from cache when fresh
func (p *CachedProvider) Chart(ctx context.Context, symbol string, opts domain.ChartOptions) ([]domain.Bar, error) {
	key := fmt.Sprintf("chart|%s|%s|%s|%t", symbol, opts.Range, opts.Interval, opts.IncludePrePost)

	return p.bars(key, clientdata.ChartTTL(opts.Interval), func() ([]domain.Bar, error) {
		return p.next.Chart(ctx, symbol, opts)
	})
}

// Historical serves daily bars from cache when fresh. Keys are day
// granular so repeated calls within a day share an entry.
func (p *CachedProvider) Historical(ctx context.Context, symbol string, period1, period2 time.Time) ([]domain.Bar, error) {
	key := fmt.Sprintf("history|%s|%s|%s", symbol,
		period1.UTC().Format("2006-01-02"), period2.UTC().Format("2006-01-02"))

	return p.bars(key, clientdata.TTLChartDaily, func() ([]domain.Bar, error) {
		return p.next.Historical(ctx, symbol, period1, period2)
	})
}

func (p *CachedProvider) bars(key string, ttl time.Duration, fetch func() ([]domain.Bar, error)) ([]domain.Bar, error) {
	var cached []domain.Bar
	if found, err := p.repo.GetIfFresh(clientdata.TableChart, key, &cached); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	} else if found {
		return cached, nil
	}

	bars, err := fetch()
	if err != nil {
		var stale []domain.Bar
		if found, _ := p.repo.Get(clientdata.TableChart, key, &stale); found {
			p.log.Warn().Err(err).Str("key", key).Msg("Provider failed, serving stale bars")
			return stale, nil
		}
		return nil, err
	}

	if len(bars) > 0 {
		if err := p.repo.Store(clientdata.TableChart, key, bars, ttl); err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}

	return bars, nil
}

// Quote serves quotes from cache when fresh
func (p *CachedProvider) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	var cached domain.Quote
	if found, err := p.repo.GetIfFresh(clientdata.TableQuote, symbol, &cached); err != nil {
		p.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache read failed")
	} else if found {
		return &cached, nil
	}

	quote, err := p.next.Quote(ctx, symbol)
	if err != nil {
		var stale domain.Quote
		if found, _ := p.repo.Get(clientdata.TableQuote, symbol, &stale); found {
			p.log.Warn().Err(err).Str("symbol", symbol).Msg("Provider failed, serving stale quote")
			return &stale, nil
		}
		return nil, err
	}

	if quote != nil && quote.RegularMarketPrice != nil {
		if err := p.repo.Store(clientdata.TableQuote, symbol, quote, clientdata.TTLQuote); err != nil {
			p.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache write failed")
		}
	}

	return quote, nil
}

// Search serves search results from cache when fresh
func (p *CachedProvider) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchMatch, error) {
	key := fmt.Sprintf("%s|%d|%d", strings.ToLower(strings.TrimSpace(query)), opts.QuotesCount, opts.NewsCount)

	var cached []domain.SearchMatch
	if found, err := p.repo.GetIfFresh(clientdata.TableSearch, key, &cached); err != nil {
		p.log.Warn().Err(err).Str("query", query).Msg("Cache read failed")
	} else if found {
		return cached, nil
	}

	matches, err := p.next.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	if len(matches) > 0 {
		if err := p.repo.Store(clientdata.TableSearch, key, matches, clientdata.TTLSearch); err != nil {
			p.log.Warn().Err(err).Str("query", query).Msg("Cache write failed")
		}
	}

	return matches, nil
}

package series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/invesmart/internal/domain"
	"github.com/aristath/invesmart/internal/events"
	"github.com/rs/zerolog"
)

var (
	// ErrProviderUnavailable marks a failed tier. It is logged, never returned.
	ErrProviderUnavailable = errors.New("market data provider unavailable")
	// ErrNoData marks exhaustion of every tier. Callers see an empty series.
	ErrNoData = errors.New("no data available")
)

// Service acquires price series through an ordered fallback chain
type Service struct {
	provider domain.MarketDataProvider
	events   *events.Manager
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a series service. eventManager may be nil.
func NewService(provider domain.MarketDataProvider, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		events:   eventManager,
		log:      log.With().Str("service", "series").Logger(),
		now:      time.Now,
	}
}

type tierFunc func(ctx context.Context, req Request) (Series, error)

// tierCount is the number of provider calls a full walk can make
const tierCount = 4

// FetchBudget is the longest Fetch can take when every provider call runs
// to providerTimeout.
func FetchBudget(providerTimeout time.Duration) time.Duration {
	return tierCount * providerTimeout
}

// FetchSeries returns the best available series for req, possibly empty.
func (s *Service) FetchSeries(ctx context.Context, req Request) Series {
	return s.Fetch(ctx, req).Series
}

// Fetch walks the tiers in order and returns the first non-empty series:
//
//  1. chart with the exact window and pre/post market data
//  2. chart with a provider-friendly substitute window
//  3. daily history covering the range's day count
//  4. a one-point series synthesized from the current quote
//
// Each tier's failure is logged and swallowed.
func (s *Service) Fetch(ctx context.Context, req Request) Result {
	req = req.Normalize()

	tiers := []struct {
		tier  Tier
		fetch tierFunc
	}{
		{TierChart, s.fetchChart},
		{TierChartFallback, s.fetchSafeChart},
		{TierHistorical, s.fetchHistorical},
		{TierQuote, s.fetchQuote},
	}

	log := s.log.With().
		Str("symbol", req.Symbol).
		Str("range", string(req.Range)).
		Str("interval", string(req.Interval)).
		Logger()

	for _, t := range tiers {
		if err := ctx.Err(); err != nil {
			log.Debug().Err(err).Str("tier", string(t.tier)).Msg("Series fetch aborted")
			return Result{Request: req, Series: Series{}, Source: TierNone, Err: fmt.Errorf("series fetch aborted: %w", err)}
		}

		series, err := t.fetch(ctx, req)
		if err != nil {
			log.Warn().
				Err(fmt.Errorf("%w: %v", ErrProviderUnavailable, err)).
				Str("tier", string(t.tier)).
				Msg("Series tier failed")
			continue
		}
		if len(series) == 0 {
			log.Debug().Str("tier", string(t.tier)).Msg("Series tier returned no data")
			continue
		}

		log.Debug().
			Str("tier", string(t.tier)).
			Int("count", len(series)).
			Msg("Series fetched")

		if t.tier != TierChart && s.events != nil {
			s.events.Emit("series", &events.SeriesFallbackData{
				Symbol:   req.Symbol,
				Range:    string(req.Range),
				Interval: string(req.Interval),
				Source:   string(t.tier),
				Points:   len(series),
			})
		}

		return Result{Request: req, Series: series, Source: t.tier}
	}

	if err := ctx.Err(); err != nil {
		return Result{Request: req, Series: Series{}, Source: TierNone, Err: fmt.Errorf("series fetch aborted: %w", err)}
	}

	log.Info().Err(ErrNoData).Msg("All series tiers exhausted")
	return Result{Request: req, Series: Series{}, Source: TierNone}
}

func (s *Service) fetchChart(ctx context.Context, req Request) (Series, error) {
	bars, err := s.provider.Chart(ctx, req.Symbol, domain.ChartOptions{
		Range:          string(req.Range),
		Interval:       string(req.Interval),
		IncludePrePost: true,
	})
	if err != nil {
		return nil, err
	}
	return fromBars(bars), nil
}

func (s *Service) fetchSafeChart(ctx context.Context, req Request) (Series, error) {
	r, interval := safeWindow(req.Range)
	bars, err := s.provider.Chart(ctx, req.Symbol, domain.ChartOptions{
		Range:          string(r),
		Interval:       string(interval),
		IncludePrePost: true,
	})
	if err != nil {
		return nil, err
	}
	return fromBars(bars), nil
}

func (s *Service) fetchHistorical(ctx context.Context, req Request) (Series, error) {
	period2 := s.now()
	period1 := period2.Add(-time.Duration(req.Range.Days()) * 24 * time.Hour)

	bars, err := s.provider.Historical(ctx, req.Symbol, period1, period2)
	if err != nil {
		return nil, err
	}
	return fromBars(bars), nil
}

func (s *Service) fetchQuote(ctx context.Context, req Request) (Series, error) {
	quote, err := s.provider.Quote(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	if quote == nil || quote.RegularMarketPrice == nil {
		return nil, nil
	}

	price := *quote.RegularMarketPrice
	if !finite(price) || price == 0 {
		return nil, nil
	}

	orPrice := func(v *float64) *float64 {
		if v := finitePtr(v); v != nil {
			return v
		}
		p := price
		return &p
	}

	point := PricePoint{
		Time:   s.now().UnixMilli(),
		Close:  orPrice(nil),
		Open:   orPrice(quote.RegularMarketOpen),
		High:   orPrice(quote.RegularMarketDayHigh),
		Low:    orPrice(quote.RegularMarketDayLow),
		Volume: quote.RegularMarketVolume,
	}

	return Series{point}, nil
}

// fromBars maps provider bars into points, dropping bars dated before the
// epoch and nulling non-finite prices.
func fromBars(bars []domain.Bar) Series {
	out := make(Series, 0, len(bars))
	for _, bar := range bars {
		ms := bar.Time.UnixMilli()
		if bar.Time.IsZero() || ms < 0 {
			continue
		}

		point := PricePoint{
			Time:  ms,
			Close: finitePtr(bar.Close),
			Open:  finitePtr(bar.Open),
			High:  finitePtr(bar.High),
			Low:   finitePtr(bar.Low),
		}
		if bar.Volume != nil && *bar.Volume >= 0 {
			v := *bar.Volume
			point.Volume = &v
		}
		out = append(out, point)
	}
	return out
}

// Package symbols provides instrument search for the chart pickers.
package symbols

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/invesmart/internal/domain"
	"github.com/aristath/invesmart/internal/events"
	"github.com/rs/zerolog"
)

// Search limits sent to the provider
const (
	SearchQuotesCount = 50
	SearchNewsCount   = 0
)

// Symbol is an instrument as presented to clients
type Symbol struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

// PopularSymbol is a preset shortcut
type PopularSymbol struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var popular = []PopularSymbol{
	{Symbol: "AAPL", Name: "Apple"},
	{Symbol: "MSFT", Name: "Microsoft"},
	{Symbol: "TSLA", Name: "Tesla"},
	{Symbol: "^GSPC", Name: "S&P 500"},
	{Symbol: "^WIG20", Name: "WIG20"},
}

// Service searches instruments through the market data provider
type Service struct {
	provider domain.MarketDataProvider
	events   *events.Manager
	log      zerolog.Logger
}

// NewService creates a symbol search service. eventManager may be nil.
func NewService(provider domain.MarketDataProvider, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		events:   eventManager,
		log:      log.With().Str("service", "symbols").Logger(),
	}
}

// Search returns instruments matching q. Currency and futures pairs
// (symbols containing "=") are excluded. An empty query matches nothing.
func (s *Service) Search(ctx context.Context, q string) ([]Symbol, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Symbol{}, nil
	}

	matches, err := s.provider.Search(ctx, q, domain.SearchOptions{
		QuotesCount: SearchQuotesCount,
		NewsCount:   SearchNewsCount,
	})
	if err != nil {
		err = fmt.Errorf("failed to search symbols: %w", err)
		// A caller hanging up is not a provider failure
		if ctx.Err() == nil && s.events != nil {
			s.events.EmitError("symbols", err, map[string]interface{}{"query": q})
		}
		return nil, err
	}

	out := make([]Symbol, 0, len(matches))
	for _, m := range matches {
		if m.Symbol == "" || strings.Contains(m.Symbol, "=") {
			continue
		}
		out = append(out, toSymbol(m))
	}

	s.log.Debug().Str("query", q).Int("matches", len(out)).Msg("Symbol search complete")
	return out, nil
}

// Popular returns the preset symbol shortcuts
func (s *Service) Popular() []PopularSymbol {
	out := make([]PopularSymbol, len(popular))
	copy(out, popular)
	return out
}

func toSymbol(m domain.SearchMatch) Symbol {
	return Symbol{
		Symbol:   m.Symbol,
		Name:     firstNonEmpty(m.ShortName, m.LongName, m.Symbol),
		Exchange: firstNonEmpty(m.ExchDisp, m.Exchange),
		Type:     m.TypeDisp,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

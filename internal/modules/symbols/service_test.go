package symbols

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/invesmart/internal/domain"
	"github.com/aristath/invesmart/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Chart(ctx context.Context, symbol string, opts domain.ChartOptions) ([]domain.Bar, error) {
	args := m.Called(symbol, opts)
	return nil, args.Error(1)
}

func (m *MockProvider) Historical(ctx context.Context, symbol string, period1, period2 time.Time) ([]domain.Bar, error) {
	args := m.Called(symbol, period1, period2)
	return nil, args.Error(1)
}

func (m *MockProvider) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(symbol)
	return nil, args.Error(1)
}

func (m *MockProvider) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchMatch, error) {
	args := m.Called(query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchMatch), args.Error(1)
}

var searchOpts = domain.SearchOptions{QuotesCount: 50, NewsCount: 0}

func TestSearch_EmptyQuerySkipsProvider(t *testing.T) {
	provider := new(MockProvider)
	svc := NewService(provider, nil, zerolog.Nop())

	got, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
	provider.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearch_MapsAndFilters(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", "apple", searchOpts).Return([]domain.SearchMatch{
		{Symbol: "AAPL", ShortName: "Apple Inc.", LongName: "Apple Inc. Long", Exchange: "NMS", ExchDisp: "NASDAQ", TypeDisp: "Equity"},
		{Symbol: "EURUSD=X", ShortName: "EUR/USD"},
		{Symbol: "APC.DE", LongName: "Apple Inc. (Xetra)", Exchange: "GER"},
		{Symbol: "APLE"},
	}, nil)

	svc := NewService(provider, nil, zerolog.Nop())
	got, err := svc.Search(context.Background(), " apple ")
	require.NoError(t, err)

	assert.Equal(t, []Symbol{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Type: "Equity"},
		{Symbol: "APC.DE", Name: "Apple Inc. (Xetra)", Exchange: "GER", Type: ""},
		{Symbol: "APLE", Name: "APLE", Exchange: "", Type: ""},
	}, got)
	provider.AssertExpectations(t)
}

func TestSearch_ProviderError(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", "x", searchOpts).Return(nil, errors.New("boom"))

	bus := events.NewBus()
	var got []*events.Event
	bus.Subscribe(events.ErrorOccurred, func(e *events.Event) { got = append(got, e) })

	svc := NewService(provider, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	_, err := svc.Search(context.Background(), "x")
	require.Error(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "symbols", got[0].Module)
	data, ok := got[0].Data.(*events.ErrorEventData)
	require.True(t, ok)
	assert.Contains(t, data.Error, "boom")
	assert.Equal(t, "x", data.Context["query"])
}

func TestSearch_CancelledContextEmitsNothing(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", "x", searchOpts).Return(nil, context.Canceled)

	bus := events.NewBus()
	emitted := 0
	bus.Subscribe(events.ErrorOccurred, func(*events.Event) { emitted++ })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(provider, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	_, err := svc.Search(ctx, "x")
	require.Error(t, err)
	assert.Zero(t, emitted)
}

func TestPopular(t *testing.T) {
	svc := NewService(new(MockProvider), nil, zerolog.Nop())
	got := svc.Popular()

	require.Len(t, got, 5)
	assert.Equal(t, PopularSymbol{Symbol: "^GSPC", Name: "S&P 500"}, got[3])

	// Callers cannot mutate the preset list
	got[0].Name = "changed"
	assert.Equal(t, "Apple", svc.Popular()[0].Name)
}

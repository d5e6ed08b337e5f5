package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/invesmart/internal/config"
	"github.com/aristath/invesmart/internal/di"
	"github.com/aristath/invesmart/internal/domain"
	"github.com/aristath/invesmart/internal/events"
	"github.com/aristath/invesmart/internal/modules/portfolio"
	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/aristath/invesmart/internal/modules/symbols"
	"github.com/aristath/invesmart/internal/modules/watchlist"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

var errNoData = errors.New("no data")

// fakeProvider serves two bars for every symbol except "FAIL"
type fakeProvider struct{}

func (fakeProvider) Chart(ctx context.Context, symbol string, opts domain.ChartOptions) ([]domain.Bar, error) {
	if symbol == "FAIL" {
		return nil, errNoData
	}
	return []domain.Bar{
		{Time: time.UnixMilli(1700000000000), Close: domain.Float64(100)},
		{Time: time.UnixMilli(1700000060000), Close: domain.Float64(110)},
	}, nil
}

func (fakeProvider) Historical(ctx context.Context, symbol string, period1, period2 time.Time) ([]domain.Bar, error) {
	return nil, errNoData
}

func (fakeProvider) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return nil, errNoData
}

func (fakeProvider) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchMatch, error) {
	return []domain.SearchMatch{{Symbol: "AAPL", ShortName: "Apple Inc."}, {Symbol: "EUR=X"}}, nil
}

// slowPrimaryProvider fails the exact 5m chart after a delay and answers the
// substitute 15m window
type slowPrimaryProvider struct {
	fakeProvider
	delay time.Duration
}

func (p slowPrimaryProvider) Chart(ctx context.Context, symbol string, opts domain.ChartOptions) ([]domain.Bar, error) {
	if opts.Interval == "5m" {
		time.Sleep(p.delay)
		return nil, errNoData
	}
	return []domain.Bar{{Time: time.UnixMilli(1700000000000), Close: domain.Float64(100)}}, nil
}

func newTestServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()
	return newTestServerWith(t, fakeProvider{})
}

func newTestServerWith(t *testing.T, provider domain.MarketDataProvider) (*Server, *di.Container) {
	t.Helper()
	log := zerolog.Nop()

	bus := events.NewBus()
	manager := events.NewManager(bus, log)
	seriesService := series.NewService(provider, manager, log)
	aggregator := portfolio.NewAggregator(seriesService, log)

	container := &di.Container{
		Provider:       provider,
		EventBus:       bus,
		EventManager:   manager,
		SeriesService:  seriesService,
		Aggregator:     aggregator,
		SymbolsService: symbols.NewService(provider, manager, log),
		Refresher:      watchlist.NewRefresher(aggregator, manager, []string{"AAPL"}, "5d", "5m", log),
	}
	t.Cleanup(func() { container.Close() })

	s := New(Config{
		Log:       log,
		Config:    config.Defaults(),
		Container: container,
		Port:      0,
		DevMode:   true,
	})
	return s, container
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s.Router(), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0","service":"invesmart"}`, w.Body.String())
}

func TestRequestTimeout(t *testing.T) {
	cfg := config.Defaults()
	assert.Equal(t, series.FetchBudget(30*time.Second)+writeSlack, requestTimeout(cfg))

	cfg.Yahoo.Timeout = time.Second
	assert.Equal(t, minRequestTimeout, requestTimeout(cfg))
	assert.Equal(t, minRequestTimeout, requestTimeout(nil))
}

func TestSlowFallbackOutlivesServerWriteTimeout(t *testing.T) {
	s, _ := newTestServerWith(t, slowPrimaryProvider{delay: 600 * time.Millisecond})
	s.server.WriteTimeout = 200 * time.Millisecond

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.server.Serve(ln) }()
	t.Cleanup(func() { _ = s.server.Close() })

	resp, err := http.Get("http://" + ln.Addr().String() + "/chart?symbol=AAPL&range=5d&interval=5m")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(series.TierChartFallback), resp.Header.Get("X-Series-Source"))

	var points []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
	assert.Len(t, points, 1)
}

func TestRoutesRegistered(t *testing.T) {
	s, _ := newTestServer(t)

	testCases := []struct {
		path string
		code int
	}{
		{"/chart?symbol=AAPL", http.StatusOK},
		{"/chart", http.StatusBadRequest},
		{"/api/yf/chart?symbol=AAPL", http.StatusOK},
		{"/search?q=apple", http.StatusOK},
		{"/api/yf/search?q=apple", http.StatusOK},
		{"/api/symbols/popular", http.StatusOK},
		{"/api/ranges", http.StatusOK},
		{"/api/portfolio/metrics?symbols=AAPL,MSFT", http.StatusOK},
		{"/api/charts/merged?symbols=AAPL", http.StatusOK},
		{"/api/watchlist", http.StatusOK},
		{"/api/system/stats", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			w := get(t, s.Router(), tc.path)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
}

func TestChart_SourceHeader(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s.Router(), "/chart?symbol=AAPL&range=1d&interval=1m")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chart", w.Header().Get("X-Series-Source"))

	var points []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	assert.Len(t, points, 2)

	w = get(t, s.Router(), "/chart?symbol=FAIL")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "none", w.Header().Get("X-Series-Source"))
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPortfolioMetrics_ReportsEmptySymbol(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s.Router(), "/api/portfolio/metrics?symbols=AAPL,FAIL")
	require.Equal(t, http.StatusOK, w.Code)

	var report portfolio.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Empty(t, report.Rows)
	assert.Equal(t, []string{"FAIL"}, report.EmptySymbols)
}

func TestSystemStats(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s.Router(), "/api/system/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats events.SystemStatusData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.GreaterOrEqual(t, stats.MemoryPercent, 0.0)
	assert.Equal(t, int64(0), stats.CacheDBBytes)
}

func TestEventsStream(t *testing.T) {
	s, container := newTestServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events/stream?types=WATCHLIST_CHANGED", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readData := func() streamMessage {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				var msg streamMessage
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &msg))
				return msg
			}
		}
	}

	assert.Equal(t, "connected", readData().Type)
	require.Equal(t, 1, container.EventBus.SubscriberCount(events.WatchlistChanged))

	container.Refresher.Set([]string{"TSLA"}, "1mo", "1d")

	msg := readData()
	assert.Equal(t, string(events.WatchlistChanged), msg.Type)
	assert.Equal(t, "watchlist", msg.Module)
}

func TestEventsWebSocket(t *testing.T) {
	s, container := newTestServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/ws?types=WATCHLIST_CHANGED"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg streamMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "connected", msg.Type)

	container.Refresher.Set([]string{"MSFT"}, "5d", "15m")

	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, string(events.WatchlistChanged), msg.Type)
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	result series.Result
	got    series.Request
	calls  int
}

func (m *mockFetcher) Fetch(ctx context.Context, req series.Request) series.Result {
	m.calls++
	m.got = req
	return m.result
}

func price(v float64) *float64 { return &v }

func newRouter(f SeriesFetcher) *chi.Mux {
	h := NewHandler(f, zerolog.Nop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Route("/api", h.RegisterAPIRoutes)
	return r
}

func TestHandleGetChart_MissingSymbol(t *testing.T) {
	fetcher := &mockFetcher{}
	req := httptest.NewRequest(http.MethodGet, "/chart?range=5d", nil)
	w := httptest.NewRecorder()

	newRouter(fetcher).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, fetcher.calls)
}

func TestHandleGetChart_ReturnsPoints(t *testing.T) {
	fetcher := &mockFetcher{result: series.Result{
		Series: series.Series{{Time: 1700000000000, Close: price(10.5)}},
		Source: series.TierHistorical,
	}}
	req := httptest.NewRequest(http.MethodGet, "/chart?symbol=%5EGSPC&range=1mo&interval=1d", nil)
	w := httptest.NewRecorder()

	newRouter(fetcher).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "historical", w.Header().Get("X-Series-Source"))
	assert.Equal(t, series.Request{Symbol: "^GSPC", Range: "1mo", Interval: "1d"}, fetcher.got)
	assert.JSONEq(t,
		`[{"time":1700000000000,"close":10.5,"open":null,"high":null,"low":null,"volume":null}]`,
		w.Body.String())
}

func TestHandleGetChart_ExhaustedIsEmptyArray(t *testing.T) {
	fetcher := &mockFetcher{result: series.Result{Source: series.TierNone}}
	req := httptest.NewRequest(http.MethodGet, "/chart?symbol=NOPE", nil)
	w := httptest.NewRecorder()

	newRouter(fetcher).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandleGetChart_AbortedIsServerError(t *testing.T) {
	fetcher := &mockFetcher{result: series.Result{
		Series: series.Series{},
		Source: series.TierNone,
		Err:    fmt.Errorf("series fetch aborted: %w", context.DeadlineExceeded),
	}}
	req := httptest.NewRequest(http.MethodGet, "/chart?symbol=AAPL", nil)
	w := httptest.NewRecorder()

	newRouter(fetcher).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "failed to fetch chart data", body["error"])
}

func TestHandleGetRanges(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ranges", nil)
	w := httptest.NewRecorder()

	newRouter(&mockFetcher{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Ranges []struct {
			Range     string   `json:"range"`
			Days      int      `json:"days"`
			Intervals []string `json:"intervals"`
		} `json:"ranges"`
		DefaultRange    string `json:"default_range"`
		DefaultInterval string `json:"default_interval"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Ranges, 6)
	assert.Equal(t, "1y", body.Ranges[5].Range)
	assert.Equal(t, 365, body.Ranges[5].Days)
	assert.Equal(t, []string{"15m", "1d"}, body.Ranges[5].Intervals)
	assert.Equal(t, "5d", body.DefaultRange)
	assert.Equal(t, "5m", body.DefaultInterval)
}

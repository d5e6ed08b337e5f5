package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/aristath/invesmart/internal/modules/watchlist"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	watch     watchlist.Watch
	latest    *watchlist.Snapshot
	triggered int
}

func (s *stubRefresher) Current() watchlist.Watch { return s.watch }
func (s *stubRefresher) Latest() *watchlist.Snapshot { return s.latest }
func (s *stubRefresher) Trigger() { s.triggered++ }

func (s *stubRefresher) Set(symbols []string, rng series.Range, interval series.Interval) watchlist.Watch {
	s.watch = watchlist.Watch{ID: "new", Symbols: symbols, Range: rng, Interval: interval}
	s.latest = nil
	return s.watch
}

func newRouter(r Refresher) *chi.Mux {
	router := chi.NewRouter()
	NewHandler(r, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func TestHandleGetWatchlist(t *testing.T) {
	ref := &stubRefresher{
		watch:  watchlist.Watch{ID: "w1", Symbols: []string{"AAPL"}, Range: "5d", Interval: "5m"},
		latest: &watchlist.Snapshot{WatchID: "w1", Generation: 3},
	}
	req := httptest.NewRequest(http.MethodGet, "/watchlist/", nil)
	w := httptest.NewRecorder()

	newRouter(ref).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "w1", body["watch"]["id"])
	assert.EqualValues(t, 3, body["snapshot"]["generation"])
}

func TestHandleUpdateWatchlist(t *testing.T) {
	ref := &stubRefresher{}
	req := httptest.NewRequest(http.MethodPut, "/watchlist/",
		strings.NewReader(`{"symbols":["AAPL","MSFT"],"range":"1mo","interval":"1d"}`))
	w := httptest.NewRecorder()

	newRouter(ref).ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, ref.triggered)
	assert.Equal(t, []string{"AAPL", "MSFT"}, ref.watch.Symbols)
	assert.Equal(t, series.Range("1mo"), ref.watch.Range)
	assert.JSONEq(t,
		`{"watch":{"id":"new","symbols":["AAPL","MSFT"],"range":"1mo","interval":"1d"},"snapshot":null}`,
		w.Body.String())
}

func TestHandleUpdateWatchlist_BadBody(t *testing.T) {
	ref := &stubRefresher{}
	req := httptest.NewRequest(http.MethodPut, "/watchlist/", strings.NewReader(`{"symbols":`))
	w := httptest.NewRecorder()

	newRouter(ref).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ref.triggered)
}

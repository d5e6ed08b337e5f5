// Package yahoo implements domain.MarketDataProvider against Yahoo Finance.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/invesmart/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

var (
	// ErrNotFound is returned when Yahoo does not know the symbol
	ErrNotFound = errors.New("yahoo: symbol not found")
	// ErrRateLimited is returned on HTTP 429
	ErrRateLimited = errors.New("yahoo: rate limited")
)

// Config tunes the HTTP client
type Config struct {
	BaseURL string        // Empty = DefaultBaseURL
	Timeout time.Duration // Zero = 30s
}

// Client is a Yahoo Finance API client speaking the public JSON endpoints
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// chartResponse is the v8 chart payload. Indicator arrays hold nulls for
// bars without a trade, hence the pointer elements.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  *apiError                `json:"error"`
	} `json:"quoteResponse"`
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		ExchDisp  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
		TypeDisp  string `json:"typeDisp"`
	} `json:"quotes"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("Yahoo Finance API error: %s: %s", e.Code, e.Description)
}

// Chart fetches bars for a range/interval window
func (c *Client) Chart(ctx context.Context, symbol string, opts domain.ChartOptions) ([]domain.Bar, error) {
	params := url.Values{}
	params.Set("range", opts.Range)
	params.Set("interval", opts.Interval)
	if opts.IncludePrePost {
		params.Set("includePrePost", "true")
	}

	bars, err := c.chart(ctx, symbol, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart: %w", err)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("range", opts.Range).
		Str("interval", opts.Interval).
		Int("count", len(bars)).
		Msg("Fetched chart")

	return bars, nil
}

// Historical fetches daily bars between period1 and period2
func (c *Client) Historical(ctx context.Context, symbol string, period1, period2 time.Time) ([]domain.Bar, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(period1.Unix(), 10))
	params.Set("period2", strconv.FormatInt(period2.Unix(), 10))
	params.Set("interval", "1d")

	bars, err := c.chart(ctx, symbol, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data: %w", err)
	}

	return bars, nil
}

func (c *Client) chart(ctx context.Context, symbol string, params url.Values) ([]domain.Bar, error) {
	var result chartResponse
	if err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &result); err != nil {
		return nil, err
	}

	if result.Chart.Error != nil {
		return nil, result.Chart.Error
	}
	if len(result.Chart.Result) == 0 {
		return []domain.Bar{}, nil
	}

	data := result.Chart.Result[0]
	if len(data.Indicators.Quote) == 0 {
		return []domain.Bar{}, nil
	}
	q := data.Indicators.Quote[0]

	bars := make([]domain.Bar, 0, len(data.Timestamp))
	for i, ts := range data.Timestamp {
		bar := domain.Bar{
			Time:  time.Unix(ts, 0).UTC(),
			Open:  at(q.Open, i),
			High:  at(q.High, i),
			Low:   at(q.Low, i),
			Close: at(q.Close, i),
		}
		if v := at(q.Volume, i); v != nil {
			bar.Volume = domain.Int64(int64(*v))
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// Quote fetches the current snapshot for a symbol
func (c *Client) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var result quoteResponse
	if err := c.getJSON(ctx, "/v7/finance/quote", params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", result.QuoteResponse.Error)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return nil, nil
	}

	info := result.QuoteResponse.Result[0]
	quote := &domain.Quote{
		Symbol:               getString(info, "symbol", symbol),
		RegularMarketPrice:   getFloat64(info, "regularMarketPrice"),
		RegularMarketOpen:    getFloat64(info, "regularMarketOpen"),
		RegularMarketDayHigh: getFloat64(info, "regularMarketDayHigh"),
		RegularMarketDayLow:  getFloat64(info, "regularMarketDayLow"),
		RegularMarketVolume:  getInt64(info, "regularMarketVolume"),
	}
	if ts := getInt64(info, "regularMarketTime"); ts != nil {
		quote.RegularMarketTime = time.Unix(*ts, 0).UTC()
	}

	return quote, nil
}

// Search finds instruments matching a query
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchMatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", strconv.Itoa(opts.QuotesCount))
	params.Set("newsCount", strconv.Itoa(opts.NewsCount))

	var result searchResponse
	if err := c.getJSON(ctx, "/v1/finance/search", params, &result); err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	matches := make([]domain.SearchMatch, 0, len(result.Quotes))
	for _, q := range result.Quotes {
		if q.Symbol == "" {
			continue
		}
		matches = append(matches, domain.SearchMatch{
			Symbol:    q.Symbol,
			ShortName: q.ShortName,
			LongName:  q.LongName,
			Exchange:  q.Exchange,
			ExchDisp:  q.ExchDisp,
			QuoteType: q.QuoteType,
			TypeDisp:  q.TypeDisp,
		})
	}

	return matches, nil
}

// getJSON performs a GET against the API and decodes the body into dest
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Helper functions to safely extract values from the loosely typed quote map
func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		if v, ok := val.(float64); ok {
			return &v
		}
	}
	return nil
}

func getInt64(m map[string]interface{}, key string) *int64 {
	if v := getFloat64(m, key); v != nil {
		i := int64(*v)
		return &i
	}
	return nil
}

func getString(m map[string]interface{}, key string, defaultVal string) string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return defaultVal
}

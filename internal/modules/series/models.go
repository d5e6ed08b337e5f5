// Package series acquires per-symbol price series from the market data
// provider, degrading through fallback tiers instead of failing.
package series

import (
	"math"
	"strings"
)

// PricePoint is one observation. Time (epoch milliseconds) is the join key;
// the price fields are optional and serialize as null when absent.
type PricePoint struct {
	Time   int64    `json:"time"`
	Close  *float64 `json:"close"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Volume *int64   `json:"volume"`
}

// HasClose reports whether the point carries a usable close
func (p PricePoint) HasClose() bool {
	return p.Close != nil && finite(*p.Close)
}

// Series is a sequence of points for one symbol. Order is not guaranteed.
type Series []PricePoint

// Request identifies a series
type Request struct {
	Symbol   string
	Range    Range
	Interval Interval
}

// Normalize trims the symbol, replaces an unsupported range with the
// default and fills in a missing interval.
func (r Request) Normalize() Request {
	return Request{
		Symbol:   strings.TrimSpace(r.Symbol),
		Range:    ParseRange(string(r.Range)),
		Interval: ParseInterval(string(r.Interval)),
	}
}

// Tier identifies which acquisition strategy produced a series
type Tier string

// Acquisition tiers in the order they are attempted
const (
	TierChart         Tier = "chart"
	TierChartFallback Tier = "chart_fallback"
	TierHistorical    Tier = "historical"
	TierQuote         Tier = "quote"
	TierNone          Tier = "none"
)

// Result is a series plus where it came from
type Result struct {
	Request Request
	Series  Series
	Source  Tier
	// Err is set only when the caller's context ended before a tier could
	// answer. Provider failures never surface here.
	Err error
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// finitePtr drops non-finite values
func finitePtr(v *float64) *float64 {
	if v == nil || !finite(*v) {
		return nil
	}
	out := *v
	return &out
}

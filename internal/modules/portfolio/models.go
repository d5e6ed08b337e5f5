package portfolio

import (
	"encoding/json"

	"github.com/aristath/invesmart/internal/modules/series"
)

// EqualWeightRow is one timestamp of the equal-weight portfolio series
type EqualWeightRow struct {
	Time  int64   `json:"time"`
	Close float64 `json:"close"`
}

// MergedRow is one timestamp of the union view. Values holds a close per
// symbol, nil where the symbol has no observation at Time.
type MergedRow struct {
	Time   int64
	Values map[string]*float64
}

// MarshalJSON flattens the row to {"time": t, "SYM": close|null, ...}
func (r MergedRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Values)+1)
	for symbol, v := range r.Values {
		out[symbol] = v
	}
	out["time"] = r.Time
	return json.Marshal(out)
}

// Metrics summarises an equal-weight series. Values are per step, not annualized.
type Metrics struct {
	CumulativeReturn float64 `json:"cumulative_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
}

// Report is the equal-weight portfolio for a set of symbols
type Report struct {
	Symbols      []string         `json:"symbols"`
	Range        series.Range     `json:"range"`
	Interval     series.Interval  `json:"interval"`
	Rows         []EqualWeightRow `json:"rows"`
	Metrics      Metrics          `json:"metrics"`
	MaxDrawdown  *float64         `json:"max_drawdown"`
	RSI          *float64         `json:"rsi"`
	EmptySymbols []string         `json:"empty_symbols"`
}

// MergedReport is the per-symbol union view
type MergedReport struct {
	Symbols  []string        `json:"symbols"`
	Range    series.Range    `json:"range"`
	Interval series.Interval `json:"interval"`
	Rows     []MergedRow     `json:"rows"`
}

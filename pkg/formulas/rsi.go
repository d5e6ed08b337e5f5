package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// DefaultRSILength is the conventional RSI lookback.
const DefaultRSILength = 14

// CalculateRSI returns the latest Relative Strength Index (0-100) of closes,
// or nil if there are fewer than length+1 prices.
func CalculateRSI(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)

	if len(rsi) > 0 && !math.IsNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}

	return nil
}

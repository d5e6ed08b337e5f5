// Package formulas holds the numeric building blocks used by the portfolio
// aggregator: return series, dispersion and drawdown.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// SampleStdDev is the standard deviation with divisor n-1.
// A single observation uses divisor 1, which yields 0 instead of NaN.
func SampleStdDev(data []float64) float64 {
	switch len(data) {
	case 0, 1:
		return 0
	}
	return stat.StdDev(data, nil)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SimpleReturns converts prices to per-step returns p[i]/p[i-1] - 1.
// Steps where the prior price is not finite and positive, or the current
// price is not finite, are skipped rather than zero-filled.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if !IsFinite(prev) || prev <= 0 || !IsFinite(cur) {
			continue
		}
		returns = append(returns, cur/prev-1)
	}

	return returns
}

// CumulativeReturn is last/first - 1, or 0 when undefined.
func CumulativeReturn(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	first, last := prices[0], prices[len(prices)-1]
	if !IsFinite(first) || first == 0 || !IsFinite(last) {
		return 0
	}
	return last/first - 1
}

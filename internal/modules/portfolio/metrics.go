package portfolio

import (
	"github.com/aristath/invesmart/pkg/formulas"
)

// ComputeMetrics derives return statistics from an equal-weight series.
//
// Returns are simple per-step returns. Volatility is their sample standard
// deviation and Sharpe is mean/volatility with a zero risk-free rate.
// Fewer than two usable points yields zero metrics.
func ComputeMetrics(rows []EqualWeightRow) Metrics {
	if len(rows) < 2 {
		return Metrics{}
	}

	prices := Closes(rows)
	returns := formulas.SimpleReturns(prices)
	if len(returns) == 0 {
		return Metrics{}
	}

	mean := formulas.Mean(returns)
	vol := formulas.SampleStdDev(returns)

	sharpe := 0.0
	if vol > 0 {
		sharpe = mean / vol
	}

	return Metrics{
		CumulativeReturn: formulas.CumulativeReturn(prices),
		Volatility:       vol,
		SharpeRatio:      sharpe,
	}
}

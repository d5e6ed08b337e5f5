package formulas

// CalculateMaxDrawdown calculates the maximum drawdown from a price series
//
//	Drawdown = (Peak - Current) / Peak
//
// Returns the maximum drawdown as a positive fraction (0.25 = 25% below peak),
// or nil if fewer than two prices are available.
func CalculateMaxDrawdown(prices []float64) *float64 {
	if len(prices) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := prices[0]

	for _, price := range prices {
		if !IsFinite(price) {
			continue
		}
		if price > peak || !IsFinite(peak) {
			peak = price
		}

		if peak > 0 {
			drawdown := (peak - price) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return &maxDrawdown
}

package clientdata

import "time"

// TTL constants, added to now when storing to calculate expires_at.
const (
	// Intraday bars move with every refresh
	TTLChartIntraday = time.Minute
	// Daily bars only change once per session
	TTLChartDaily = 30 * time.Minute

	TTLQuote  = 30 * time.Second
	TTLSearch = 24 * time.Hour
)

// ChartTTL picks a chart TTL from the sampling interval.
func ChartTTL(interval string) time.Duration {
	switch interval {
	case "1d", "5d", "1wk", "1mo", "3mo":
		return TTLChartDaily
	default:
		return TTLChartIntraday
	}
}

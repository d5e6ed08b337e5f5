package series

import "strings"

// Range is a lookback window understood by the provider
type Range string

// Supported ranges
const (
	Range1D Range = "1d"
	Range5D Range = "5d"
	Range1M Range = "1mo"
	Range3M Range = "3mo"
	Range6M Range = "6mo"
	Range1Y Range = "1y"
)

// Interval is a sampling granularity
type Interval string

// Supported intervals
const (
	Interval1Min  Interval = "1m"
	Interval2Min  Interval = "2m"
	Interval5Min  Interval = "5m"
	Interval15Min Interval = "15m"
	Interval1Day  Interval = "1d"
)

// Defaults applied when a request leaves the window unspecified or invalid
const (
	DefaultRange    = Range5D
	DefaultInterval = Interval5Min
)

// Ranges lists the supported ranges, shortest first
var Ranges = []Range{Range1D, Range5D, Range1M, Range3M, Range6M, Range1Y}

var rangeDays = map[Range]int{
	Range1D: 1,
	Range5D: 5,
	Range1M: 30,
	Range3M: 90,
	Range6M: 180,
	Range1Y: 365,
}

// AllowedIntervals is the provider's known-good interval set per range.
// Acquisition itself does not enforce it; display callers normalize with
// NormalizeForDisplay.
var AllowedIntervals = map[Range][]Interval{
	Range1D: {Interval1Min, Interval2Min, Interval5Min, Interval15Min},
	Range5D: {Interval1Min, Interval2Min, Interval5Min, Interval15Min},
	Range1M: {Interval5Min, Interval15Min, Interval1Day},
	Range3M: {Interval5Min, Interval15Min, Interval1Day},
	Range6M: {Interval5Min, Interval15Min, Interval1Day},
	Range1Y: {Interval15Min, Interval1Day},
}

// Valid reports whether r is a supported range
func (r Range) Valid() bool {
	_, ok := rangeDays[r]
	return ok
}

// Days is the calendar-day span used for the end-of-day history window
func (r Range) Days() int {
	if d, ok := rangeDays[r]; ok {
		return d
	}
	return rangeDays[DefaultRange]
}

// ParseRange returns the matching range or DefaultRange
func ParseRange(s string) Range {
	r := Range(strings.TrimSpace(s))
	if !r.Valid() {
		return DefaultRange
	}
	return r
}

// ParseInterval returns s as an interval, or DefaultInterval when empty.
// Unknown tokens are passed through; the fallback chain absorbs rejections.
func ParseInterval(s string) Interval {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultInterval
	}
	return Interval(s)
}

// IsAllowed reports whether interval is in the allowed set for r
func IsAllowed(r Range, interval Interval) bool {
	for _, allowed := range AllowedIntervals[ParseRange(string(r))] {
		if allowed == interval {
			return true
		}
	}
	return false
}

// NormalizeForDisplay coerces a window into a supported combination: the
// range and interval are parsed and an interval outside the allowed set
// becomes the range's first allowed interval.
func NormalizeForDisplay(r Range, interval Interval) (Range, Interval) {
	r = ParseRange(string(r))
	interval = ParseInterval(string(interval))
	if IsAllowed(r, interval) {
		return r, interval
	}
	return r, AllowedIntervals[r][0]
}

// safeWindow is the provider-friendly substitute tried after the primary chart
func safeWindow(r Range) (Range, Interval) {
	switch r {
	case Range1D, Range5D:
		return Range5D, Interval15Min
	default:
		return Range1M, Interval1Day
	}
}

package events

import "time"

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// WatchlistRefreshedData summarises an applied refresh cycle
type WatchlistRefreshedData struct {
	WatchID          string    `json:"watch_id"`
	Generation       uint64    `json:"generation"`
	FetchedAt        time.Time `json:"fetched_at"`
	Symbols          []string  `json:"symbols"`
	EmptySymbols     []string  `json:"empty_symbols"`
	Points           int       `json:"points"`
	CumulativeReturn float64   `json:"cumulative_return"`
	Volatility       float64   `json:"volatility"`
	SharpeRatio      float64   `json:"sharpe_ratio"`
}

// EventType returns the event type for WatchlistRefreshedData
func (d *WatchlistRefreshedData) EventType() EventType {
	return WatchlistRefreshed
}

// WatchlistChangedData describes the new watch
type WatchlistChangedData struct {
	WatchID  string   `json:"watch_id"`
	Symbols  []string `json:"symbols"`
	Range    string   `json:"range"`
	Interval string   `json:"interval"`
}

// EventType returns the event type for WatchlistChangedData
func (d *WatchlistChangedData) EventType() EventType {
	return WatchlistChanged
}

// SeriesFallbackData records which tier finally answered a series request
type SeriesFallbackData struct {
	Symbol   string `json:"symbol"`
	Range    string `json:"range"`
	Interval string `json:"interval"`
	Source   string `json:"source"`
	Points   int    `json:"points"`
}

// EventType returns the event type for SeriesFallbackData
func (d *SeriesFallbackData) EventType() EventType {
	return SeriesFallback
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// SystemStatusData is a point-in-time view of host and cache usage
type SystemStatusData struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	CacheDBBytes  int64   `json:"cache_db_bytes"`
}

// EventType returns the event type for SystemStatusData
func (d *SystemStatusData) EventType() EventType {
	return SystemStatusChanged
}

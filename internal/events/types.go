// Package events provides the in-process event bus used to fan refresh
// results and diagnostics out to stream subscribers.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// WatchlistRefreshed fires when a refresh cycle's snapshot is applied
	WatchlistRefreshed EventType = "WATCHLIST_REFRESHED"
	// WatchlistChanged fires when the watched symbols or window change
	WatchlistChanged EventType = "WATCHLIST_CHANGED"
	// SeriesFallback fires when acquisition had to go past the primary chart
	SeriesFallback EventType = "SERIES_FALLBACK"
	// ErrorOccurred carries errors worth surfacing to clients
	ErrorOccurred EventType = "ERROR_OCCURRED"
	// SystemStatusChanged carries periodic host and cache statistics
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
)

// AllEventTypes lists every type a stream subscriber can receive
var AllEventTypes = []EventType{
	WatchlistRefreshed,
	WatchlistChanged,
	SeriesFallback,
	ErrorOccurred,
	SystemStatusChanged,
}

// Event represents a system event
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

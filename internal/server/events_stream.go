package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/invesmart/internal/events"
	"github.com/rs/zerolog"
)

const (
	streamBuffer      = 100
	heartbeatInterval = 30 * time.Second
)

// streamMessage is the JSON envelope sent to stream clients
type streamMessage struct {
	Type      string      `json:"type"`
	Module    string      `json:"module,omitempty"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
}

func newStreamMessage(event *events.Event) streamMessage {
	return streamMessage{
		Type:      string(event.Type),
		Module:    event.Module,
		Timestamp: event.Timestamp.Format(time.RFC3339),
		Data:      event.Data,
	}
}

// parseTypes reads the ?types=A,B filter. Empty means every known type.
func parseTypes(r *http.Request) []events.EventType {
	filter := r.URL.Query().Get("types")
	if filter == "" {
		return events.AllEventTypes
	}

	var out []events.EventType
	for _, t := range strings.Split(filter, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, events.EventType(t))
		}
	}
	return out
}

// subscribe forwards the given event types into a buffered channel.
// Events are dropped rather than blocking the publisher when a client lags.
func subscribe(bus *events.Bus, types []events.EventType, log zerolog.Logger) (<-chan *events.Event, func()) {
	ch := make(chan *events.Event, streamBuffer)

	handler := func(event *events.Event) {
		select {
		case ch <- event:
		default:
			log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}

	unsubs := make([]func(), 0, len(types))
	for _, t := range types {
		unsubs = append(unsubs, bus.Subscribe(t, handler))
	}

	return ch, func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// EventsStreamHandler streams bus events as Server-Sent Events
type EventsStreamHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/stream requests (SSE)
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// The stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	types := parseTypes(r)
	eventChan, unsubscribe := subscribe(h.eventBus, types, h.log)
	defer unsubscribe()

	h.log.Info().Int("types", len(types)).Msg("Client connected to event stream")

	h.send(w, flusher, streamMessage{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "Connected to event stream",
	})

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event := <-eventChan:
			h.send(w, flusher, newStreamMessage(event))

		case <-heartbeat.C:
			h.send(w, flusher, streamMessage{
				Type:      "heartbeat",
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}
	}
}

func (h *EventsStreamHandler) send(w http.ResponseWriter, flusher http.Flusher, msg streamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode event")
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

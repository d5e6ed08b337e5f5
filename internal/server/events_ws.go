package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/invesmart/internal/events"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeWait = 10 * time.Second

// EventsWebSocketHandler streams bus events over a WebSocket
type EventsWebSocketHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewEventsWebSocketHandler creates a new WebSocket events handler
func NewEventsWebSocketHandler(eventBus *events.Bus, log zerolog.Logger) *EventsWebSocketHandler {
	return &EventsWebSocketHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws requests
func (h *EventsWebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS is open for the HTTP API as well
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	types := parseTypes(r)
	eventChan, unsubscribe := subscribe(h.eventBus, types, h.log)
	defer unsubscribe()

	// Client messages are ignored; CloseRead handles control frames and
	// cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Int("types", len(types)).Msg("Client connected to event websocket")

	if err := h.write(ctx, conn, streamMessage{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "Connected to event stream",
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event websocket")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			if err := h.write(ctx, conn, newStreamMessage(event)); err != nil {
				return
			}

		case <-heartbeat.C:
			if err := conn.Ping(ctx); err != nil {
				h.log.Debug().Err(err).Msg("WebSocket ping failed")
				return
			}
		}
	}
}

func (h *EventsWebSocketHandler) write(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	if err := wsjson.Write(writeCtx, conn, msg); err != nil {
		h.log.Debug().Err(err).Str("type", msg.Type).Msg("WebSocket write failed")
		return err
	}
	return nil
}

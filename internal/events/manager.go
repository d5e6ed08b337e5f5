package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager handles event emission and logging
type Manager struct {
	bus *Bus
	log zerolog.Logger
	now func() time.Time
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("service", "events").Logger(),
		now: time.Now,
	}
}

// Emit logs and publishes an event carrying typed data
func (m *Manager) Emit(module string, data EventData) *Event {
	event := &Event{
		ID:        uuid.NewString(),
		Type:      data.EventType(),
		Timestamp: m.now(),
		Module:    module,
		Data:      data,
	}

	eventJSON, _ := json.Marshal(event)
	m.log.Debug().
		Str("event_type", string(event.Type)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")

	if m.bus != nil {
		m.bus.Publish(event)
	}

	return event
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) *Event {
	return m.Emit(module, &ErrorEventData{
		Error:   err.Error(),
		Context: context,
	})
}

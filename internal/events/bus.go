package events

import "sync"

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(event *Event)

// Bus is a typed publish/subscribe hub
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[uint64]Handler
	nextID   uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType]map[uint64]Handler),
	}
}

// Subscribe registers handler for eventType and returns its unsubscribe func
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[uint64]Handler)
	}
	b.handlers[eventType][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[eventType], id)
		})
	}
}

// Publish delivers event to every handler subscribed to its type.
// Handlers are snapshotted so they can unsubscribe from inside a callback.
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	subs := make([]Handler, 0, len(b.handlers[event.Type]))
	for _, h := range b.handlers[event.Type] {
		subs = append(subs, h)
	}
	b.mu.RUnlock()

	for _, h := range subs {
		h(event)
	}
}

// SubscriberCount returns the number of handlers for eventType
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

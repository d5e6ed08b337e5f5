package server

import (
	"sync"
	"time"

	"github.com/aristath/invesmart/internal/events"
	"github.com/rs/zerolog"
)

const moduleSystem = "system"

// StatusMonitor periodically publishes system statistics to the event bus
type StatusMonitor struct {
	eventManager   *events.Manager
	systemHandlers *SystemHandlers
	log            zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStatusMonitor creates a new status monitor. eventManager may be nil.
func NewStatusMonitor(eventManager *events.Manager, systemHandlers *SystemHandlers, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		eventManager:   eventManager,
		systemHandlers: systemHandlers,
		log:            log.With().Str("component", "status_monitor").Logger(),
		stop:           make(chan struct{}),
	}
}

// Start begins periodic status monitoring
func (m *StatusMonitor) Start(interval time.Duration) {
	go m.monitor(interval)
}

// Stop ends monitoring
func (m *StatusMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *StatusMonitor) monitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.checkStatus()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.checkStatus()
		}
	}
}

// checkStatus emits the current system stats
func (m *StatusMonitor) checkStatus() {
	if m.eventManager == nil {
		return
	}
	stats := m.systemHandlers.Stats()
	m.eventManager.Emit(moduleSystem, &stats)
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/invesmart/internal/database"
	"github.com/aristath/invesmart/internal/events"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	cacheDB     *database.DB
	cpuSample   time.Duration
}

// NewSystemHandlers creates system handlers. cacheDB may be nil.
func NewSystemHandlers(log zerolog.Logger, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		cacheDB:     cacheDB,
		cpuSample:   100 * time.Millisecond,
	}
}

// Stats gathers CPU, memory, uptime and cache size
func (h *SystemHandlers) Stats() events.SystemStatusData {
	cpuPercent, memPercent := h.getSystemStats()

	var cacheBytes int64
	if h.cacheDB != nil {
		cacheBytes = h.cacheDB.SizeBytes()
	}

	return events.SystemStatusData{
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CacheDBBytes:  cacheBytes,
	}
}

// HandleSystemStats returns host and cache statistics
// GET /api/system/stats
func (h *SystemHandlers) HandleSystemStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.Stats())
}

// getSystemStats calculates CPU and RAM usage percentages.
// CPU is sampled over a short window so the call stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(h.cpuSample, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

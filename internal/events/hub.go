package events

import (
	"sync"
	"time"
)

// Hub keys a Bus per job, generalizing the corpus's single
// process-wide Hub to the discovery core's one-bus-per-job shape. Buses
// are created lazily on first use and reaped once a job has been
// terminal for longer than grace.
type Hub struct {
	mu            sync.Mutex
	buses         map[string]*Bus
	slowThreshold time.Duration
	grace         time.Duration
}

// NewHub builds a registry. slowThreshold and grace come straight from
// the subscriber section of the core's configuration.
func NewHub(slowThreshold, grace time.Duration) *Hub {
	return &Hub{
		buses:         make(map[string]*Bus),
		slowThreshold: slowThreshold,
		grace:         grace,
	}
}

// BusFor returns the job's bus, creating it if this is the first
// reference (either StartJob publishing or a caller subscribing before
// the job has published anything).
func (h *Hub) BusFor(jobID string) *Bus {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.buses[jobID]
	if !ok {
		b = NewBus(h.slowThreshold)
		h.buses[jobID] = b
	}
	return b
}

// Reap schedules the job's bus for removal once grace has elapsed,
// closing any subscribers still attached at that point. Orchestrator
// calls this right after publishing a job's terminal event.
func (h *Hub) Reap(jobID string) {
	time.AfterFunc(h.grace, func() {
		h.mu.Lock()
		b, ok := h.buses[jobID]
		delete(h.buses, jobID)
		h.mu.Unlock()
		if ok {
			b.CloseAll()
		}
	})
}

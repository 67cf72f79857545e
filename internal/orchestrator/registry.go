// Package orchestrator drives one discovery job end to end: it asks
// places.Client for candidates, fans them out through ingest.Pipeline,
// upserts results into store.Store, and narrates the whole thing over
// an events.Bus. It is the generalization of the engine's
// poll+scrape+store loop (internal/poll/poller.go, internal/scrape/run_scrape.go,
// internal/store/jobs_upsert.go) from "periodic ATS poll" to
// "caller-triggered discovery run".
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pantryscout-discovery/internal/model"
)

type jobEntry struct {
	mu     sync.Mutex
	job    model.Job
	cancel context.CancelFunc
}

func (e *jobEntry) snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.Snapshot{
		JobID:      e.job.JobID,
		Query:      e.job.Query,
		Status:     e.job.Status,
		UrlsFound:  e.job.UrlsFound,
		Counters:   e.job.Counters,
		CreatedAt:  e.job.CreatedAt,
		FinishedAt: e.job.FinishedAt,
	}
}

// registry keeps the process-local, non-persisted set of jobs this
// instance has started. Job state never survives a restart, matching
// the core's explicit non-goal of durable job history.
type registry struct {
	mu   sync.Mutex
	jobs map[string]*jobEntry
}

func newRegistry() *registry {
	return &registry{jobs: make(map[string]*jobEntry)}
}

func (r *registry) create(query string, center model.Point, radius int, variants []string) *jobEntry {
	e := &jobEntry{job: model.Job{
		JobID:     uuid.NewString(),
		Query:     query,
		Center:    center,
		Radius:    radius,
		Variants:  variants,
		Status:    model.JobRunning,
		CreatedAt: time.Now(),
	}}
	r.mu.Lock()
	r.jobs[e.job.JobID] = e
	r.mu.Unlock()
	return e
}

func (r *registry) get(jobID string) (*jobEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[jobID]
	return e, ok
}

// transitionTerminal moves a job from running to a terminal state.
// Calling it more than once on the same job is a no-op after the
// first call, so a late timeout firing after a normal completion
// can't flip the status back.
func (e *jobEntry) transitionTerminal(status model.JobStatus) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job.Status != model.JobRunning {
		return false
	}
	e.job.Status = status
	now := time.Now()
	e.job.FinishedAt = &now
	return true
}

func (e *jobEntry) setUrlsFound(n int) {
	e.mu.Lock()
	e.job.UrlsFound = n
	e.mu.Unlock()
}

func (e *jobEntry) addOutcome(succeeded, failed, skipped int) model.JobCounters {
	e.mu.Lock()
	e.job.Counters.Succeeded += succeeded
	e.job.Counters.Failed += failed
	e.job.Counters.Skipped += skipped
	c := e.job.Counters
	e.mu.Unlock()
	return c
}

// subscribe is a thin convenience wrapper so callers in this package
// don't have to reach into the hub directly.
func (o *Orchestrator) subscribe(jobID string) chan model.Event {
	return o.hub.BusFor(jobID).Subscribe()
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"pantryscout-discovery/internal/events"
	"pantryscout-discovery/internal/ingest"
	"pantryscout-discovery/internal/model"
)

func (o *Orchestrator) run(ctx context.Context, entry *jobEntry) {
	bus := o.hub.BusFor(entry.job.JobID)
	defer o.hub.Reap(entry.job.JobID)

	candidates, err := o.places.FindCandidates(ctx, entry.job.Center, entry.job.Radius)
	if err != nil {
		o.failJob(entry, bus, fmt.Sprintf("places search failed: %v", err))
		return
	}

	entry.setUrlsFound(len(candidates))
	bus.SetUrlsFound(len(candidates))
	bus.Publish(model.Event{Type: model.EventJobStarted, Data: model.JobStartedData{UrlsFound: len(candidates)}})

	part := o.partitionCandidates(ctx, candidates)
	for _, c := range part.skipped {
		bus.Publish(model.Event{Type: model.EventPantrySkipped, Data: model.PantrySkippedData{PlaceID: c.PlaceID, Reason: "recently_updated"}})
	}
	entry.addOutcome(0, 0, len(part.skipped))

	progressDone := make(chan struct{})
	go o.runProgressLoop(bus, entry, progressDone)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Worker.Concurrency)
	for _, c := range part.toIngest {
		c := c
		g.Go(func() error {
			o.processCandidate(gctx, entry, bus, c)
			return nil
		})
	}
	_ = g.Wait()
	close(progressDone)

	// A timeout still reaches completed: the job's counters reflect
	// whatever progress it made, and the error_event published here
	// just tells subscribers why it's short of urls_found before the
	// complete event that always follows. StopJob cancellation reaches
	// completed the same way, just silently — the caller asked for
	// this, it isn't an error. Only an upstream-wide failure before any
	// candidate work begins (handled above, at FindCandidates) marks a
	// job failed.
	if err := ctx.Err(); err != nil && errors.Is(err, context.DeadlineExceeded) {
		bus.Publish(model.Event{Type: model.EventError, Data: model.ErrorData{Message: "job timed out before processing every candidate"}})
	}

	counters := entry.snapshot().Counters
	if entry.transitionTerminal(model.JobCompleted) {
		bus.Publish(model.Event{Type: model.EventComplete, Data: model.CompleteData{
			Found: counters.Succeeded, Failed: counters.Failed, Skipped: counters.Skipped,
		}})
	}
}

func (o *Orchestrator) failJob(entry *jobEntry, bus *events.Bus, message string) {
	if entry.transitionTerminal(model.JobFailed) {
		bus.PublishTerminal(model.Event{Type: model.EventError, Data: model.ErrorData{Message: message}})
	}
}

// processCandidate never returns an error: every outcome, including a
// candidate too malformed to ingest, is represented as an event and a
// counter increment so one bad candidate can't fail the job.
func (o *Orchestrator) processCandidate(ctx context.Context, entry *jobEntry, bus *events.Bus, c model.Candidate) {
	if c.Name == "" || (c.Lat == 0 && c.Lng == 0) {
		entry.addOutcome(0, 1, 0)
		bus.Publish(model.Event{Type: model.EventPantryFailed, Data: model.PantryFailedData{URL: c.Website, Reason: "missing_name_or_location"}})
		return
	}

	outcome := o.pipeline.Ingest(ctx, c)
	switch outcome.Kind {
	case ingest.OutcomeEnriched, ingest.OutcomePlacesOnly:
		if _, err := o.store.Upsert(ctx, outcome.Pantry); err != nil {
			entry.addOutcome(0, 1, 0)
			bus.Publish(model.Event{Type: model.EventPantryFailed, Data: model.PantryFailedData{URL: c.Website, Reason: "store_error"}})
			return
		}
		entry.addOutcome(1, 0, 0)
		bus.Publish(model.Event{Type: model.EventPantryDiscovered, Data: model.PantryDiscoveredData{Pantry: outcome.Pantry}})
	case ingest.OutcomeDropped:
		entry.addOutcome(0, 1, 0)
		bus.Publish(model.Event{Type: model.EventPantryFailed, Data: model.PantryFailedData{URL: c.Website, Reason: outcome.Reason}})
	}
}

// runProgressLoop publishes a coalesced progress event on a fixed
// cadence instead of after every candidate, so a fast worker pool
// doesn't spam slow subscribers with one event per millisecond.
func (o *Orchestrator) runProgressLoop(bus *events.Bus, entry *jobEntry, done chan struct{}) {
	interval := time.Duration(o.cfg.Progress.CoalesceMs) * time.Millisecond
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snap := entry.snapshot()
			bus.Publish(model.Event{Type: model.EventProgress, Data: model.ProgressData{
				Total: snap.UrlsFound, Succeeded: snap.Counters.Succeeded, Failed: snap.Counters.Failed,
			}})
		case <-done:
			return
		}
	}
}

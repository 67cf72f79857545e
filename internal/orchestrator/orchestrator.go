package orchestrator

import (
	"context"
	"fmt"

	"pantryscout-discovery/internal/config"
	"pantryscout-discovery/internal/events"
	"pantryscout-discovery/internal/ingest"
	"pantryscout-discovery/internal/model"
	"pantryscout-discovery/internal/places"
	"pantryscout-discovery/internal/ratelimit"
	"pantryscout-discovery/internal/store"
)

// Orchestrator is the composition root's single long-lived object:
// every StartJob call runs against the same places client, pipeline,
// store, and event hub.
type Orchestrator struct {
	cfg              config.Config
	places           *places.Client
	pipeline         *ingest.Pipeline
	store            store.Store
	hub              *events.Hub
	reg              *registry
	startLimiter     *ratelimit.KeyedLimiter
	subscribeLimiter *ratelimit.KeyedLimiter
}

// New wires the four collaborators together. cfg governs concurrency,
// timeouts, and the dedupe/progress tunables used throughout a run. The
// HTTP collaborator is expected to supply a caller_id to StartJob and
// Subscribe; the orchestrator itself doesn't distinguish callers beyond
// that string, per spec.md's entry-point rate limiting.
func New(cfg config.Config, placesClient *places.Client, pipeline *ingest.Pipeline, st store.Store) *Orchestrator {
	return &Orchestrator{
		cfg:              cfg,
		places:           placesClient,
		pipeline:         pipeline,
		store:            st,
		hub:              events.NewHub(cfg.Subscriber.SlowThreshold, cfg.Subscriber.Grace),
		reg:              newRegistry(),
		startLimiter:     ratelimit.NewKeyedLimiter(cfg.RateLimit.StartJobPerMinute, cfg.RateLimit.Burst),
		subscribeLimiter: ratelimit.NewKeyedLimiter(cfg.RateLimit.SubscribePerMinute, cfg.RateLimit.Burst),
	}
}

// StartJob registers a new job and launches its discovery run in the
// background, returning the job id and a count of pantries already
// known within radiusMeters of center (so a caller can decide the trip
// is worth waiting on before the run produces anything new). The run is
// bounded by cfg.Timeouts.Job and can be cancelled early with StopJob.
// callerID identifies the caller for the per-caller StartJob rate
// limit; an empty string buckets all anonymous callers together.
func (o *Orchestrator) StartJob(ctx context.Context, callerID, query string, center model.Point, radiusMeters int) (jobID string, existingCount int, err error) {
	if !o.startLimiter.Allow(callerID) {
		return "", 0, fmt.Errorf("orchestrator: start_job rate limit exceeded for caller %q", callerID)
	}

	existingCount, err = o.store.CountNear(ctx, center, float64(radiusMeters))
	if err != nil {
		return "", 0, fmt.Errorf("orchestrator: count existing pantries: %w", err)
	}

	entry := o.reg.create(query, center, radiusMeters, o.cfg.Places.Variants)

	runCtx, cancel := context.WithTimeout(context.Background(), o.cfg.Timeouts.Job)
	entry.mu.Lock()
	entry.cancel = cancel
	entry.mu.Unlock()

	go o.run(runCtx, entry)

	return entry.job.JobID, existingCount, nil
}

// StopJob cancels a running job's context. The run loop notices at its
// next suspension point and winds down to a silent completed status —
// cancellation isn't an error, so unlike a timeout it publishes no
// error_event. It is a no-op (but not an error) if the job has already
// finished.
func (o *Orchestrator) StopJob(jobID string) error {
	entry, ok := o.reg.get(jobID)
	if !ok {
		return fmt.Errorf("orchestrator: unknown job %s", jobID)
	}
	entry.mu.Lock()
	cancel := entry.cancel
	entry.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// JobStatus returns a read-only snapshot of the job's current state.
func (o *Orchestrator) JobStatus(jobID string) (model.Snapshot, error) {
	entry, ok := o.reg.get(jobID)
	if !ok {
		return model.Snapshot{}, fmt.Errorf("orchestrator: unknown job %s", jobID)
	}
	return entry.snapshot(), nil
}

// ListPantries returns stored pantries, optionally filtered by city
// and/or state, passing straight through to the store.
func (o *Orchestrator) ListPantries(ctx context.Context, city, state string) ([]model.Pantry, error) {
	return o.store.ListPantries(ctx, city, state)
}

// NearbyPantries returns stored pantries within radiusMeters of center,
// nearest first, passing straight through to the store.
func (o *Orchestrator) NearbyPantries(ctx context.Context, center model.Point, radiusMeters float64, limit int) ([]model.Pantry, error) {
	return o.store.Nearby(ctx, center, radiusMeters, limit)
}

// ListCities aggregates stored pantries by city/state, passing straight
// through to the store.
func (o *Orchestrator) ListCities(ctx context.Context) ([]store.CityAggregate, error) {
	return o.store.ListCities(ctx)
}

// IngestOne re-runs the ingestion pipeline for a single already-known
// pantry synchronously, outside the job/event machinery, and returns
// its updated record. Useful for a caller that wants to refresh one
// place on demand rather than waiting on a full discovery run.
func (o *Orchestrator) IngestOne(ctx context.Context, placeID string) (model.Pantry, error) {
	existing, err := o.store.Get(ctx, placeID)
	if err != nil {
		return model.Pantry{}, err
	}

	website := ""
	if existing.SourceURL != nil {
		website = *existing.SourceURL
	}
	candidate := model.Candidate{
		PlaceID:          existing.PlaceID,
		Name:             existing.Name,
		FormattedAddress: existing.Address,
		Lat:              existing.Point.Lat,
		Lng:              existing.Point.Lng,
		Website:          website,
	}

	outcome := o.pipeline.Ingest(ctx, candidate)
	if outcome.Kind == ingest.OutcomeDropped {
		return existing, nil
	}
	if _, err := o.store.Upsert(ctx, outcome.Pantry); err != nil {
		return model.Pantry{}, err
	}
	return o.store.Get(ctx, placeID)
}

// Subscribe attaches a new listener to jobID's event stream. The
// returned channel is closed once the job reaches a terminal state and
// its grace period elapses, or immediately if jobID is unknown to this
// process (an empty, pre-closed channel). callerID identifies the
// caller for the per-caller Subscribe rate limit.
func (o *Orchestrator) Subscribe(callerID, jobID string) (chan model.Event, error) {
	if !o.subscribeLimiter.Allow(callerID) {
		return nil, fmt.Errorf("orchestrator: subscribe rate limit exceeded for caller %q", callerID)
	}
	if _, ok := o.reg.get(jobID); !ok {
		ch := make(chan model.Event)
		close(ch)
		return ch, nil
	}
	return o.subscribe(jobID), nil
}

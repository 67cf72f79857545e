// Package store persists enriched Pantry records behind a geospatially
// indexed backend, grounded on the storage.Storage interface + factory
// pattern from the ingestion service this core borrows its pluggable-
// backend shape from, generalized here to MongoDB's 2dsphere index
// since that's what the discovery pipeline's nearest-neighbor queries
// need.
package store

import (
	"context"
	"errors"

	"pantryscout-discovery/internal/model"
)

// ErrNotFound is returned by Get when no pantry matches.
var ErrNotFound = errors.New("store: pantry not found")

// CityAggregate summarizes the pantries known in one city/state pair,
// used to populate a coarse, zoomed-out map view.
type CityAggregate struct {
	City      string
	State     string
	Count     int
	Centroid  model.Point
}

// Store is the persistence contract the ingestion pipeline and any
// read-side API sit on top of. Implementations must make Upsert
// idempotent by PlaceID and must never let a null/zero-value extracted
// field overwrite a previously stored non-null value.
type Store interface {
	// Upsert inserts p if its PlaceID is new, or merges non-empty fields
	// of p into the existing record otherwise. Returns true if a new
	// record was created.
	Upsert(ctx context.Context, p model.Pantry) (created bool, err error)

	// Get returns the pantry with the given PlaceID, or ErrNotFound.
	Get(ctx context.Context, placeID string) (model.Pantry, error)

	// Nearby returns pantries within radiusMeters of the given point,
	// nearest first.
	Nearby(ctx context.Context, center model.Point, radiusMeters float64, limit int) ([]model.Pantry, error)

	// CountNear reports how many pantries already exist within
	// radiusMeters of center, used for StartJob's existing-pantry count.
	CountNear(ctx context.Context, center model.Point, radiusMeters float64) (int, error)

	// ListCities aggregates stored pantries by city/state for a
	// zoomed-out map view.
	ListCities(ctx context.Context) ([]CityAggregate, error)

	// ListPantries returns stored pantries, optionally filtered by city
	// and/or state (either may be empty to mean "any").
	ListPantries(ctx context.Context, city, state string) ([]model.Pantry, error)

	Close(ctx context.Context) error
}

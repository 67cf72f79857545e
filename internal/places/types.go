// Package places wraps an external places-search provider with a
// content-addressed cache and a concurrent fan-out across
// query variants, grounded on the engine's errgroup-based scrape
// fan-out (internal/scrape/run_scrape.go and process.go) generalized
// from "scrape N ATS boards concurrently" to "query N search variants
// concurrently".
package places

import (
	"context"

	"pantryscout-discovery/internal/model"
)

// Provider is the external collaborator contract: a places-search API
// client. One call covers one query variant over one center/radius.
// A failed variant returns an error; the caller decides whether that's
// fatal (see Client.FindCandidates).
type Provider interface {
	Search(ctx context.Context, query string, center model.Point, radiusMeters int) ([]model.Candidate, error)

	// Website resolves a place's website when the initial search result
	// didn't carry one. Implementations may return "" with a nil error
	// when the provider simply has no website on file.
	Website(ctx context.Context, placeID string) (string, error)
}

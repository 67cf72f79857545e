package places

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"pantryscout-discovery/internal/model"
)

// Client runs a places search across every configured query variant
// in parallel, deduplicates the results by PlaceID, and caches the
// merged set under its fingerprint. Fan-out is grounded on the
// engine's run_scrape.go, which launches one errgroup goroutine per
// target and lets each fail independently.
type Client struct {
	Provider    Provider
	Cache       Cache
	Variants    []string
	LatLngRound int
	CacheTTL    time.Duration
}

// FindCandidates returns the deduplicated candidate list for center.
// A cache hit skips the provider entirely. On a miss, every variant is
// queried concurrently; a variant-level failure is tolerated as long
// as at least one variant succeeds. If every variant fails, the
// aggregate error is returned and nothing is cached.
func (c *Client) FindCandidates(ctx context.Context, center model.Point, radiusMeters int) ([]model.Candidate, error) {
	fp := Fingerprint(center, radiusMeters, c.Variants, c.LatLngRound)

	if cached, ok, err := c.Cache.Get(ctx, fp); err != nil {
		return nil, err
	} else if ok {
		return cached.Candidates, nil
	}

	results := make([][]model.Candidate, len(c.Variants))
	errs := make([]error, len(c.Variants))

	g, gctx := errgroup.WithContext(ctx)
	for i, variant := range c.Variants {
		i, variant := i, variant
		g.Go(func() error {
			found, err := c.Provider.Search(gctx, variant, center, radiusMeters)
			if err != nil {
				errs[i] = err
				return nil // tolerated here; fatality is judged after all variants finish
			}
			results[i] = found
			return nil
		})
	}
	_ = g.Wait() // per-variant errors are captured in errs, not returned by Wait

	merged, anySucceeded := dedupe(results, errs)
	if !anySucceeded {
		return nil, fmt.Errorf("places: all %d query variants failed, last error: %w", len(c.Variants), lastNonNil(errs))
	}

	c.fillMissingWebsites(ctx, merged)

	set := model.CandidateSet{Fingerprint: fp, Candidates: merged, CreatedAt: time.Now()}
	if err := c.Cache.Set(ctx, set, c.CacheTTL); err != nil {
		return merged, err
	}
	return merged, nil
}

// fillMissingWebsites resolves a website for every candidate that
// didn't come back with one from search, concurrently and
// best-effort: a details lookup failure just leaves Website empty,
// which the ingestion pipeline treats as "no website on file".
func (c *Client) fillMissingWebsites(ctx context.Context, candidates []model.Candidate) {
	g, gctx := errgroup.WithContext(ctx)
	for i := range candidates {
		if candidates[i].Website != "" {
			continue
		}
		i := i
		g.Go(func() error {
			site, err := c.Provider.Website(gctx, candidates[i].PlaceID)
			if err == nil {
				candidates[i].Website = site
			}
			return nil
		})
	}
	_ = g.Wait()
}

func dedupe(results [][]model.Candidate, errs []error) ([]model.Candidate, bool) {
	seen := make(map[string]bool)
	var out []model.Candidate
	anySucceeded := false
	for i, found := range results {
		if errs[i] != nil {
			continue
		}
		anySucceeded = true
		for _, cand := range found {
			if seen[cand.PlaceID] {
				continue
			}
			seen[cand.PlaceID] = true
			out = append(out, cand)
		}
	}
	return out, anySucceeded
}

func lastNonNil(errs []error) error {
	var last error
	for _, e := range errs {
		if e != nil {
			last = e
		}
	}
	return last
}

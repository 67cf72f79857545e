package orchestrator

import (
	"context"
	"math"
	"strings"
	"time"

	"pantryscout-discovery/internal/model"
	"pantryscout-discovery/internal/store"
)

// partition splits a candidate set into those to skip outright
// (recently refreshed) and those still worth ingesting. Websiteless
// candidates are first deduplicated by name+proximity, against each
// other and against the store (see dedupeWebsitelessByProximity).
// A freshness window of zero skips any candidate already stored.
type partitioned struct {
	toIngest []model.Candidate
	skipped  []model.Candidate // place_id -> reason is derived by the caller
}

func (o *Orchestrator) partitionCandidates(ctx context.Context, candidates []model.Candidate) partitioned {
	candidates = o.dedupeWebsitelessByProximity(ctx, candidates)

	var out partitioned
	freshness := time.Duration(o.cfg.Dedupe.FreshnessHours) * time.Hour
	for _, c := range candidates {
		existing, err := o.store.Get(ctx, c.PlaceID)
		if err == store.ErrNotFound {
			out.toIngest = append(out.toIngest, c)
			continue
		}
		if err != nil {
			// Store trouble shouldn't stall the whole job; treat as not-found.
			out.toIngest = append(out.toIngest, c)
			continue
		}
		if freshness <= 0 || time.Since(existing.LastUpdated) < freshness {
			out.skipped = append(out.skipped, c)
			continue
		}
		out.toIngest = append(out.toIngest, c)
	}
	return out
}

// dedupeWebsitelessByProximity collapses candidates that share a
// normalized name and sit within dedupeProximityMeters of each other,
// keeping the first seen, and also drops any that match a pantry
// already sitting in the store within that same radius and still
// within the freshness window — mirroring the original service's
// $near query against the pantries collection rather than only
// comparing within the current batch. Candidates with a website
// already have a stable place_id-keyed identity and are left untouched
// here.
const dedupeProximityMeters = 75.0

func (o *Orchestrator) dedupeWebsitelessByProximity(ctx context.Context, candidates []model.Candidate) []model.Candidate {
	var kept []model.Candidate
	var websiteless []model.Candidate
	for _, c := range candidates {
		if c.Website == "" {
			websiteless = append(websiteless, c)
		} else {
			kept = append(kept, c)
		}
	}

	freshness := time.Duration(o.cfg.Dedupe.FreshnessHours) * time.Hour
	var dedupedWebsiteless []model.Candidate
	for _, c := range websiteless {
		duplicate := false
		for _, existing := range dedupedWebsiteless {
			if normalizeName(c.Name) == normalizeName(existing.Name) && haversineMeters(c.Lat, c.Lng, existing.Lat, existing.Lng) <= dedupeProximityMeters {
				duplicate = true
				break
			}
		}
		if !duplicate && o.storeHasNearbyMatch(ctx, c, freshness) {
			duplicate = true
		}
		if !duplicate {
			dedupedWebsiteless = append(dedupedWebsiteless, c)
		}
	}

	return append(kept, dedupedWebsiteless...)
}

// storeHasNearbyMatch reports whether a previously stored pantry shares
// c's normalized name, sits within dedupeProximityMeters, and is still
// fresh enough that c shouldn't be treated as a newly discovered place.
// Store trouble is treated as "no match" so it can't stall a job.
func (o *Orchestrator) storeHasNearbyMatch(ctx context.Context, c model.Candidate, freshness time.Duration) bool {
	nearby, err := o.store.Nearby(ctx, model.Point{Lat: c.Lat, Lng: c.Lng}, dedupeProximityMeters, 10)
	if err != nil {
		return false
	}
	for _, p := range nearby {
		if normalizeName(p.Name) == normalizeName(c.Name) && (freshness <= 0 || time.Since(p.LastUpdated) < freshness) {
			return true
		}
	}
	return false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusMeters = 6371000.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

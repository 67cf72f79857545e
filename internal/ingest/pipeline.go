// Package ingest composes scraping, extraction, and validation into
// one per-candidate pipeline, grounded on the original discovery
// service's _process_place/_store_basic_place split: a candidate
// either gets fully enriched or falls back to a places-only record when
// it has no website or scraping or extraction comes up empty. Ingest
// does not check for a missing name or location and never returns
// OutcomeDropped; the orchestrator drops such candidates before calling
// it.
package ingest

import (
	"context"
	"errors"
	"time"

	"pantryscout-discovery/internal/extractor"
	"pantryscout-discovery/internal/model"
	"pantryscout-discovery/internal/scraper"
	"pantryscout-discovery/internal/validator"
)

// OutcomeKind names which branch a candidate ended up on.
type OutcomeKind string

const (
	OutcomeEnriched  OutcomeKind = "enriched"
	OutcomePlacesOnly OutcomeKind = "places_only"
	OutcomeDropped   OutcomeKind = "dropped"
)

// Outcome is the typed result of running one candidate through the
// pipeline. Exactly one of Pantry/Reason is meaningful depending on
// Kind.
type Outcome struct {
	Kind   OutcomeKind
	Pantry model.Pantry
	Reason string
}

// Pipeline runs Scrape -> Extract -> Sanitize for one candidate at a
// time. It holds no per-job state and is safe to share across the
// orchestrator's worker pool.
type Pipeline struct {
	Scraper   scraper.Scraper
	Extractor *extractor.Extractor
}

// placesOnlyNote is the special_notes value stamped on every
// places-only record, signaling to a reader that extraction never ran.
const placesOnlyNote = "Limited info — places-only"

// Ingest never returns an error: every failure mode is represented as
// an Outcome so the orchestrator's fail-soft contract holds without
// special-casing error returns.
func (p *Pipeline) Ingest(ctx context.Context, c model.Candidate) Outcome {
	base := basicPantry(c)

	if c.Website == "" {
		return Outcome{Kind: OutcomePlacesOnly, Pantry: placesOnlyPantry(base), Reason: "no website on file"}
	}

	text, err := p.Scraper.Scrape(ctx, c.Website)
	if err != nil {
		return Outcome{Kind: OutcomePlacesOnly, Pantry: placesOnlyPantry(base), Reason: scrapeFailureReason(err)}
	}

	result, err := p.Extractor.Extract(ctx, text, c.Name)
	if err != nil {
		return Outcome{Kind: OutcomePlacesOnly, Pantry: placesOnlyPantry(base), Reason: extractFailureReason(err)}
	}

	sanitized := validator.Sanitize(result.Status, result.Confidence, result.IsIDRequired,
		result.EligibilityRules, result.HoursNotes, result.HoursToday, result.ResidencyReq, result.SpecialNotes, true)

	enriched := base
	enriched.Status = model.ParseStatus(sanitized.Status)
	enriched.Confidence = sanitized.Confidence
	enriched.IsIDRequired = sanitized.IsIDRequired
	enriched.EligibilityRules = sanitized.EligibilityRules
	enriched.HoursNotes = sanitized.HoursNotes
	enriched.HoursToday = sanitized.HoursToday
	enriched.ResidencyReq = sanitized.ResidencyReq
	enriched.SpecialNotes = sanitized.SpecialNotes
	enriched.SourceURL = &c.Website
	enriched.ScrapeMethod = "http"
	now := time.Now()
	enriched.ScrapedAt = &now

	return Outcome{Kind: OutcomeEnriched, Pantry: enriched}
}

// placesOnlyPantry stamps a basic pantry with the fixed confidence,
// status, and note a places-only record carries regardless of which
// stage (scrape or extraction) came up empty.
func placesOnlyPantry(base model.Pantry) model.Pantry {
	note := placesOnlyNote
	base.Confidence = 3
	base.Status = model.StatusUnknown
	base.SpecialNotes = &note
	return base
}

func basicPantry(c model.Candidate) model.Pantry {
	city, state := validator.ParseCityState(c.FormattedAddress)
	return model.Pantry{
		PlaceID:         c.PlaceID,
		Name:            c.Name,
		Address:         c.FormattedAddress,
		City:            city,
		State:           state,
		Point:           model.Point{Lat: c.Lat, Lng: c.Lng},
		Status:          model.StatusUnknown,
		InventoryStatus: model.InventoryMedium,
		Confidence:      1,
		LastUpdated:     time.Now(),
	}
}

func scrapeFailureReason(err error) string {
	var f *scraper.Failure
	if errors.As(err, &f) {
		return "scrape_failed:" + string(f.Reason)
	}
	return "scrape_failed"
}

func extractFailureReason(err error) string {
	var f *extractor.Failure
	if errors.As(err, &f) {
		return "extract_failed:" + string(f.Reason)
	}
	return "extract_failed"
}

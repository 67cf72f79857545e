package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pantryscout-discovery/internal/extractor"
	"pantryscout-discovery/internal/ingest"
	"pantryscout-discovery/internal/model"
	"pantryscout-discovery/internal/scraper"
)

type fakeScraper struct {
	text string
	err  error
}

func (f *fakeScraper) Scrape(context.Context, string) (string, error) { return f.text, f.err }

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Complete(context.Context, string) (string, error) { return f.response, f.err }

func fixedNow() time.Time { return time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC) }

func TestIngest_NoWebsiteYieldsPlacesOnly(t *testing.T) {
	p := &ingest.Pipeline{Scraper: &fakeScraper{}, Extractor: extractor.New(&fakeLLM{}, fixedNow)}

	out := p.Ingest(context.Background(), model.Candidate{PlaceID: "a", Name: "Downtown Pantry"})
	if out.Kind != ingest.OutcomePlacesOnly {
		t.Fatalf("expected places_only, got %v", out.Kind)
	}
	if out.Pantry.Name != "Downtown Pantry" {
		t.Fatalf("expected basic pantry to carry candidate name, got %q", out.Pantry.Name)
	}
	if out.Pantry.Confidence != 3 || out.Pantry.Status != model.StatusUnknown {
		t.Fatalf("expected places_only confidence=3/status=UNKNOWN, got %+v", out.Pantry)
	}
	if out.Pantry.SpecialNotes == nil || *out.Pantry.SpecialNotes != "Limited info — places-only" {
		t.Fatalf("expected places_only special_notes, got %v", out.Pantry.SpecialNotes)
	}
}

func TestIngest_ScrapeFailureFallsBackToPlacesOnly(t *testing.T) {
	p := &ingest.Pipeline{
		Scraper:   &fakeScraper{err: &scraper.Failure{Reason: scraper.FailureTimeout}},
		Extractor: extractor.New(&fakeLLM{}, fixedNow),
	}

	out := p.Ingest(context.Background(), model.Candidate{PlaceID: "a", Name: "Downtown Pantry", Website: "https://example.org"})
	if out.Kind != ingest.OutcomePlacesOnly {
		t.Fatalf("expected places_only on scrape failure, got %v", out.Kind)
	}
	if out.Reason == "" {
		t.Fatal("expected a reason to be recorded")
	}
}

func TestIngest_SuccessfulExtractionYieldsEnriched(t *testing.T) {
	p := &ingest.Pipeline{
		Scraper:   &fakeScraper{text: "Open Monday through Friday, 9am to 5pm. No ID required."},
		Extractor: extractor.New(&fakeLLM{response: `{"status":"OPEN","hours_notes":"9am-5pm","confidence":4}`}, fixedNow),
	}

	out := p.Ingest(context.Background(), model.Candidate{PlaceID: "a", Name: "Downtown Pantry", Website: "https://example.org"})
	if out.Kind != ingest.OutcomeEnriched {
		t.Fatalf("expected enriched, got %v", out.Kind)
	}
	if out.Pantry.Status != model.StatusOpen || out.Pantry.Confidence != 4 {
		t.Fatalf("unexpected enriched pantry: %+v", out.Pantry)
	}
	if out.Pantry.SourceURL == nil || *out.Pantry.SourceURL != "https://example.org" {
		t.Fatal("expected source url to be recorded on enrichment")
	}
}

func TestIngest_ExtractionFailureFallsBackToPlacesOnly(t *testing.T) {
	p := &ingest.Pipeline{
		Scraper:   &fakeScraper{text: "some unrelated page text"},
		Extractor: extractor.New(&fakeLLM{err: errors.New("llm down")}, fixedNow),
	}

	out := p.Ingest(context.Background(), model.Candidate{PlaceID: "a", Name: "Downtown Pantry", Website: "https://example.org"})
	if out.Kind != ingest.OutcomePlacesOnly {
		t.Fatalf("expected places_only on extraction failure, got %v", out.Kind)
	}
}

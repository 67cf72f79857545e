package places_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pantryscout-discovery/internal/model"
	"pantryscout-discovery/internal/places"
)

type fakeProvider struct {
	byVariant map[string][]model.Candidate
	failing   map[string]bool
}

func (f *fakeProvider) Search(_ context.Context, query string, _ model.Point, _ int) ([]model.Candidate, error) {
	if f.failing[query] {
		return nil, errors.New("provider unavailable")
	}
	return f.byVariant[query], nil
}

func (f *fakeProvider) Website(context.Context, string) (string, error) { return "", nil }

type memCache struct {
	sets map[string]model.CandidateSet
}

func newMemCache() *memCache { return &memCache{sets: make(map[string]model.CandidateSet)} }

func (m *memCache) Get(_ context.Context, fp string) (model.CandidateSet, bool, error) {
	s, ok := m.sets[fp]
	return s, ok, nil
}

func (m *memCache) Set(_ context.Context, set model.CandidateSet, _ time.Duration) error {
	m.sets[set.Fingerprint] = set
	return nil
}

func TestFindCandidates_DedupesAcrossVariants(t *testing.T) {
	provider := &fakeProvider{byVariant: map[string][]model.Candidate{
		"food bank":   {{PlaceID: "a"}, {PlaceID: "b"}},
		"food pantry": {{PlaceID: "b"}, {PlaceID: "c"}},
	}}
	client := &places.Client{
		Provider: provider, Cache: newMemCache(),
		Variants: []string{"food bank", "food pantry"}, LatLngRound: 3, CacheTTL: time.Hour,
	}

	got, err := client.FindCandidates(context.Background(), model.Point{Lat: 1, Lng: 2}, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 deduped candidates, got %d: %+v", len(got), got)
	}
}

func TestFindCandidates_TolerantOfPartialVariantFailure(t *testing.T) {
	provider := &fakeProvider{
		byVariant: map[string][]model.Candidate{"food pantry": {{PlaceID: "a"}}},
		failing:   map[string]bool{"food bank": true},
	}
	client := &places.Client{
		Provider: provider, Cache: newMemCache(),
		Variants: []string{"food bank", "food pantry"}, LatLngRound: 3, CacheTTL: time.Hour,
	}

	got, err := client.FindCandidates(context.Background(), model.Point{Lat: 1, Lng: 2}, 5000)
	if err != nil {
		t.Fatalf("expected partial failure to be tolerated, got error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate from the surviving variant, got %d", len(got))
	}
}

func TestFindCandidates_FailsWhenEveryVariantFails(t *testing.T) {
	provider := &fakeProvider{failing: map[string]bool{"food bank": true, "food pantry": true}}
	client := &places.Client{
		Provider: provider, Cache: newMemCache(),
		Variants: []string{"food bank", "food pantry"}, LatLngRound: 3, CacheTTL: time.Hour,
	}

	_, err := client.FindCandidates(context.Background(), model.Point{Lat: 1, Lng: 2}, 5000)
	if err == nil {
		t.Fatal("expected error when every variant fails")
	}
}

func TestFindCandidates_UsesCacheOnSecondCall(t *testing.T) {
	calls := 0
	provider := &fakeProvider{byVariant: map[string][]model.Candidate{"food bank": {{PlaceID: "a"}}}}
	countingProvider := &countingSearch{Provider: provider, calls: &calls}
	client := &places.Client{
		Provider: countingProvider, Cache: newMemCache(),
		Variants: []string{"food bank"}, LatLngRound: 3, CacheTTL: time.Hour,
	}

	center := model.Point{Lat: 1, Lng: 2}
	if _, err := client.FindCandidates(context.Background(), center, 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.FindCandidates(context.Background(), center, 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected provider to be called exactly once across both searches, got %d", calls)
	}
}

type countingSearch struct {
	places.Provider
	calls *int
}

func (c *countingSearch) Search(ctx context.Context, query string, center model.Point, radiusMeters int) ([]model.Candidate, error) {
	*c.calls++
	return c.Provider.Search(ctx, query, center, radiusMeters)
}

package places_test

import (
	"testing"

	"pantryscout-discovery/internal/model"
	"pantryscout-discovery/internal/places"
)

func TestFingerprint_StableUnderTinyCoordinateJitter(t *testing.T) {
	a := places.Fingerprint(model.Point{Lat: 40.7128, Lng: -74.0060}, 5000, []string{"food bank", "food pantry"}, 3)
	b := places.Fingerprint(model.Point{Lat: 40.71281, Lng: -74.00601}, 5000, []string{"food bank", "food pantry"}, 3)

	if a != b {
		t.Fatalf("expected fingerprints to match after rounding, got %s != %s", a, b)
	}
}

func TestFingerprint_IgnoresVariantOrderAndCase(t *testing.T) {
	a := places.Fingerprint(model.Point{Lat: 40.7128, Lng: -74.0060}, 5000, []string{"Food Bank", "food pantry"}, 3)
	b := places.Fingerprint(model.Point{Lat: 40.7128, Lng: -74.0060}, 5000, []string{"food pantry", "food bank"}, 3)

	if a != b {
		t.Fatalf("expected fingerprint to be order/case insensitive over variants, got %s != %s", a, b)
	}
}

func TestFingerprint_DiffersAcrossRadius(t *testing.T) {
	a := places.Fingerprint(model.Point{Lat: 40.7128, Lng: -74.0060}, 5000, []string{"food bank"}, 3)
	b := places.Fingerprint(model.Point{Lat: 40.7128, Lng: -74.0060}, 8000, []string{"food bank"}, 3)

	if a == b {
		t.Fatal("expected different radius to produce a different fingerprint")
	}
}

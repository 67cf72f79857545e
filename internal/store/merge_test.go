package store

import (
	"testing"

	"pantryscout-discovery/internal/model"
)

func TestMergeNonEmpty_KeepsExistingWhenNextIsZero(t *testing.T) {
	base := model.Pantry{Name: "Original Pantry", City: "Springfield", Confidence: 4}
	next := model.Pantry{Name: "", City: "", Confidence: 0}

	merged := mergeNonEmpty(base, next)

	if merged.Name != "Original Pantry" || merged.City != "Springfield" || merged.Confidence != 4 {
		t.Fatalf("expected zero fields on next to leave base untouched, got %+v", merged)
	}
}

func TestMergeNonEmpty_OverwritesWithNonZeroNext(t *testing.T) {
	base := model.Pantry{Name: "Old Name", Confidence: 2}
	next := model.Pantry{Name: "New Name", Confidence: 5}

	merged := mergeNonEmpty(base, next)

	if merged.Name != "New Name" || merged.Confidence != 5 {
		t.Fatalf("expected next's non-zero fields to win, got %+v", merged)
	}
}

func TestMergeNonEmpty_UnknownStatusNeverOverwritesKnownStatus(t *testing.T) {
	base := model.Pantry{Status: model.StatusOpen}
	next := model.Pantry{Status: model.StatusUnknown}

	merged := mergeNonEmpty(base, next)

	if merged.Status != model.StatusOpen {
		t.Fatalf("expected UNKNOWN to not clobber a known status, got %v", merged.Status)
	}
}

func TestMergeNonEmpty_IsIDRequiredAlwaysTakesNextValue(t *testing.T) {
	base := model.Pantry{IsIDRequired: true}
	next := model.Pantry{IsIDRequired: false}

	merged := mergeNonEmpty(base, next)

	if merged.IsIDRequired != false {
		t.Fatalf("expected is_id_required to always follow the latest extraction, got %v", merged.IsIDRequired)
	}
}

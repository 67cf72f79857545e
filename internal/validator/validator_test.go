package validator_test

import (
	"strings"
	"testing"

	"pantryscout-discovery/internal/validator"
)

func TestSanitize_InRangeConfidencePassesThroughUnchanged(t *testing.T) {
	out := validator.Sanitize("OPEN", 9, nil, nil, "", "", nil, nil, true)
	if out.Confidence != 9 {
		t.Fatalf("expected in-range confidence to pass through unchanged, got %d", out.Confidence)
	}
}

func TestSanitize_ClampsAboveMaxToTen(t *testing.T) {
	out := validator.Sanitize("OPEN", 15, nil, nil, "", "", nil, nil, true)
	if out.Confidence != 10 {
		t.Fatalf("expected out-of-range confidence to clamp to 10, got %d", out.Confidence)
	}
}

func TestSanitize_ClampsBelowMinToOne(t *testing.T) {
	out := validator.Sanitize("OPEN", -3, nil, nil, "", "", nil, nil, true)
	if out.Confidence != 1 {
		t.Fatalf("expected out-of-range confidence to clamp to 1, got %d", out.Confidence)
	}
}

func TestSanitize_MissingConfidenceFloorsToFiveWithSourceURL(t *testing.T) {
	out := validator.Sanitize("OPEN", 0, nil, nil, "", "", nil, nil, true)
	if out.Confidence != 5 {
		t.Fatalf("expected missing confidence with a source_url to floor to 5, got %d", out.Confidence)
	}
}

func TestSanitize_MissingConfidenceFloorsToThreeWithoutSourceURL(t *testing.T) {
	out := validator.Sanitize("OPEN", 0, nil, nil, "", "", nil, nil, false)
	if out.Confidence != 3 {
		t.Fatalf("expected missing confidence without a source_url to floor to 3, got %d", out.Confidence)
	}
}

func TestSanitize_CoercesUnknownStatus(t *testing.T) {
	out := validator.Sanitize("maybe open idk", 3, nil, nil, "", "", nil, nil, true)
	if out.Status != "UNKNOWN" {
		t.Fatalf("expected unrecognized status to coerce to UNKNOWN, got %q", out.Status)
	}
}

func TestSanitize_NilIsIDRequiredDefaultsFalse(t *testing.T) {
	out := validator.Sanitize("OPEN", 3, nil, nil, "", "", nil, nil, true)
	if out.IsIDRequired != false {
		t.Fatal("expected nil is_id_required to default to false")
	}
}

func TestSanitize_EmptyEligibilityRulesGetsDefault(t *testing.T) {
	out := validator.Sanitize("OPEN", 3, nil, []string{"", "  "}, "", "", nil, nil, true)
	if len(out.EligibilityRules) != 1 || out.EligibilityRules[0] != "Open to all - no restrictions listed" {
		t.Fatalf("expected default eligibility rule, got %+v", out.EligibilityRules)
	}
}

func TestSanitize_StripsControlCharactersAndTruncates(t *testing.T) {
	dirty := "Open\x00Mon-Fri\x07 9am-5pm"
	out := validator.Sanitize("OPEN", 3, nil, nil, dirty, "", nil, nil, true)
	if out.HoursNotes != "OpenMon-Fri 9am-5pm" {
		t.Fatalf("expected control characters stripped, got %q", out.HoursNotes)
	}

	long := validator.Sanitize("OPEN", 3, nil, nil, strings.Repeat("a", 3000), "", nil, nil, true)
	if n := len([]rune(long.HoursNotes)); n != 2048 {
		t.Fatalf("expected hours_notes truncated to 2048 runes, got %d", n)
	}
}

func TestParseCityState_StandardUSAddress(t *testing.T) {
	city, state := validator.ParseCityState("123 Main St, Springfield, IL 62701, USA")
	if city != "Springfield" || state != "IL" {
		t.Fatalf("expected Springfield/IL, got %q/%q", city, state)
	}
}

func TestParseCityState_MissingTooFewPartsReturnsEmpty(t *testing.T) {
	city, state := validator.ParseCityState("Springfield")
	if city != "" || state != "" {
		t.Fatalf("expected empty city/state for underspecified address, got %q/%q", city, state)
	}
}

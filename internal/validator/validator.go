// Package validator sanitizes a pantry record before it reaches the
// store. It never rejects a record outright — extraction noise gets
// clamped to a safe default instead — matching the original pipeline's
// validate_extraction, which likewise only coerces and never raises.
package validator

import (
	"strings"
	"unicode"
)

const (
	minConfidence          = 1
	maxConfidence          = 10
	missingConfidenceFloor = 5
	placesOnlyFloor        = 3
	maxFieldRunes          = 2048
)

var defaultEligibilityRules = []string{"Open to all - no restrictions listed"}

// Sanitize applies the ordered clamp rules to an extraction's raw
// fields, in the same order the original validator applies them:
// confidence range, status coercion, is_id_required defaulting,
// eligibility_rules defaulting, then control-character stripping and
// truncation of every free-text field. hasSourceURL picks the floor a
// missing confidence falls back to: 3 for a places-only record (no
// source_url), 5 otherwise.
func Sanitize(status string, confidence int, isIDRequired *bool, eligibilityRules []string, hoursNotes, hoursToday string, residencyReq, specialNotes *string, hasSourceURL bool) Sanitized {
	out := Sanitized{
		Status:           coerceStatus(status),
		Confidence:       clampConfidence(confidence, hasSourceURL),
		IsIDRequired:     isIDRequiredOrDefault(isIDRequired),
		EligibilityRules: rulesOrDefault(eligibilityRules),
		HoursNotes:       cleanText(hoursNotes),
		HoursToday:       cleanText(hoursToday),
		ResidencyReq:     cleanTextPtr(residencyReq),
		SpecialNotes:     cleanTextPtr(specialNotes),
	}
	return out
}

// Sanitized holds the clamped, text-cleaned fields ready to flow into
// a model.Pantry.
type Sanitized struct {
	Status           string
	Confidence       int
	IsIDRequired     bool
	EligibilityRules []string
	HoursNotes       string
	HoursToday       string
	ResidencyReq     *string
	SpecialNotes     *string
}

// clampConfidence treats a zero confidence as "missing" (the extractor
// never sets it deliberately, so a genuine zero can't occur) and floors
// it accordingly; any other out-of-range value is clamped to the
// nearest bound rather than reset.
func clampConfidence(c int, hasSourceURL bool) int {
	if c == 0 {
		if hasSourceURL {
			return missingConfidenceFloor
		}
		return placesOnlyFloor
	}
	if c < minConfidence {
		return minConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

func coerceStatus(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN", "CLOSED", "WAITLIST":
		return strings.ToUpper(strings.TrimSpace(s))
	default:
		return "UNKNOWN"
	}
}

func isIDRequiredOrDefault(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func rulesOrDefault(rules []string) []string {
	var cleaned []string
	for _, r := range rules {
		r = strings.TrimSpace(r)
		if r != "" {
			cleaned = append(cleaned, cleanText(r))
		}
	}
	if len(cleaned) == 0 {
		return append([]string{}, defaultEligibilityRules...)
	}
	return cleaned
}

func cleanTextPtr(p *string) *string {
	if p == nil {
		return nil
	}
	cleaned := cleanText(*p)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// cleanText strips control characters (extraction occasionally leaks
// them from malformed PDFs or scraped markup) and truncates to
// maxFieldRunes so one bloated field can't blow out document size.
func cleanText(s string) string {
	var b strings.Builder
	count := 0
	for _, r := range s {
		if count >= maxFieldRunes {
			break
		}
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
		count++
	}
	return strings.TrimSpace(b.String())
}

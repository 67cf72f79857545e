// Package extractor turns scraped page text into structured pantry
// facts via an LLM, grounded on the original discovery service's
// ExtractorService (services/extractor.py): same response schema,
// same "ask for JSON, then salvage JSON out of prose" fallback.
package extractor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// FailureReason names why extraction produced nothing usable.
type FailureReason string

const (
	FailureLLMError    FailureReason = "llm_error"
	FailureInvalidJSON FailureReason = "invalid_json"
	FailureEmptyInput  FailureReason = "empty_response"
)

// Failure is the typed error Extract returns when it can't produce a
// Result.
type Failure struct {
	Reason FailureReason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("extract: %s: %v", f.Reason, f.Err)
	}
	return fmt.Sprintf("extract: %s", f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// Result mirrors the original extractor's RESPONSE_SCHEMA. Fields left
// unset by the model are zero-valued; the validator is what applies
// the low-confidence defaults, not this package.
type Result struct {
	Status           string   `json:"status"`
	HoursNotes       string   `json:"hours_notes"`
	HoursToday       string   `json:"hours_today"`
	EligibilityRules []string `json:"eligibility_rules"`
	IsIDRequired     *bool    `json:"is_id_required"`
	ResidencyReq     *string  `json:"residency_req"`
	SpecialNotes     *string  `json:"special_notes"`
	Confidence       int      `json:"confidence"`
}

// Client is the external collaborator contract: an LLM completion
// call. One call, one prompt, one text response.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor is stateless and safe for concurrent use across the
// worker pool; every call builds its own prompt from its own inputs.
type Extractor struct {
	Client Client
	Now    func() time.Time
}

// New builds an Extractor. now defaults to time.Now when nil, letting
// tests pin the date interpolated into the prompt.
func New(client Client, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{Client: client, Now: now}
}

func (e *Extractor) Extract(ctx context.Context, pageText, candidateName string) (Result, error) {
	if strings.TrimSpace(pageText) == "" {
		return Result{}, &Failure{Reason: FailureEmptyInput}
	}

	prompt := e.buildPrompt(pageText, candidateName)
	raw, err := e.Client.Complete(ctx, prompt)
	if err != nil {
		return Result{}, &Failure{Reason: FailureLLMError, Err: err}
	}

	result, err := parseResult(raw)
	if err != nil {
		return Result{}, &Failure{Reason: FailureInvalidJSON, Err: err}
	}
	if result.Confidence <= 4 {
		log.Printf("[extractor] low confidence %d for %q", result.Confidence, candidateName)
	}
	return result, nil
}

func (e *Extractor) buildPrompt(pageText, candidateName string) string {
	today := e.Now().Format("2006-01-02")
	return fmt.Sprintf(`Today's date is %s.

You are extracting structured facts about a food pantry named %q from
the page text below. Respond with a single JSON object matching this
shape and nothing else:

{
  "status": "OPEN" | "CLOSED" | "WAITLIST" | "UNKNOWN",
  "hours_notes": string,
  "hours_today": string,
  "eligibility_rules": string[],
  "is_id_required": boolean | null,
  "residency_req": string | null,
  "special_notes": string | null,
  "confidence": integer 1-10
}

If the page does not mention a fact, use its null/empty/UNKNOWN value
and lower the confidence score accordingly.

PAGE TEXT:
%s
`, today, candidateName, pageText)
}

// Package model defines the shared data structures for pantry discovery:
// the canonical Pantry record, places-search candidates, and the
// process-local Job/Event types that flow between the orchestrator and
// its subscribers.
package model

import "time"

// Status is the operational status of a pantry.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusClosed   Status = "CLOSED"
	StatusWaitlist Status = "WAITLIST"
	StatusUnknown  Status = "UNKNOWN"
)

// ParseStatus coerces a raw string into a valid Status, falling back to
// StatusUnknown for anything it doesn't recognize.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusOpen, StatusClosed, StatusWaitlist, StatusUnknown:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// InventoryStatus mirrors the original system's coarse stock level. It is
// never set by extraction — only defaulted on insert and left alone by
// upserts, per the discovery service it's grounded on.
type InventoryStatus string

const (
	InventoryHigh   InventoryStatus = "High"
	InventoryMedium InventoryStatus = "Medium"
	InventoryLow    InventoryStatus = "Low"
)

// Point is a (longitude, latitude) pair in GeoJSON order, matching the
// geospatial index the store maintains on it.
type Point struct {
	Lng float64 `bson:"lng" json:"lng"`
	Lat float64 `bson:"lat" json:"lat"`
}

// Pantry is the canonical enriched record.
type Pantry struct {
	ID               string          `bson:"_id,omitempty" json:"id"`
	PlaceID          string          `bson:"place_id" json:"place_id"`
	Name             string          `bson:"name" json:"name"`
	Address          string          `bson:"address" json:"address"`
	City             string          `bson:"city,omitempty" json:"city,omitempty"`
	State            string          `bson:"state,omitempty" json:"state,omitempty"`
	Point            Point           `bson:"point" json:"point"`
	Status           Status          `bson:"status" json:"status"`
	HoursNotes       string          `bson:"hours_notes" json:"hours_notes"`
	HoursToday       string          `bson:"hours_today" json:"hours_today"`
	EligibilityRules []string        `bson:"eligibility_rules" json:"eligibility_rules"`
	IsIDRequired     bool            `bson:"is_id_required" json:"is_id_required"`
	ResidencyReq     *string         `bson:"residency_req,omitempty" json:"residency_req,omitempty"`
	SpecialNotes     *string         `bson:"special_notes,omitempty" json:"special_notes,omitempty"`
	Confidence       int             `bson:"confidence" json:"confidence"`
	InventoryStatus  InventoryStatus `bson:"inventory_status" json:"inventory_status"`
	SourceURL        *string         `bson:"source_url,omitempty" json:"source_url,omitempty"`
	ScrapeMethod     string          `bson:"scrape_method,omitempty" json:"scrape_method,omitempty"`
	ScrapedAt        *time.Time      `bson:"scraped_at,omitempty" json:"scraped_at,omitempty"`
	LastUpdated      time.Time       `bson:"last_updated" json:"last_updated"`
}

// Candidate is a pre-enrichment record returned by the places provider.
type Candidate struct {
	PlaceID          string  `bson:"place_id" json:"place_id"`
	Name             string  `bson:"name" json:"name"`
	FormattedAddress string  `bson:"formatted_address" json:"formatted_address"`
	Lat              float64 `bson:"lat" json:"lat"`
	Lng              float64 `bson:"lng" json:"lng"`
	Website          string  `bson:"website,omitempty" json:"website,omitempty"` // empty when the provider has none on file
}

// CandidateSet is the deduplicated result of a places search for one
// fingerprint.
type CandidateSet struct {
	Fingerprint string
	Candidates  []Candidate
	CreatedAt   time.Time
}

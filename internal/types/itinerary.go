package types

import "github.com/google/uuid"

// Provenance records which pipeline tier produced an itinerary. Callers never
// need to branch on it; it is informational only.
type Provenance string

const (
	ProvenanceGenerator      Provenance = "generator"
	ProvenanceRepaired       Provenance = "generator-repaired"
	ProvenanceTextExtraction Provenance = "text-extraction-fallback"
	ProvenanceRuleBased      Provenance = "rule-based-fallback"
)

// ScheduledVisit is one stop in a day itinerary with its computed time window.
// Times are local civil HH:MM strings; the domain is single-timezone.
type ScheduledVisit struct {
	Attraction            Attraction `json:"attraction"`
	VisitOrder            int        `json:"visit_order"`
	StartTime             string     `json:"start_time"`
	DurationMinutes       int        `json:"duration_minutes"`
	EndTime               string     `json:"end_time"`
	TravelMinutesFromPrev int        `json:"travel_minutes_from_prev"`
	CostEstimate          int        `json:"cost_estimate"`
	Rationale             string     `json:"rationale,omitempty"`
}

// Itinerary is the canonical caller-facing result, identical in shape
// regardless of which tier produced the content.
type Itinerary struct {
	ID                   uuid.UUID        `json:"id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Date                 string           `json:"date"`
	Visits               []ScheduledVisit `json:"visits"`
	TotalDurationMinutes int              `json:"total_duration_minutes"`
	TotalCost            int              `json:"total_cost"`
	Provenance           Provenance       `json:"provenance"`
}

// UserIntent is derived once from the raw request text and never mutated.
// Zero values mean "not derivable from the text".
type UserIntent struct {
	RawText             string               `json:"raw_text"`
	BudgetCeiling       int                  `json:"budget_ceiling,omitempty"`
	PreferredCategories []AttractionCategory `json:"preferred_categories,omitempty"`
	GroupSize           int                  `json:"group_size,omitempty"`
	NeedsAccessible     bool                 `json:"needs_accessible,omitempty"`
	TransportMode       string               `json:"transport_mode,omitempty"`
}

// PlanRequest is the caller-facing request. Catalog and Context are optional
// pre-fetched inputs; when nil they are resolved by the service.
type PlanRequest struct {
	RequestText string           `json:"request_text"`
	Catalog     []Attraction     `json:"catalog,omitempty"`
	Context     *ContextSnapshot `json:"context,omitempty"`
}

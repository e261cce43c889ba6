package types

// AttractionCategory classifies an attraction for filtering and keyword matching.
type AttractionCategory string

const (
	CategoryCultural      AttractionCategory = "cultural"
	CategoryNature        AttractionCategory = "nature"
	CategoryEntertainment AttractionCategory = "entertainment"
	CategoryShopping      AttractionCategory = "shopping"
	CategoryFood          AttractionCategory = "food"
	CategoryHistorical    AttractionCategory = "historical"
	CategoryMuseum        AttractionCategory = "museum"
	CategoryNightlife     AttractionCategory = "nightlife"
)

// IndoorCompatible reports whether the category is safe to schedule under
// storm, heavy rain or poor air quality.
func (c AttractionCategory) IndoorCompatible() bool {
	switch c {
	case CategoryMuseum, CategoryCultural, CategoryShopping, CategoryFood:
		return true
	}
	return false
}

// PriceTier is the coarse cost classification carried by catalog data.
type PriceTier string

const (
	PriceFree   PriceTier = "free"
	PriceLow    PriceTier = "low"
	PriceMedium PriceTier = "medium"
	PriceHigh   PriceTier = "high"
	PriceLuxury PriceTier = "luxury"
)

// CostEstimate maps a price tier to its fixed representative cost. Totals are
// always recomputed from these values, never trusted from generator text.
func (p PriceTier) CostEstimate() int {
	switch p {
	case PriceFree:
		return 0
	case PriceLow:
		return 100
	case PriceMedium:
		return 250
	case PriceHigh:
		return 500
	case PriceLuxury:
		return 1000
	}
	return 250
}

// ParsePriceTier normalizes qualitative cost words into a tier. Unknown words
// map to medium.
func ParsePriceTier(s string) PriceTier {
	switch s {
	case "free":
		return PriceFree
	case "low", "cheap", "budget":
		return PriceLow
	case "medium", "moderate":
		return PriceMedium
	case "high", "expensive":
		return PriceHigh
	case "luxury", "premium":
		return PriceLuxury
	}
	return PriceMedium
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Attraction is immutable catalog reference data. The pipeline never mutates
// it; scheduling decisions are recorded in ScheduledVisit instead.
type Attraction struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Description          string             `json:"description"`
	Category             AttractionCategory `json:"category"`
	Location             GeoPoint           `json:"location"`
	PriceTier            PriceTier          `json:"price_tier"`
	VisitDurationMinutes int                `json:"visit_duration_minutes"`
	WheelchairAccessible bool               `json:"wheelchair_accessible"`
	FamilyFriendly       bool               `json:"family_friendly"`
}

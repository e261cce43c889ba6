package planner

import (
	"strings"

	"github.com/itinera-ai/itinera/internal/types"
)

const (
	highTemperatureC   = 35.0
	highUVIndex        = 8.0
	lowAirQualityScore = 40
)

var stormConditionWords = []string{"rain", "storm", "thunder", "drizzle", "shower", "snow", "hail"}

// ClassifyBias derives the context bias from the weather snapshot and alerts.
func ClassifyBias(snap types.ContextSnapshot) types.ContextBias {
	condition := strings.ToLower(snap.Weather.Condition)
	if containsAny(condition, stormConditionWords) || snap.HasHighSeverityAlert() {
		return types.BiasIndoor
	}
	if snap.Weather.TemperatureC > highTemperatureC || snap.Weather.UVIndex > highUVIndex {
		return types.BiasMixed
	}
	if snap.Weather.AirQualityScore > 0 && snap.Weather.AirQualityScore < lowAirQualityScore {
		return types.BiasIndoor
	}
	return types.BiasNone
}

// FilterCandidates narrows the catalog to a size-capped, context-aware
// candidate subset. Pure function over already-fetched data.
func FilterCandidates(catalog []types.Attraction, snap types.ContextSnapshot, intent *types.UserIntent, cap int) ([]types.Attraction, types.ContextBias) {
	bias := ClassifyBias(snap)

	eligible := catalog
	if bias == types.BiasIndoor {
		eligible = make([]types.Attraction, 0, len(catalog))
		for _, a := range catalog {
			if a.Category.IndoorCompatible() {
				eligible = append(eligible, a)
			}
		}
	}

	var ordered []types.Attraction
	switch {
	case intent != nil && wantsCulturalAndFood(intent.RawText):
		ordered = blendCulturalAndFood(eligible)
	case intent != nil && len(intent.PreferredCategories) > 0:
		ordered = preferCategories(eligible, intent.PreferredCategories)
	default:
		ordered = eligible
	}

	if intent != nil && intent.NeedsAccessible {
		ordered = preferAccessible(ordered)
	}

	if cap > 0 && len(ordered) > cap {
		ordered = ordered[:cap]
	}
	return ordered, bias
}

// blendCulturalAndFood puts up to 2 cultural-type and up to 2 food matches at
// the front of the candidate order, then the remainder in catalog order.
func blendCulturalAndFood(attractions []types.Attraction) []types.Attraction {
	var cultural, food, rest []types.Attraction
	for _, a := range attractions {
		switch {
		case len(cultural) < 2 && isCulturalCategory(a.Category):
			cultural = append(cultural, a)
		case len(food) < 2 && a.Category == types.CategoryFood:
			food = append(food, a)
		default:
			rest = append(rest, a)
		}
	}
	out := make([]types.Attraction, 0, len(attractions))
	out = append(out, cultural...)
	out = append(out, food...)
	out = append(out, rest...)
	return out
}

func isCulturalCategory(c types.AttractionCategory) bool {
	return c == types.CategoryCultural || c == types.CategoryMuseum || c == types.CategoryHistorical
}

func preferCategories(attractions []types.Attraction, preferred []types.AttractionCategory) []types.Attraction {
	wanted := make(map[types.AttractionCategory]bool, len(preferred))
	for _, c := range preferred {
		wanted[c] = true
	}
	var matched, rest []types.Attraction
	for _, a := range attractions {
		if wanted[a.Category] {
			matched = append(matched, a)
		} else {
			rest = append(rest, a)
		}
	}
	return append(matched, rest...)
}

func preferAccessible(attractions []types.Attraction) []types.Attraction {
	var accessible, rest []types.Attraction
	for _, a := range attractions {
		if a.WheelchairAccessible {
			accessible = append(accessible, a)
		} else {
			rest = append(rest, a)
		}
	}
	return append(accessible, rest...)
}

package planner

import (
	"log/slog"
	"strings"

	"github.com/itinera-ai/itinera/internal/types"
)

// FallbackEngine is the rule-based selection used whenever the generator is
// unavailable, every repair tier fails, or deduplication short-circuits a
// repeat request.
type FallbackEngine struct {
	logger    *slog.Logger
	minVisits int
}

func NewFallbackEngine(minVisits int, logger *slog.Logger) *FallbackEngine {
	if minVisits <= 0 {
		minVisits = 3
	}
	return &FallbackEngine{logger: logger, minVisits: minVisits}
}

// Select applies the rule ladder: combined cultural+food intent, then
// single-category keyword matching with weather-aware exclusions, then plain
// catalog order, topping up until at least minVisits items are chosen.
func (e *FallbackEngine) Select(intent types.UserIntent, candidates []types.Attraction, snap types.ContextSnapshot) []PlanItem {
	text := strings.ToLower(intent.RawText)
	indoorOnly := ClassifyBias(snap) == types.BiasIndoor

	var picked []types.Attraction
	blended := false

	switch {
	case wantsCulturalAndFood(intent.RawText):
		picked = pickByPredicate(candidates, 2, func(a types.Attraction) bool {
			return isCulturalCategory(a.Category)
		})
		picked = append(picked, pickByPredicate(exclude(candidates, picked), 2, func(a types.Attraction) bool {
			return a.Category == types.CategoryFood
		})...)
		// A deliberate cultural+food blend stays as-is; padding it with
		// unrelated stops would defeat the expressed intent.
		blended = len(picked) >= 2

	case containsAny(text, culturalKeywords):
		picked = e.pickCategory(candidates, indoorOnly, isCulturalCategory)

	case containsAny(text, natureKeywords):
		picked = e.pickCategory(candidates, indoorOnly, func(c types.AttractionCategory) bool {
			return c == types.CategoryNature
		})

	case containsAny(text, foodKeywords):
		picked = e.pickCategory(candidates, indoorOnly, func(c types.AttractionCategory) bool {
			return c == types.CategoryFood
		})
	}

	if len(picked) == 0 {
		limit := e.minVisits
		if limit > len(candidates) {
			limit = len(candidates)
		}
		picked = append(picked, candidates[:limit]...)
	}

	// Top up from the remaining catalog until the minimum is met or the
	// catalog is exhausted.
	if !blended && len(picked) < e.minVisits {
		for _, a := range exclude(candidates, picked) {
			if len(picked) >= e.minVisits {
				break
			}
			picked = append(picked, a)
		}
	}

	e.logger.Debug("Rule-based fallback selected attractions", slog.Int("count", len(picked)))

	items := make([]PlanItem, 0, len(picked))
	for _, a := range picked {
		items = append(items, PlanItem{
			Attraction: a,
			Rationale:  fallbackRationale(a),
		})
	}
	return items
}

func (e *FallbackEngine) pickCategory(candidates []types.Attraction, indoorOnly bool, match func(types.AttractionCategory) bool) []types.Attraction {
	return pickByPredicate(candidates, e.minVisits+1, func(a types.Attraction) bool {
		if indoorOnly && !a.Category.IndoorCompatible() {
			return false
		}
		return match(a.Category)
	})
}

func pickByPredicate(candidates []types.Attraction, limit int, match func(types.Attraction) bool) []types.Attraction {
	var out []types.Attraction
	for _, a := range candidates {
		if len(out) >= limit {
			break
		}
		if match(a) {
			out = append(out, a)
		}
	}
	return out
}

func exclude(candidates, already []types.Attraction) []types.Attraction {
	seen := make(map[string]bool, len(already))
	for _, a := range already {
		seen[a.ID] = true
	}
	var out []types.Attraction
	for _, a := range candidates {
		if !seen[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

func fallbackRationale(a types.Attraction) string {
	switch {
	case isCulturalCategory(a.Category):
		return "A well-regarded cultural stop that fits most day plans."
	case a.Category == types.CategoryFood:
		return "A reliable place to eat between visits."
	case a.Category == types.CategoryNature:
		return "An open-air break in the day's schedule."
	}
	return "A popular stop included to round out the day."
}

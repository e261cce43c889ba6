package planner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/itinera-ai/itinera/internal/types"
)

// Keyword groups used for intent derivation and fallback selection. Substring
// matching is a deliberate precision-recall tradeoff; paraphrased or
// multilingual requests fall through to catalog-order selection.
var (
	culturalKeywords = []string{"cultural", "culture", "heritage", "temple", "pagoda", "history", "historical", "museum", "monument"}
	foodKeywords     = []string{"food", "lunch", "dinner", "breakfast", "eat", "restaurant", "market", "cuisine", "street food"}
	natureKeywords   = []string{"nature", "park", "lake", "garden", "outdoor", "scenery"}
)

var (
	budgetRe    = regexp.MustCompile(`(?i)budget\s*(?:of\s*)?(\d+)|under\s+(\d+)`)
	groupSizeRe = regexp.MustCompile(`(?i)(\d+)\s*(?:people|persons|adults|of us|travellers|travelers)`)
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// DeriveIntent extracts whatever structured signals the free-text request
// carries. Fields stay at their zero value when nothing is derivable.
func DeriveIntent(rawText string) types.UserIntent {
	text := strings.ToLower(rawText)
	intent := types.UserIntent{RawText: rawText}

	if m := budgetRe.FindStringSubmatch(text); m != nil {
		num := m[1]
		if num == "" {
			num = m[2]
		}
		if v, err := strconv.Atoi(num); err == nil && v > 0 {
			intent.BudgetCeiling = v
		}
	}

	if m := groupSizeRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			intent.GroupSize = v
		}
	}

	if containsAny(text, culturalKeywords) {
		intent.PreferredCategories = append(intent.PreferredCategories, types.CategoryCultural)
	}
	if containsAny(text, foodKeywords) {
		intent.PreferredCategories = append(intent.PreferredCategories, types.CategoryFood)
	}
	if containsAny(text, natureKeywords) {
		intent.PreferredCategories = append(intent.PreferredCategories, types.CategoryNature)
	}
	if strings.Contains(text, "shopping") {
		intent.PreferredCategories = append(intent.PreferredCategories, types.CategoryShopping)
	}
	if strings.Contains(text, "nightlife") || strings.Contains(text, "bar") {
		intent.PreferredCategories = append(intent.PreferredCategories, types.CategoryNightlife)
	}

	if strings.Contains(text, "wheelchair") || strings.Contains(text, "accessible") || strings.Contains(text, "stroller") {
		intent.NeedsAccessible = true
	}

	switch {
	case strings.Contains(text, "walking") || strings.Contains(text, "on foot"):
		intent.TransportMode = "walking"
	case strings.Contains(text, "public transport") || strings.Contains(text, "bus") || strings.Contains(text, "metro"):
		intent.TransportMode = "transit"
	case strings.Contains(text, "taxi") || strings.Contains(text, "drive") || strings.Contains(text, "car"):
		intent.TransportMode = "driving"
	}

	return intent
}

// wantsCulturalAndFood reports the combined-intent signal that triggers the
// blended cultural+food selection in both the filter and the fallback engine.
func wantsCulturalAndFood(rawText string) bool {
	text := strings.ToLower(rawText)
	return containsAny(text, culturalKeywords) && containsAny(text, foodKeywords)
}

package planner

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itinera-ai/itinera/internal/types"
)

const (
	titleDisplayRunes       = 60
	descriptionDisplayRunes = 140
)

// normalizeItinerary wraps scheduled visits into the canonical caller-facing
// shape. The shape is identical regardless of which tier produced the
// content; callers never branch on provenance.
func normalizeItinerary(requestText string, visits []types.ScheduledVisit, totalDuration, totalCost int, provenance types.Provenance) *types.Itinerary {
	return &types.Itinerary{
		ID:                   uuid.New(),
		Title:                truncateForDisplay(requestText, titleDisplayRunes),
		Description:          "Single-day plan for: " + truncateForDisplay(requestText, descriptionDisplayRunes),
		Date:                 time.Now().Format("2006-01-02"),
		Visits:               visits,
		TotalDurationMinutes: totalDuration,
		TotalCost:            totalCost,
		Provenance:           provenance,
	}
}

func truncateForDisplay(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}

package planner

import (
	"fmt"
	"strings"

	"github.com/itinera-ai/itinera/internal/types"
)

const maxTravelSummaryLines = 12

func buildPlanPrompt(requestText string, candidates []types.Attraction, snap types.ContextSnapshot) string {
	var catalogLines strings.Builder
	for _, a := range candidates {
		fmt.Fprintf(&catalogLines, "- %s | %s | %s | price tier: %s | typical visit: %d min\n",
			a.ID, a.Name, a.Category, a.PriceTier, a.VisitDurationMinutes)
	}

	contextPart := fmt.Sprintf("Current weather: %s, %.0f C, UV index %.0f.",
		snap.Weather.Condition, snap.Weather.TemperatureC, snap.Weather.UVIndex)
	if len(snap.Alerts) > 0 {
		events := make([]string, 0, len(snap.Alerts))
		for _, al := range snap.Alerts {
			events = append(events, al.Event)
		}
		contextPart += " Active alerts: " + strings.Join(events, ", ") + "."
	}

	travelPart := travelTimeSummary(candidates, snap.TravelTimes)
	if travelPart != "" {
		travelPart = "\n        Travel times between attractions (minutes):\n" + travelPart
	}

	return fmt.Sprintf(`
        Plan a single-day itinerary for this request: "%s".
        Choose 3 to 5 attractions ONLY from this list (use the exact id values):
%s
        %s%s
        Return the response STRICTLY as a JSON object with:
        {
        "itineraryName": "A short descriptive name for the day",
        "selectedAttractions": [
            {
            "attractionId": "id from the list above",
            "name": "Name of the attraction",
            "visitOrder": <int, starting at 0>,
            "suggestedTime": "HH:MM start time",
            "duration": <int, visit minutes>,
            "reason": "One sentence on why this fits the request"
            }
        ],
        "totalDuration": <int, minutes>,
        "totalCost": <int>
        }`, requestText, catalogLines.String(), contextPart, travelPart)
}

// travelTimeSummary renders a human-readable slice of the matrix, capped so
// the prompt stays inside the generator's practical context window.
func travelTimeSummary(candidates []types.Attraction, matrix types.TravelTimeMatrix) string {
	if len(matrix) == 0 {
		return ""
	}
	names := make(map[string]string, len(candidates))
	for _, a := range candidates {
		names[a.ID] = a.Name
	}

	var b strings.Builder
	lines := 0
	for _, from := range candidates {
		for _, to := range candidates {
			if from.ID == to.ID || lines >= maxTravelSummaryLines {
				continue
			}
			if mins, ok := matrix.Minutes(from.ID, to.ID); ok {
				fmt.Fprintf(&b, "        %s -> %s: %d\n", names[from.ID], names[to.ID], mins)
				lines++
			}
		}
	}
	return b.String()
}

package planner

import (
	"fmt"
	"regexp"

	"github.com/itinera-ai/itinera/internal/types"
)

// PlanItem is one ordered selection entering the scheduler, already resolved
// against the catalog. SuggestedTime and DurationMinutes are optional hints.
type PlanItem struct {
	Attraction      types.Attraction
	SuggestedTime   string
	DurationMinutes int
	Rationale       string
}

// Scheduler converts an ordered selection into a day schedule. The same
// deterministic path runs regardless of which tier produced the selection.
type Scheduler struct {
	defaultStartMinutes  int
	defaultTravelMinutes int
	defaultVisitMinutes  int
}

func NewScheduler(defaultStartTime string, defaultTravelMinutes, defaultVisitMinutes int) *Scheduler {
	start, ok := parseClock(defaultStartTime)
	if !ok {
		start = 9 * 60
	}
	if defaultTravelMinutes <= 0 {
		defaultTravelMinutes = 90
	}
	if defaultVisitMinutes <= 0 {
		defaultVisitMinutes = 120
	}
	return &Scheduler{
		defaultStartMinutes:  start,
		defaultTravelMinutes: defaultTravelMinutes,
		defaultVisitMinutes:  defaultVisitMinutes,
	}
}

// Build computes start/end times, travel gaps, per-visit costs and totals.
// Ordinals are contiguous from 0; start(i+1) >= end(i) + travel(i -> i+1).
func (s *Scheduler) Build(items []PlanItem, matrix types.TravelTimeMatrix) ([]types.ScheduledVisit, int, int) {
	visits := make([]types.ScheduledVisit, 0, len(items))
	totalDuration := 0
	totalCost := 0
	current := s.defaultStartMinutes

	for i, item := range items {
		travel := 0
		if i == 0 {
			if start, ok := parseClock(item.SuggestedTime); ok {
				current = start
			}
		} else {
			travel = s.defaultTravelMinutes
			if mins, ok := matrix.Minutes(items[i-1].Attraction.ID, item.Attraction.ID); ok {
				travel = mins
			}
			current += travel
		}

		duration := item.DurationMinutes
		if duration <= 0 {
			duration = item.Attraction.VisitDurationMinutes
		}
		if duration <= 0 {
			duration = s.defaultVisitMinutes
		}

		cost := item.Attraction.PriceTier.CostEstimate()

		visits = append(visits, types.ScheduledVisit{
			Attraction:            item.Attraction,
			VisitOrder:            i,
			StartTime:             formatClock(current),
			DurationMinutes:       duration,
			EndTime:               formatClock(current + duration),
			TravelMinutesFromPrev: travel,
			CostEstimate:          cost,
			Rationale:             item.Rationale,
		})

		current += duration
		totalDuration += duration
		totalCost += cost
	}

	return visits, totalDuration, totalCost
}

var clockRe24 = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// parseClock parses a well-formed HH:MM into minutes since midnight.
func parseClock(s string) (int, bool) {
	m := clockRe24.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hours := int(m[1][0]-'0')
	if len(m[1]) == 2 {
		hours = hours*10 + int(m[1][1]-'0')
	}
	minutes := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	return hours*60 + minutes, true
}

// formatClock renders minutes since midnight as zero-padded HH:MM. A packed
// day may run past midnight; hours keep counting rather than wrapping so
// start times stay strictly increasing.
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

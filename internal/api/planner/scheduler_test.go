package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itinera-ai/itinera/internal/types"
)

func schedulerItems() []PlanItem {
	c := repairCandidates()
	return []PlanItem{
		{Attraction: c[0], SuggestedTime: "09:00", DurationMinutes: 90, Rationale: "start early"},
		{Attraction: c[1], DurationMinutes: 60},
		{Attraction: c[2]},
	}
}

func TestSchedulerBuild_TimelineInvariants(t *testing.T) {
	s := NewScheduler("09:00", 90, 120)
	matrix := types.TravelTimeMatrix{
		"a1": {"a2": 15},
	}

	visits, totalDuration, totalCost := s.Build(schedulerItems(), matrix)

	require.Len(t, visits, 3)
	for i, v := range visits {
		assert.Equal(t, i, v.VisitOrder)
	}

	// First visit honors the suggested start; no travel precedes it.
	assert.Equal(t, "09:00", visits[0].StartTime)
	assert.Equal(t, 0, visits[0].TravelMinutesFromPrev)
	assert.Equal(t, "10:30", visits[0].EndTime)

	// Matrix hit for a1 -> a2, default for the missing a2 -> a3 leg.
	assert.Equal(t, 15, visits[1].TravelMinutesFromPrev)
	assert.Equal(t, "10:45", visits[1].StartTime)
	assert.Equal(t, "11:45", visits[1].EndTime)
	assert.Equal(t, 90, visits[2].TravelMinutesFromPrev)
	assert.Equal(t, "13:15", visits[2].StartTime)

	// Third item has no hint; catalog visit duration applies.
	assert.Equal(t, 60, visits[2].DurationMinutes)
	assert.Equal(t, "14:15", visits[2].EndTime)

	assert.Equal(t, 90+60+60, totalDuration)
	assert.Equal(t, 100+250+0, totalCost)
}

func TestSchedulerBuild_DefaultsWhenHintsMissing(t *testing.T) {
	s := NewScheduler("", 0, 0)
	items := []PlanItem{
		{Attraction: types.Attraction{ID: "x1", Name: "X", PriceTier: types.PriceHigh}},
		{Attraction: types.Attraction{ID: "x2", Name: "Y", PriceTier: types.PriceFree}},
	}

	visits, totalDuration, totalCost := s.Build(items, nil)

	require.Len(t, visits, 2)
	assert.Equal(t, "09:00", visits[0].StartTime)
	assert.Equal(t, 120, visits[0].DurationMinutes)
	assert.Equal(t, 90, visits[1].TravelMinutesFromPrev)
	assert.Equal(t, "12:30", visits[1].StartTime)
	assert.Equal(t, 240, totalDuration)
	assert.Equal(t, 500, totalCost)
}

func TestSchedulerBuild_IgnoresInvalidSuggestedTime(t *testing.T) {
	s := NewScheduler("10:00", 90, 120)
	items := []PlanItem{
		{Attraction: types.Attraction{ID: "x1", Name: "X"}, SuggestedTime: "25:99"},
	}

	visits, _, _ := s.Build(items, nil)

	require.Len(t, visits, 1)
	assert.Equal(t, "10:00", visits[0].StartTime)
}

func TestSchedulerBuild_RunsPastMidnightWithoutWrapping(t *testing.T) {
	s := NewScheduler("09:00", 90, 120)
	items := []PlanItem{
		{Attraction: types.Attraction{ID: "x1", Name: "X"}, SuggestedTime: "22:00", DurationMinutes: 120},
		{Attraction: types.Attraction{ID: "x2", Name: "Y"}, DurationMinutes: 60},
	}

	visits, _, _ := s.Build(items, nil)

	require.Len(t, visits, 2)
	assert.Equal(t, "24:00", visits[0].EndTime)
	assert.Equal(t, "25:30", visits[1].StartTime)
}

func TestSchedulerBuild_Empty(t *testing.T) {
	s := NewScheduler("09:00", 90, 120)

	visits, totalDuration, totalCost := s.Build(nil, nil)

	assert.Empty(t, visits)
	assert.Zero(t, totalDuration)
	assert.Zero(t, totalCost)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{"09:00", 540, true},
		{"9:05", 545, true},
		{"23:59", 1439, true},
		{"00:00", 0, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseClock(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.minutes, got, tt.in)
		}
	}
}

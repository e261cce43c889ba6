package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itinera-ai/itinera/internal/types"
)

func filterCatalog() []types.Attraction {
	return []types.Attraction{
		{ID: "c1", Name: "History Museum", Category: types.CategoryMuseum, WheelchairAccessible: true},
		{ID: "c2", Name: "Botanical Garden", Category: types.CategoryNature},
		{ID: "c3", Name: "Old Citadel", Category: types.CategoryHistorical},
		{ID: "c4", Name: "Night Market", Category: types.CategoryFood},
		{ID: "c5", Name: "Silk Street", Category: types.CategoryShopping, WheelchairAccessible: true},
		{ID: "c6", Name: "City Park", Category: types.CategoryNature},
	}
}

func TestClassifyBias(t *testing.T) {
	tests := []struct {
		name string
		snap types.ContextSnapshot
		want types.ContextBias
	}{
		{"neutral", types.NeutralSnapshot(), types.BiasNone},
		{
			"storm condition",
			types.ContextSnapshot{Weather: types.WeatherInfo{Condition: "Thunderstorms expected", TemperatureC: 24}},
			types.BiasIndoor,
		},
		{
			"high severity alert",
			types.ContextSnapshot{
				Weather: types.WeatherInfo{Condition: "clear", TemperatureC: 24, AirQualityScore: 80},
				Alerts:  []types.Alert{{Event: "flood warning", Severity: types.SeverityHigh}},
			},
			types.BiasIndoor,
		},
		{
			"advisory alert stays outdoor",
			types.ContextSnapshot{
				Weather: types.WeatherInfo{Condition: "clear", TemperatureC: 24, AirQualityScore: 80},
				Alerts:  []types.Alert{{Event: "pollen advisory", Severity: types.SeverityAdvisory}},
			},
			types.BiasNone,
		},
		{
			"heat",
			types.ContextSnapshot{Weather: types.WeatherInfo{Condition: "sunny", TemperatureC: 38, AirQualityScore: 80}},
			types.BiasMixed,
		},
		{
			"uv",
			types.ContextSnapshot{Weather: types.WeatherInfo{Condition: "sunny", TemperatureC: 28, UVIndex: 9, AirQualityScore: 80}},
			types.BiasMixed,
		},
		{
			"poor air quality",
			types.ContextSnapshot{Weather: types.WeatherInfo{Condition: "hazy", TemperatureC: 24, AirQualityScore: 30}},
			types.BiasIndoor,
		},
		{
			"missing air quality reading is not poor",
			types.ContextSnapshot{Weather: types.WeatherInfo{Condition: "clear", TemperatureC: 24}},
			types.BiasNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBias(tt.snap))
		})
	}
}

func TestFilterCandidates_IndoorBiasExcludesOutdoor(t *testing.T) {
	snap := types.ContextSnapshot{Weather: types.WeatherInfo{Condition: "heavy rain", TemperatureC: 20}}
	intent := DeriveIntent("show me around")

	got, bias := FilterCandidates(filterCatalog(), snap, &intent, 20)

	assert.Equal(t, types.BiasIndoor, bias)
	require.NotEmpty(t, got)
	for _, a := range got {
		assert.True(t, a.Category.IndoorCompatible(), "%s should be indoor-compatible", a.ID)
	}
}

func TestFilterCandidates_BlendsCulturalAndFood(t *testing.T) {
	intent := DeriveIntent("I want cultural sites and good street food")

	got, bias := FilterCandidates(filterCatalog(), types.NeutralSnapshot(), &intent, 20)

	assert.Equal(t, types.BiasNone, bias)
	require.Len(t, got, 6)
	// Two cultural-type entries first, then the food match, then the rest.
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c3", got[1].ID)
	assert.Equal(t, "c4", got[2].ID)
}

func TestFilterCandidates_PrefersRequestedCategories(t *testing.T) {
	intent := DeriveIntent("a relaxing day in nature and parks")

	got, _ := FilterCandidates(filterCatalog(), types.NeutralSnapshot(), &intent, 20)

	require.Len(t, got, 6)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "c6", got[1].ID)
}

func TestFilterCandidates_AccessibleFirst(t *testing.T) {
	intent := DeriveIntent("somewhere wheelchair accessible please")

	got, _ := FilterCandidates(filterCatalog(), types.NeutralSnapshot(), &intent, 20)

	require.Len(t, got, 6)
	assert.True(t, got[0].WheelchairAccessible)
	assert.True(t, got[1].WheelchairAccessible)
}

func TestFilterCandidates_AppliesCap(t *testing.T) {
	got, _ := FilterCandidates(filterCatalog(), types.NeutralSnapshot(), nil, 3)

	assert.Len(t, got, 3)
}

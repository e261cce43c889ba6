package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itinera-ai/itinera/internal/types"
)

func TestDeriveIntent(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		categories []types.AttractionCategory
		budget     int
		groupSize  int
		accessible bool
		transport  string
	}{
		{
			name:       "cultural with budget",
			text:       "Cultural sites with lunch, budget 500",
			categories: []types.AttractionCategory{types.CategoryCultural, types.CategoryFood},
			budget:     500,
		},
		{
			name:       "budget phrased as under",
			text:       "a cheap day under 200 please",
			categories: nil,
			budget:     200,
		},
		{
			name:       "group size and transport",
			text:       "4 people visiting museums, travelling by metro",
			categories: []types.AttractionCategory{types.CategoryCultural},
			groupSize:  4,
			transport:  "transit",
		},
		{
			name:       "accessibility",
			text:       "wheelchair accessible parks on foot",
			categories: []types.AttractionCategory{types.CategoryNature},
			accessible: true,
			transport:  "walking",
		},
		{
			name: "no derivable signals",
			text: "surprise me",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := DeriveIntent(tt.text)

			assert.Equal(t, tt.text, intent.RawText)
			assert.Equal(t, tt.categories, intent.PreferredCategories)
			assert.Equal(t, tt.budget, intent.BudgetCeiling)
			assert.Equal(t, tt.groupSize, intent.GroupSize)
			assert.Equal(t, tt.accessible, intent.NeedsAccessible)
			assert.Equal(t, tt.transport, intent.TransportMode)
		})
	}
}

func TestWantsCulturalAndFood(t *testing.T) {
	assert.True(t, wantsCulturalAndFood("Cultural sites with lunch, budget 500"))
	assert.True(t, wantsCulturalAndFood("temples in the morning, street food at night"))
	assert.False(t, wantsCulturalAndFood("just museums today"))
	assert.False(t, wantsCulturalAndFood("only restaurants"))
	assert.False(t, wantsCulturalAndFood(""))
}

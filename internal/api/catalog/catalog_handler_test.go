package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itinera-ai/itinera/internal/types"
)

func handlerRepo() *MemoryRepository {
	return NewMemoryRepositoryWith([]types.Attraction{
		{ID: "h1", Name: "History Museum", Category: types.CategoryMuseum},
		{ID: "h2", Name: "City Park", Category: types.CategoryNature},
	})
}

func TestListAttractions(t *testing.T) {
	h := NewHandler(handlerRepo(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attractions", nil)
	rr := httptest.NewRecorder()
	h.ListAttractions(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var payload struct {
		Success     bool               `json:"success"`
		Attractions []types.Attraction `json:"attractions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Len(t, payload.Attractions, 2)
}

func TestListAttractions_FilterByCategory(t *testing.T) {
	h := NewHandler(handlerRepo(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attractions?category=nature", nil)
	rr := httptest.NewRecorder()
	h.ListAttractions(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var payload struct {
		Attractions []types.Attraction `json:"attractions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Len(t, payload.Attractions, 1)
	assert.Equal(t, "h2", payload.Attractions[0].ID)
}

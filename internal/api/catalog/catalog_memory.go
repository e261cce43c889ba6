package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/itinera-ai/itinera/internal/types"
)

//go:embed seed.json
var seedData []byte

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository serves the catalog from an embedded seed file. Used in
// development and as the default when no database is configured.
type MemoryRepository struct {
	attractions []types.Attraction
	byID        map[string]types.Attraction
}

// NewMemoryRepository loads the embedded seed catalog.
func NewMemoryRepository(logger *slog.Logger) (*MemoryRepository, error) {
	var attractions []types.Attraction
	if err := json.Unmarshal(seedData, &attractions); err != nil {
		return nil, fmt.Errorf("failed to parse embedded seed catalog: %w", err)
	}
	repo := NewMemoryRepositoryWith(attractions)
	logger.Info("Loaded embedded attraction catalog", slog.Int("count", len(attractions)))
	return repo, nil
}

// NewMemoryRepositoryWith builds a repository over the given attractions.
func NewMemoryRepositoryWith(attractions []types.Attraction) *MemoryRepository {
	byID := make(map[string]types.Attraction, len(attractions))
	for _, a := range attractions {
		byID[a.ID] = a
	}
	return &MemoryRepository{attractions: attractions, byID: byID}
}

func (r *MemoryRepository) GetAttractions(_ context.Context) ([]types.Attraction, error) {
	out := make([]types.Attraction, len(r.attractions))
	copy(out, r.attractions)
	return out, nil
}

func (r *MemoryRepository) GetAttractionByID(_ context.Context, id string) (*types.Attraction, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAttractionNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) GetAttractionsByCategory(_ context.Context, category types.AttractionCategory) ([]types.Attraction, error) {
	var out []types.Attraction
	for _, a := range r.attractions {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/itinera-ai/itinera/internal/types"
)

// ErrAttractionNotFound is returned when an id has no catalog row.
var ErrAttractionNotFound = errors.New("attraction not found")

// Repository provides read-only access to the attraction catalog. The catalog
// is reference data; nothing in the pipeline writes to it at request time.
type Repository interface {
	GetAttractions(ctx context.Context) ([]types.Attraction, error)
	GetAttractionByID(ctx context.Context, id string) (*types.Attraction, error)
	GetAttractionsByCategory(ctx context.Context, category types.AttractionCategory) ([]types.Attraction, error)
}

// PGXPool is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository reads the catalog from the attractions table.
type PostgresRepository struct {
	logger *slog.Logger
	pool   PGXPool
}

func NewPostgresRepository(pool PGXPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{logger: logger, pool: pool}
}

const attractionColumns = `id, name, description, category, latitude, longitude,
	price_tier, visit_duration_minutes, wheelchair_accessible, family_friendly`

func (r *PostgresRepository) GetAttractions(ctx context.Context) ([]types.Attraction, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetAttractions")
	defer span.End()

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM attractions ORDER BY name`, attractionColumns))
	if err != nil {
		span.RecordError(err)
		r.logger.ErrorContext(ctx, "Failed to query attractions", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query attractions: %w", err)
	}
	defer rows.Close()

	attractions, err := scanAttractions(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("attractions.count", len(attractions)))
	span.SetStatus(codes.Ok, "Attractions retrieved")
	return attractions, nil
}

func (r *PostgresRepository) GetAttractionByID(ctx context.Context, id string) (*types.Attraction, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetAttractionByID", trace.WithAttributes(
		attribute.String("attraction.id", id),
	))
	defer span.End()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM attractions WHERE id = $1`, attractionColumns), id)

	var a types.Attraction
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Category,
		&a.Location.Latitude, &a.Location.Longitude, &a.PriceTier,
		&a.VisitDurationMinutes, &a.WheelchairAccessible, &a.FamilyFriendly)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAttractionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to scan attraction: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) GetAttractionsByCategory(ctx context.Context, category types.AttractionCategory) ([]types.Attraction, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetAttractionsByCategory", trace.WithAttributes(
		attribute.String("attraction.category", string(category)),
	))
	defer span.End()

	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM attractions WHERE category = $1 ORDER BY name`, attractionColumns),
		string(category))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query attractions by category: %w", err)
	}
	defer rows.Close()

	return scanAttractions(rows)
}

func scanAttractions(rows pgx.Rows) ([]types.Attraction, error) {
	var attractions []types.Attraction
	for rows.Next() {
		var a types.Attraction
		err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Category,
			&a.Location.Latitude, &a.Location.Longitude, &a.PriceTier,
			&a.VisitDurationMinutes, &a.WheelchairAccessible, &a.FamilyFriendly)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attraction row: %w", err)
		}
		attractions = append(attractions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("attraction rows iteration failed: %w", err)
	}
	return attractions, nil
}

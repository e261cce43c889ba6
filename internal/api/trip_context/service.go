package tripcontext

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/itinera-ai/itinera/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service assembles the per-request context snapshot. Pure data fetch; either
// external call may fail independently and partial context is still valid.
type Service interface {
	Snapshot(ctx context.Context, attractions []types.Attraction) types.ContextSnapshot
}

type ServiceImpl struct {
	logger  *slog.Logger
	weather WeatherClient
	matrix  MatrixClient
	cache   *cache.Cache
}

func NewServiceImpl(weather WeatherClient, matrix MatrixClient, snapshotTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if snapshotTTL <= 0 {
		snapshotTTL = 5 * time.Minute
	}
	return &ServiceImpl{
		logger:  logger,
		weather: weather,
		matrix:  matrix,
		cache:   cache.New(snapshotTTL, 10*time.Minute),
	}
}

// Snapshot fetches weather/alerts and the travel-time matrix concurrently.
// Never fails: each side degrades to its neutral default on provider error.
func (s *ServiceImpl) Snapshot(ctx context.Context, attractions []types.Attraction) types.ContextSnapshot {
	ctx, span := otel.Tracer("TripContextService").Start(ctx, "Snapshot")
	defer span.End()

	cacheKey := snapshotCacheKey(attractions)
	if cached, found := s.cache.Get(cacheKey); found {
		span.SetAttributes(attribute.Bool("snapshot.cached", true))
		return cached.(types.ContextSnapshot)
	}

	snapshot := types.NeutralSnapshot()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		weather, alerts, err := s.weather.CurrentConditions(gctx)
		if err != nil {
			s.logger.WarnContext(gctx, "Weather provider failed, using neutral defaults", slog.Any("error", err))
			span.AddEvent("weather provider degraded")
			return nil
		}
		snapshot.Weather = weather
		snapshot.Alerts = alerts
		return nil
	})

	g.Go(func() error {
		points := make([]MatrixPoint, 0, len(attractions))
		for _, a := range attractions {
			points = append(points, MatrixPoint{
				ID:        a.ID,
				Latitude:  a.Location.Latitude,
				Longitude: a.Location.Longitude,
			})
		}
		matrix, err := s.matrix.TravelTimes(gctx, points)
		if err != nil {
			s.logger.WarnContext(gctx, "Matrix provider failed, travel times will use defaults", slog.Any("error", err))
			span.AddEvent("matrix provider degraded")
			return nil
		}
		snapshot.TravelTimes = matrix
		return nil
	})

	// Workers swallow provider errors, so Wait only propagates ctx cancellation.
	_ = g.Wait()

	s.cache.Set(cacheKey, snapshot, cache.DefaultExpiration)

	span.SetAttributes(
		attribute.String("weather.condition", snapshot.Weather.Condition),
		attribute.Int("alerts.count", len(snapshot.Alerts)),
		attribute.Int("matrix.origins", len(snapshot.TravelTimes)),
	)
	span.SetStatus(codes.Ok, "Context snapshot assembled")
	return snapshot
}

func snapshotCacheKey(attractions []types.Attraction) string {
	// Catalog is stable within a process; first/last id plus length is enough
	// to distinguish the candidate sets we are asked about.
	if len(attractions) == 0 {
		return "snapshot:empty"
	}
	return fmt.Sprintf("snapshot:%s:%s:%d", attractions[0].ID, attractions[len(attractions)-1].ID, len(attractions))
}

package planner

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/itinera-ai/itinera/app/observability/metrics"
	"github.com/itinera-ai/itinera/internal/api/catalog"
	generativeAI "github.com/itinera-ai/itinera/internal/api/generative_ai"
	tripcontext "github.com/itinera-ai/itinera/internal/api/trip_context"
	"github.com/itinera-ai/itinera/internal/types"
)

// ErrRequestTooShort is the only pipeline error surfaced to the caller.
// Every other failure mode recovers locally through the fallback chain.
var ErrRequestTooShort = errors.New("request text is too short")

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for itinerary synthesis.
type Service interface {
	PlanDay(ctx context.Context, req types.PlanRequest) (*types.Itinerary, error)
}

// Options carries the pipeline tuning knobs. Zero values take the documented
// defaults.
type Options struct {
	MinRequestChars   int
	CandidateCap      int
	GeneratorTimeout  time.Duration
	InflightBucket    time.Duration
	InflightTTL       time.Duration
	DefaultStartTime  string
	DefaultTravelMin  int
	DefaultVisitMin   int
	FallbackMinVisits int
}

func (o *Options) normalize() {
	if o.MinRequestChars <= 0 {
		o.MinRequestChars = 8
	}
	if o.CandidateCap <= 0 {
		o.CandidateCap = 20
	}
	if o.GeneratorTimeout <= 0 {
		o.GeneratorTimeout = 25 * time.Second
	}
	if o.InflightBucket <= 0 {
		o.InflightBucket = 30 * time.Second
	}
	if o.InflightTTL <= 0 {
		o.InflightTTL = o.GeneratorTimeout + 20*time.Second
	}
	if o.FallbackMinVisits <= 0 {
		o.FallbackMinVisits = 3
	}
}

type ServiceImpl struct {
	logger      *slog.Logger
	opts        Options
	catalogRepo catalog.Repository
	contextSvc  tripcontext.Service
	aiClient    generativeAI.Client
	inflight    *InflightStore
	repair      *RepairPipeline
	scheduler   *Scheduler
	fallback    *FallbackEngine
}

func NewServiceImpl(catalogRepo catalog.Repository, contextSvc tripcontext.Service, aiClient generativeAI.Client, opts Options, logger *slog.Logger) *ServiceImpl {
	opts.normalize()
	return &ServiceImpl{
		logger:      logger,
		opts:        opts,
		catalogRepo: catalogRepo,
		contextSvc:  contextSvc,
		aiClient:    aiClient,
		inflight:    NewInflightStore(opts.InflightTTL),
		repair:      NewRepairPipeline(logger),
		scheduler:   NewScheduler(opts.DefaultStartTime, opts.DefaultTravelMin, opts.DefaultVisitMin),
		fallback:    NewFallbackEngine(opts.FallbackMinVisits, logger),
	}
}

// PlanDay runs the whole pipeline: context, filter, generator, repair,
// schedule, normalize. It returns an itinerary for every valid request; the
// provenance tag records which tier produced the content.
func (s *ServiceImpl) PlanDay(ctx context.Context, req types.PlanRequest) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "PlanDay")
	defer span.End()

	start := time.Now()
	m := metrics.Get()
	defer func() {
		m.PlanRequestsTotal.Add(ctx, 1)
		m.PlanDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	requestText := strings.TrimSpace(req.RequestText)
	if len(requestText) < s.opts.MinRequestChars {
		return nil, ErrRequestTooShort
	}

	fullCatalog := req.Catalog
	if len(fullCatalog) == 0 {
		var err error
		fullCatalog, err = s.catalogRepo.GetAttractions(ctx)
		if err != nil {
			span.RecordError(err)
			s.logger.ErrorContext(ctx, "Failed to load attraction catalog", slog.Any("error", err))
			return nil, err
		}
	}

	snap := types.NeutralSnapshot()
	if req.Context != nil {
		snap = *req.Context
	} else if s.contextSvc != nil {
		snap = s.contextSvc.Snapshot(ctx, fullCatalog)
	}

	intent := DeriveIntent(requestText)
	candidates := s.candidatesFor(fullCatalog, snap, &intent)

	items, provenance := s.selectAttractions(ctx, requestText, intent, candidates, snap)

	visits, totalDuration, totalCost := s.scheduler.Build(items, snap.TravelTimes)
	itinerary := normalizeItinerary(requestText, visits, totalDuration, totalCost, provenance)

	span.SetAttributes(
		attribute.String("itinerary.provenance", string(provenance)),
		attribute.Int("itinerary.visits", len(visits)),
	)
	span.SetStatus(codes.Ok, "Itinerary synthesized")
	return itinerary, nil
}

// candidatesFor filters the catalog, relaxing the weather bias and then the
// category preference when filtering would otherwise leave nothing.
func (s *ServiceImpl) candidatesFor(fullCatalog []types.Attraction, snap types.ContextSnapshot, intent *types.UserIntent) []types.Attraction {
	candidates, bias := FilterCandidates(fullCatalog, snap, intent, s.opts.CandidateCap)
	if len(candidates) > 0 {
		s.logger.Debug("Filtered candidate subset",
			slog.Int("count", len(candidates)),
			slog.String("bias", string(bias)),
		)
		return candidates
	}

	// Relax the weather bias first.
	candidates, _ = FilterCandidates(fullCatalog, types.NeutralSnapshot(), intent, s.opts.CandidateCap)
	if len(candidates) > 0 {
		s.logger.Warn("Weather bias excluded every candidate, relaxed to neutral context")
		return candidates
	}

	// Then drop category preference entirely: first N in catalog order.
	candidates, _ = FilterCandidates(fullCatalog, types.NeutralSnapshot(), nil, s.opts.CandidateCap)
	return candidates
}

// selectAttractions tries the generator path and falls back to the rule
// engine on unavailability, dedup short-circuit or repair exhaustion.
func (s *ServiceImpl) selectAttractions(ctx context.Context, requestText string, intent types.UserIntent, candidates []types.Attraction, snap types.ContextSnapshot) ([]PlanItem, types.Provenance) {
	m := metrics.Get()

	fingerprint := Fingerprint(requestText, time.Now(), s.opts.InflightBucket)
	if !s.inflight.TryAcquire(fingerprint) {
		s.logger.InfoContext(ctx, "Identical request already in flight, using rule-based fallback",
			slog.String("fingerprint", fingerprint))
		m.InflightShortCircuitTotal.Add(ctx, 1)
		m.FallbackTotal.Add(ctx, 1)
		return s.fallback.Select(intent, candidates, snap), types.ProvenanceRuleBased
	}

	prompt := buildPlanPrompt(requestText, candidates, snap)

	genCtx, cancel := context.WithTimeout(ctx, s.opts.GeneratorTimeout)
	genStart := time.Now()
	raw, err := s.aiClient.GenerateCompletion(genCtx, prompt)
	cancel()
	// The fingerprint marker is held only for the duration of the generator
	// call, and is released even when the caller has disconnected.
	s.inflight.Release(fingerprint)
	m.GeneratorDurationSeconds.Record(ctx, time.Since(genStart).Seconds())

	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			s.logger.WarnContext(ctx, "Generator unavailable, using rule-based fallback", slog.Any("error", err))
		} else {
			s.logger.WarnContext(ctx, "Generator returned empty text, using rule-based fallback")
		}
		m.GeneratorErrorsTotal.Add(ctx, 1)
		m.FallbackTotal.Add(ctx, 1)
		return s.fallback.Select(intent, candidates, snap), types.ProvenanceRuleBased
	}

	result := s.repair.Run(raw, candidates)
	if result.Status == repairOK {
		m.RepairTierTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", result.Tier)))
		items := resolvePlanItems(result.Plan, candidates)
		if len(items) > 0 {
			return items, result.Provenance
		}
		s.logger.WarnContext(ctx, "Generator selection resolved to no catalog attractions, using rule-based fallback")
	} else {
		s.logger.WarnContext(ctx, "Every repair tier failed, using rule-based fallback")
		m.RepairTierTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", "exhausted")))
	}

	m.FallbackTotal.Add(ctx, 1)
	return s.fallback.Select(intent, candidates, snap), types.ProvenanceRuleBased
}

// resolvePlanItems maps generator items onto catalog attractions, dropping
// anything the candidate catalog does not contain.
func resolvePlanItems(plan *generatorPlan, candidates []types.Attraction) []PlanItem {
	byID := make(map[string]types.Attraction, len(candidates))
	byName := make(map[string]types.Attraction, len(candidates))
	for _, a := range candidates {
		byID[a.ID] = a
		byName[strings.ToLower(a.Name)] = a
	}

	selected := make([]generatorItem, len(plan.SelectedAttractions))
	copy(selected, plan.SelectedAttractions)
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].VisitOrder < selected[j].VisitOrder
	})

	seen := make(map[string]bool, len(selected))
	var items []PlanItem
	for _, item := range selected {
		attraction, ok := byID[item.AttractionID]
		if !ok {
			attraction, ok = byName[strings.ToLower(item.Name)]
		}
		if !ok || seen[attraction.ID] {
			continue
		}
		seen[attraction.ID] = true
		items = append(items, PlanItem{
			Attraction:      attraction,
			SuggestedTime:   item.SuggestedTime,
			DurationMinutes: item.Duration,
			Rationale:       item.Reason,
		})
	}
	return items
}

package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the pipeline's metric instruments.
type AppMetrics struct {
	PlanRequestsTotal         metric.Int64Counter
	PlanDurationSeconds       metric.Float64Histogram
	GeneratorDurationSeconds  metric.Float64Histogram
	GeneratorErrorsTotal      metric.Int64Counter
	RepairTierTotal           metric.Int64Counter
	FallbackTotal             metric.Int64Counter
	InflightShortCircuitTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global instruments once, using the globally
// configured meter provider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("itinera")
		var err error
		m := &AppMetrics{}

		m.PlanRequestsTotal, err = meter.Int64Counter(
			"plan_requests_total",
			metric.WithDescription("Total number of itinerary plan requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create plan_requests_total: %v", err)
		}

		m.PlanDurationSeconds, err = meter.Float64Histogram(
			"plan_duration_seconds",
			metric.WithDescription("End-to-end duration of plan requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create plan_duration_seconds: %v", err)
		}

		m.GeneratorDurationSeconds, err = meter.Float64Histogram(
			"generator_duration_seconds",
			metric.WithDescription("Duration of generator calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create generator_duration_seconds: %v", err)
		}

		m.GeneratorErrorsTotal, err = meter.Int64Counter(
			"generator_errors_total",
			metric.WithDescription("Total number of generator call failures"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create generator_errors_total: %v", err)
		}

		m.RepairTierTotal, err = meter.Int64Counter(
			"repair_tier_total",
			metric.WithDescription("Count of repair pipeline outcomes by tier"),
			metric.WithUnit("{outcome}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create repair_tier_total: %v", err)
		}

		m.FallbackTotal, err = meter.Int64Counter(
			"fallback_total",
			metric.WithDescription("Total number of rule-based fallback selections"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create fallback_total: %v", err)
		}

		m.InflightShortCircuitTotal, err = meter.Int64Counter(
			"inflight_short_circuit_total",
			metric.WithDescription("Requests short-circuited by the in-flight fingerprint check"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create inflight_short_circuit_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance. Panics if
// InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

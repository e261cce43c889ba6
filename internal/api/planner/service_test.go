package planner

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itinera-ai/itinera/app/observability/metrics"
	"github.com/itinera-ai/itinera/internal/api/catalog"
	generativeAI "github.com/itinera-ai/itinera/internal/api/generative_ai"
	"github.com/itinera-ai/itinera/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

// MockGenerator is a mock implementation of the generativeAI.Client interface.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// blockingGenerator holds the generator call open until released, so tests
// can observe the in-flight deduplication window deterministically.
type blockingGenerator struct {
	entered chan struct{}
	release chan struct{}
	out     string
}

func (g *blockingGenerator) GenerateCompletion(ctx context.Context, _ string) (string, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return g.out, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newTestService(gen generativeAI.Client, catalogAttractions []types.Attraction, opts Options) *ServiceImpl {
	repo := catalog.NewMemoryRepositoryWith(catalogAttractions)
	return NewServiceImpl(repo, nil, gen, opts, testLogger())
}

func serviceCatalog() []types.Attraction {
	return []types.Attraction{
		{ID: "a1", Name: "Temple of Literature", Category: types.CategoryCultural, PriceTier: types.PriceLow, VisitDurationMinutes: 90},
		{ID: "a2", Name: "Dong Xuan Market", Category: types.CategoryFood, PriceTier: types.PriceMedium, VisitDurationMinutes: 60},
		{ID: "a3", Name: "Hoan Kiem Lake", Category: types.CategoryNature, PriceTier: types.PriceFree, VisitDurationMinutes: 60},
		{ID: "a4", Name: "Fine Arts Museum", Category: types.CategoryMuseum, PriceTier: types.PriceLow, VisitDurationMinutes: 120},
	}
}

func TestPlanDay_RejectsShortRequest(t *testing.T) {
	gen := new(MockGenerator)
	svc := newTestService(gen, serviceCatalog(), Options{})

	_, err := svc.PlanDay(context.Background(), types.PlanRequest{RequestText: "  hi  "})

	assert.ErrorIs(t, err, ErrRequestTooShort)
	gen.AssertNotCalled(t, "GenerateCompletion", mock.Anything, mock.Anything)
}

func TestPlanDay_GeneratorPath(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateCompletion", mock.Anything, mock.Anything).Return(
		`{"itineraryName":"Hanoi Day","selectedAttractions":[`+
			`{"attractionId":"a4","name":"Fine Arts Museum","visitOrder":1,"suggestedTime":"13:00","duration":90,"reason":"afternoon art"},`+
			`{"attractionId":"a1","name":"Temple of Literature","visitOrder":0,"suggestedTime":"09:00","duration":90,"reason":"start early"},`+
			`{"attractionId":"no-such-place","name":"Imaginary Garden","visitOrder":2,"duration":60}`+
			`],"totalDuration":1,"totalCost":99999}`, nil)
	svc := newTestService(gen, serviceCatalog(), Options{})

	itinerary, err := svc.PlanDay(context.Background(), types.PlanRequest{RequestText: "a cultural morning with some art"})

	require.NoError(t, err)
	assert.Equal(t, types.ProvenanceGenerator, itinerary.Provenance)
	require.Len(t, itinerary.Visits, 2)
	// Sorted by the generator's visitOrder; fabricated entry dropped.
	assert.Equal(t, "a1", itinerary.Visits[0].Attraction.ID)
	assert.Equal(t, "a4", itinerary.Visits[1].Attraction.ID)
	assert.Equal(t, 0, itinerary.Visits[0].VisitOrder)
	assert.Equal(t, 1, itinerary.Visits[1].VisitOrder)
	// Aggregates are recomputed, never copied from generator output.
	assert.Equal(t, 180, itinerary.TotalDurationMinutes)
	assert.Equal(t, 200, itinerary.TotalCost)
	assert.NotEmpty(t, itinerary.Title)
	assert.NotEmpty(t, itinerary.Date)
}

func TestPlanDay_RepairedOutputTagged(t *testing.T) {
	gen := new(MockGenerator)
	// Truncated mid item: tier-2 reconstruction recovers the first entry.
	gen.On("GenerateCompletion", mock.Anything, mock.Anything).Return(
		`{"selectedAttractions":[{"attractionId":"a1","name":"Temple of Literature","visitOrder":0,"suggestedTime":"09:00","duration":90},{"attractionId":"a2","na`, nil)
	svc := newTestService(gen, serviceCatalog(), Options{})

	itinerary, err := svc.PlanDay(context.Background(), types.PlanRequest{RequestText: "plan my day in the old quarter"})

	require.NoError(t, err)
	assert.Equal(t, types.ProvenanceRepaired, itinerary.Provenance)
	require.Len(t, itinerary.Visits, 1)
	assert.Equal(t, "a1", itinerary.Visits[0].Attraction.ID)
	assert.Equal(t, "09:00", itinerary.Visits[0].StartTime)
}

func TestPlanDay_GeneratorErrorFallsBack(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateCompletion", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)
	svc := newTestService(gen, serviceCatalog(), Options{FallbackMinVisits: 3})

	itinerary, err := svc.PlanDay(context.Background(), types.PlanRequest{RequestText: "plan my day in the old quarter"})

	require.NoError(t, err)
	assert.Equal(t, types.ProvenanceRuleBased, itinerary.Provenance)
	assert.GreaterOrEqual(t, len(itinerary.Visits), 3)
}

func TestPlanDay_EmptyGeneratorOutputFallsBack(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateCompletion", mock.Anything, mock.Anything).Return("   \n", nil)
	svc := newTestService(gen, serviceCatalog(), Options{})

	itinerary, err := svc.PlanDay(context.Background(), types.PlanRequest{RequestText: "plan my day in the old quarter"})

	require.NoError(t, err)
	assert.Equal(t, types.ProvenanceRuleBased, itinerary.Provenance)
	assert.NotEmpty(t, itinerary.Visits)
}

func TestPlanDay_UnrepairableOutputFallsBack(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateCompletion", mock.Anything, mock.Anything).Return("I cannot answer that.", nil)
	svc := newTestService(gen, serviceCatalog(), Options{})

	itinerary, err := svc.PlanDay(context.Background(), types.PlanRequest{RequestText: "plan my day downtown tomorrow"})

	require.NoError(t, err)
	assert.Equal(t, types.ProvenanceRuleBased, itinerary.Provenance)
	assert.NotEmpty(t, itinerary.Visits)
}

func TestPlanDay_CombinedIntentFallbackScenario(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateCompletion", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)
	smallCatalog := []types.Attraction{
		{ID: "a1", Name: "Temple of Literature", Category: types.CategoryCultural, PriceTier: types.PriceLow, VisitDurationMinutes: 90},
		{ID: "a2", Name: "Hoan Kiem Lake", Category: types.CategoryNature, PriceTier: types.PriceFree, VisitDurationMinutes: 60},
		{ID: "a3", Name: "Dong Xuan Market", Category: types.CategoryFood, PriceTier: types.PriceMedium, VisitDurationMinutes: 60},
	}
	svc := newTestService(gen, smallCatalog, Options{})

	itinerary, err := svc.PlanDay(context.Background(), types.PlanRequest{RequestText: "Cultural sites with lunch, budget 500"})

	require.NoError(t, err)
	assert.Equal(t, types.ProvenanceRuleBased, itinerary.Provenance)
	require.Len(t, itinerary.Visits, 2)
	assert.Equal(t, "a1", itinerary.Visits[0].Attraction.ID)
	assert.Equal(t, "a3", itinerary.Visits[1].Attraction.ID)
	assert.LessOrEqual(t, itinerary.TotalCost, 500)
}

func TestPlanDay_IndoorBiasFromSuppliedContext(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateCompletion", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)
	svc := newTestService(gen, serviceCatalog(), Options{})

	snap := types.ContextSnapshot{Weather: types.WeatherInfo{Condition: "heavy rain", TemperatureC: 20}}
	itinerary, err := svc.PlanDay(context.Background(), types.PlanRequest{
		RequestText: "show me the best of the city",
		Context:     &snap,
	})

	require.NoError(t, err)
	require.NotEmpty(t, itinerary.Visits)
	for _, v := range itinerary.Visits {
		assert.True(t, v.Attraction.Category.IndoorCompatible(), "%s should be indoor-compatible", v.Attraction.ID)
	}
}

func TestPlanDay_TravelTimesFromSuppliedContext(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateCompletion", mock.Anything, mock.Anything).Return(
		`{"selectedAttractions":[`+
			`{"attractionId":"a1","visitOrder":0,"suggestedTime":"09:00","duration":60},`+
			`{"attractionId":"a2","visitOrder":1,"duration":60}]}`, nil)
	svc := newTestService(gen, serviceCatalog(), Options{})

	snap := types.NeutralSnapshot()
	snap.TravelTimes = types.TravelTimeMatrix{"a1": {"a2": 20}}
	itinerary, err := svc.PlanDay(context.Background(), types.PlanRequest{
		RequestText: "a short morning with two stops",
		Context:     &snap,
	})

	require.NoError(t, err)
	require.Len(t, itinerary.Visits, 2)
	assert.Equal(t, 20, itinerary.Visits[1].TravelMinutesFromPrev)
	assert.Equal(t, "10:20", itinerary.Visits[1].StartTime)
}

func TestPlanDay_DuplicateInFlightShortCircuits(t *testing.T) {
	gen := &blockingGenerator{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
		out: `{"selectedAttractions":[{"attractionId":"a1","name":"Temple of Literature","visitOrder":0,"suggestedTime":"09:00","duration":90}]}`,
	}
	// A large bucket keeps both calls in the same deduplication window.
	svc := newTestService(gen, serviceCatalog(), Options{InflightBucket: time.Hour, InflightTTL: time.Hour})

	requestText := "plan my day in the old quarter"
	var wg sync.WaitGroup
	var first *types.Itinerary
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, firstErr = svc.PlanDay(context.Background(), types.PlanRequest{RequestText: requestText})
	}()

	// Wait until the first request holds the in-flight marker.
	<-gen.entered

	second, err := svc.PlanDay(context.Background(), types.PlanRequest{RequestText: requestText})
	require.NoError(t, err)
	assert.Equal(t, types.ProvenanceRuleBased, second.Provenance)

	close(gen.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, types.ProvenanceGenerator, first.Provenance)
}

func TestFingerprint(t *testing.T) {
	at := time.Date(2026, 5, 10, 9, 0, 10, 0, time.UTC)
	bucket := 30 * time.Second

	a := Fingerprint("Cultural sites with lunch", at, bucket)
	b := Fingerprint("  cultural   SITES with lunch ", at.Add(5*time.Second), bucket)
	assert.Equal(t, a, b, "case and whitespace variants inside one bucket share a fingerprint")

	c := Fingerprint("Cultural sites with lunch", at.Add(bucket), bucket)
	assert.NotEqual(t, a, c, "a later bucket produces a different fingerprint")

	d := Fingerprint("Nature walk by the lake", at, bucket)
	assert.NotEqual(t, a, d)

	assert.Len(t, a, 16)
}

func TestInflightStore(t *testing.T) {
	s := NewInflightStore(time.Minute)

	assert.True(t, s.TryAcquire("fp-1"))
	assert.False(t, s.TryAcquire("fp-1"))
	assert.True(t, s.TryAcquire("fp-2"))

	s.Release("fp-1")
	assert.True(t, s.TryAcquire("fp-1"))
}

func TestResolvePlanItems_DedupesAndSorts(t *testing.T) {
	plan := &generatorPlan{SelectedAttractions: []generatorItem{
		{AttractionID: "a2", VisitOrder: 1, Duration: 60},
		{Name: "temple of literature", VisitOrder: 0, Duration: 90},
		{AttractionID: "a1", VisitOrder: 2},
		{AttractionID: "ghost", VisitOrder: 3},
	}}

	items := resolvePlanItems(plan, serviceCatalog())

	require.Len(t, items, 2)
	assert.Equal(t, "a1", items[0].Attraction.ID)
	assert.Equal(t, 90, items[0].DurationMinutes)
	assert.Equal(t, "a2", items[1].Attraction.ID)
}

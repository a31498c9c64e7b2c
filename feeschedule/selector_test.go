package feeschedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/engine/store"
	"github.com/bph/rate-engine/feeschedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func candidate(id int64, regionID *int64, rate string, schedDate, rateDate time.Time) feeschedule.Candidate {
	return feeschedule.Candidate{
		Rate: feeschedule.Rate{
			ID:            id,
			ProcedureCode: "99213",
			RegionID:      regionID,
			Rate:          money(rate),
			RateUnit:      "1",
			EffectiveDate: rateDate,
		},
		ScheduleType:          "physician",
		ScheduleEffectiveDate: schedDate,
		StateCode:             "NY",
	}
}

func int64Ptr(v int64) *int64 { return &v }

func newSelector(m *store.Memory) *feeschedule.Selector {
	return feeschedule.NewSelector(m, zerolog.Nop())
}

// =============================================================================
// PRECEDENCE TESTS
// =============================================================================

func TestResolve_StatewideLookup_NewestScheduleWins(t *testing.T) {
	// GIVEN: The same procedure priced in a 2024 and a 2025 schedule
	// WHEN: Resolving without a region
	// THEN: The 2025 schedule's rate wins

	m := store.NewMemory()
	m.AddRate(candidate(1, nil, "88.00", day(2024, time.April, 1), day(2024, time.April, 1)))
	m.AddRate(candidate(2, nil, "92.10", day(2025, time.April, 1), day(2025, time.April, 1)))

	view, err := newSelector(m).Resolve(context.Background(), "NY", "99213", "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.ID)
	assert.True(t, view.Rate.Equal(money("92.10")))
}

func TestResolve_RegionBeatsStatewide_RegardlessOfDates(t *testing.T) {
	// GIVEN: A regional rate from an OLDER schedule and a statewide rate
	//        from a NEWER one
	// WHEN: Resolving with that region
	// THEN: The regional rate still wins

	m := store.NewMemory()
	m.AddRate(candidate(1, int64Ptr(4), "104.35", day(2024, time.April, 1), day(2024, time.April, 1)))
	m.AddRate(candidate(2, nil, "92.10", day(2025, time.April, 1), day(2025, time.April, 1)))

	view, err := newSelector(m).Resolve(context.Background(), "NY", "99213", "", int64Ptr(4))
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ID)
	assert.True(t, view.Rate.Equal(money("104.35")))
}

func TestResolve_NoRegionRequested_RegionalRowsExcluded(t *testing.T) {
	// GIVEN: Only a regional rate exists
	// WHEN: Resolving without a region
	// THEN: Not found; regional rates never leak into statewide lookups

	m := store.NewMemory()
	m.AddRate(candidate(1, int64Ptr(4), "104.35", day(2025, time.April, 1), day(2025, time.April, 1)))

	_, err := newSelector(m).Resolve(context.Background(), "NY", "99213", "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrNotFound))
}

func TestResolve_RegionRequested_StatewideFallback(t *testing.T) {
	// GIVEN: No rate for the requested region, only statewide
	// WHEN: Resolving with a region
	// THEN: The statewide rate applies

	m := store.NewMemory()
	m.AddRate(candidate(1, nil, "92.10", day(2025, time.April, 1), day(2025, time.April, 1)))
	m.AddRate(candidate(2, int64Ptr(9), "77.00", day(2025, time.April, 1), day(2025, time.April, 1)))

	view, err := newSelector(m).Resolve(context.Background(), "NY", "99213", "", int64Ptr(4))
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ID)
}

func TestResolve_EqualDates_LowestIDWins(t *testing.T) {
	// Duplicate reference loads must resolve deterministically.
	m := store.NewMemory()
	m.AddRate(candidate(7, nil, "92.10", day(2025, time.April, 1), day(2025, time.April, 1)))
	m.AddRate(candidate(3, nil, "92.10", day(2025, time.April, 1), day(2025, time.April, 1)))

	view, err := newSelector(m).Resolve(context.Background(), "NY", "99213", "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.ID)
}

func TestResolve_SameSchedule_NewerRateRowWins(t *testing.T) {
	// GIVEN: A corrected rate row added later within the same schedule
	m := store.NewMemory()
	m.AddRate(candidate(1, nil, "92.10", day(2025, time.April, 1), day(2025, time.April, 1)))
	m.AddRate(candidate(2, nil, "93.00", day(2025, time.April, 1), day(2025, time.July, 1)))

	view, err := newSelector(m).Resolve(context.Background(), "NY", "99213", "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.ID)
}

func TestResolve_UnknownProcedure_NotFound(t *testing.T) {
	m := store.NewMemory()
	_, err := newSelector(m).Resolve(context.Background(), "NY", "00000", "", nil)
	require.Error(t, err)

	var nf *engine.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "rate", nf.Kind)
}

// =============================================================================
// ACCESS COUNTER
// =============================================================================

func TestResolve_IncrementsAccessCounter(t *testing.T) {
	m := store.NewMemory()
	m.AddRate(candidate(1, nil, "92.10", day(2025, time.April, 1), day(2025, time.April, 1)))

	sel := newSelector(m)
	_, err := sel.Resolve(context.Background(), "NY", "99213", "", nil)
	require.NoError(t, err)
	_, err = sel.Resolve(context.Background(), "NY", "99213", "", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), m.AccessCount(1))
}

// failingCounterStore wraps a memory store with a broken counter.
type failingCounterStore struct {
	*store.Memory
}

func (f *failingCounterStore) IncrementAccessCount(ctx context.Context, rateID int64) error {
	return &engine.StoreError{Op: "increment access count", Err: errors.New("disk full")}
}

func TestResolve_CounterFailureNotSurfaced(t *testing.T) {
	// GIVEN: The counter write always fails
	// WHEN: Resolving a rate
	// THEN: The lookup still succeeds; the failure is advisory only

	m := store.NewMemory()
	m.AddRate(candidate(1, nil, "92.10", day(2025, time.April, 1), day(2025, time.April, 1)))

	sel := feeschedule.NewSelector(&failingCounterStore{m}, zerolog.Nop())
	view, err := sel.Resolve(context.Background(), "NY", "99213", "", nil)
	require.NoError(t, err)
	assert.True(t, view.Rate.Equal(money("92.10")))
}

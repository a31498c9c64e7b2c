package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
	"github.com/bph/rate-engine/fixtures"
	"github.com/bph/rate-engine/store/postgres"
)

const (
	testPort     = 15433
	testDB       = "ratestest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

func TestMain(m *testing.M) {
	if os.Getenv("SKIP_PG_TESTS") != "" {
		fmt.Fprintln(os.Stderr, "SKIP: SKIP_PG_TESTS set")
		os.Exit(0)
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30*time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// newSeededStore connects, migrates, and loads the demo dataset into a
// clean schema.
func newSeededStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	st, err := postgres.New(ctx, testDSN)
	require.NoError(t, err)
	t.Cleanup(func() {
		wipe(t, st)
		st.Close()
	})

	require.NoError(t, fixtures.LoadDemo(ctx, st))
	return st
}

// wipe clears all tables so tests stay independent within one instance.
func wipe(t *testing.T, st *postgres.Store) {
	t.Helper()
	require.NoError(t, st.Truncate(context.Background()))
}

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// =============================================================================
// MEDICARE PATH
// =============================================================================

func TestPostgres_MedicareResolution_EndToEnd(t *testing.T) {
	st := newSeededStore(t)
	resolver := engine.NewResolver(st)

	rate, err := resolver.ResolveMedicareAllowedAmount(context.Background(), "94110", "99213", "", 2025)
	require.NoError(t, err)
	assert.Equal(t, "SAN FRANCISCO", rate.Locality.FeeScheduleArea)
	assert.True(t, rate.Rounded().Equal(money(t, "105.55")),
		"allowed %s", rate.Rounded().String())
}

func TestPostgres_AbsentRowsAreNilNil(t *testing.T) {
	st := newSeededStore(t)
	ctx := context.Background()

	row, err := st.LookupLocality(ctx, "00000")
	require.NoError(t, err)
	assert.Nil(t, row)

	cf, err := st.LookupConversionFactor(ctx, 1999)
	require.NoError(t, err)
	assert.Nil(t, cf)
}

func TestPostgres_NumericRoundTrip(t *testing.T) {
	// NUMERIC columns must come back as exact decimals, not floats.
	st := newSeededStore(t)

	rows, err := st.LookupGPCI(context.Background(), "05", 2025)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].PracticeExpense.Equal(money(t, "1.4295")),
		"pe %s", rows[0].PracticeExpense.String())
}

// =============================================================================
// FEE SCHEDULE PATH
// =============================================================================

func TestPostgres_RateSelectionWithRegion(t *testing.T) {
	st := newSeededStore(t)
	sel := feeschedule.NewSelector(st, zerolog.Nop())
	ctx := context.Background()

	// Statewide lookup ignores the Region IV row.
	view, err := sel.Resolve(ctx, "NY", "99213", "", nil)
	require.NoError(t, err)
	assert.True(t, view.Rate.Equal(money(t, "92.10")))

	// The demo region is the only row in a fresh schema.
	candidates, err := st.FindRates(ctx, feeschedule.Filter{StateCode: "NY", ProcedureCode: "99213"})
	require.NoError(t, err)
	var regionID *int64
	for _, c := range candidates {
		if c.Rate.RegionID != nil {
			regionID = c.Rate.RegionID
		}
	}
	require.NotNil(t, regionID)

	view, err = sel.Resolve(ctx, "NY", "99213", "", regionID)
	require.NoError(t, err)
	assert.True(t, view.Rate.Equal(money(t, "104.35")))
	assert.Contains(t, view.Region, "Downstate")
}

func TestPostgres_AccessCounter(t *testing.T) {
	st := newSeededStore(t)
	ctx := context.Background()

	candidates, err := st.FindRates(ctx, feeschedule.Filter{StateCode: "CA", ProcedureCode: "99213"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	rateID := candidates[0].Rate.ID

	require.NoError(t, st.IncrementAccessCount(ctx, rateID))
	require.NoError(t, st.IncrementAccessCount(ctx, rateID))

	count, err := st.GetAccessCount(ctx, rateID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPostgres_Catalog(t *testing.T) {
	st := newSeededStore(t)

	states, err := st.ListStates(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "CA", states[0].Code)

	procedures, err := st.ListProcedures(context.Background())
	require.NoError(t, err)
	assert.Len(t, procedures, 3)
}

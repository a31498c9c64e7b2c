package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bph/rate-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func rvu(t *testing.T, work, pe, mp string) engine.RVU {
	return engine.RVU{
		Work:            dec(t, work),
		PracticeExpense: dec(t, pe),
		Malpractice:     dec(t, mp),
	}
}

func gpci(t *testing.T, work, pe, mp string) engine.GPCI {
	return engine.GPCI{
		Work:            dec(t, work),
		PracticeExpense: dec(t, pe),
		Malpractice:     dec(t, mp),
	}
}

// =============================================================================
// FORMULA TESTS
// =============================================================================

func TestAllowedAmount_ExactArithmetic(t *testing.T) {
	// GIVEN: An established-patient visit in San Francisco, 2025 factor
	// WHEN: Computing the allowed amount
	// THEN: The result is exact to full precision - no float drift

	got := engine.AllowedAmount(
		rvu(t, "1.30", "1.24", "0.10"),
		gpci(t, "1.0966", "1.4295", "0.6472"),
		dec(t, "32.35"),
	)

	// (1.30*1.0966 + 1.24*1.4295 + 0.10*0.6472) * 32.35
	assert.True(t, got.Equal(dec(t, "105.554168")),
		"got %s", got.String())
}

func TestAllowedAmount_NeutralIndexesReduceToRVUTimesFactor(t *testing.T) {
	// GIVEN: GPCI of exactly 1.0 in all three components
	// WHEN: Computing the allowed amount
	// THEN: allowed = (work + pe + mp) * factor

	got := engine.AllowedAmount(
		rvu(t, "1.92", "1.71", "0.14"),
		gpci(t, "1.0", "1.0", "1.0"),
		dec(t, "32.35"),
	)

	assert.True(t, got.Equal(dec(t, "121.9595")), "got %s", got.String())
}

func TestAllowedAmount_ZeroComponentsContributeNothing(t *testing.T) {
	// GIVEN: A technical-component row with zero work RVU
	// WHEN: Computing the allowed amount
	// THEN: The zero component drops out instead of failing

	got := engine.AllowedAmount(
		rvu(t, "0", "4.52", "0.27"),
		gpci(t, "1.0966", "1.4295", "0.6472"),
		dec(t, "32.35"),
	)

	// (0 + 4.52*1.4295 + 0.27*0.6472) * 32.35
	assert.True(t, got.Equal(dec(t, "214.6773174")), "got %s", got.String())
}

func TestAllowedAmount_AllZero(t *testing.T) {
	got := engine.AllowedAmount(engine.RVU{}, engine.GPCI{}, dec(t, "32.35"))
	assert.True(t, got.IsZero())
}

// =============================================================================
// ROUNDING TESTS
// =============================================================================

func TestRound2_HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"105.554168", "105.55"},
		{"2.005", "2.01"},
		{"2.004", "2.00"},
		{"2.995", "3.00"},
		{"54.40", "54.40"},
		{"0", "0"},
	}
	for _, tc := range cases {
		got := engine.Round2(dec(t, tc.in))
		assert.True(t, got.Equal(dec(t, tc.want)),
			"Round2(%s) = %s, want %s", tc.in, got.String(), tc.want)
	}
}

func TestRound2_DoesNotMutateFullPrecisionChain(t *testing.T) {
	// GIVEN: A full-precision amount
	// WHEN: Rounding for presentation
	// THEN: The original value is untouched (decimal values are immutable)

	full := dec(t, "105.554168")
	_ = engine.Round2(full)
	assert.True(t, full.Equal(dec(t, "105.554168")))
}

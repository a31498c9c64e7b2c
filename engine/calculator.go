/*
calculator.go - The allowed-amount formula

PURPOSE:
  Pure arithmetic, no I/O:

    allowed = (work_rvu * work_gpci
             + pe_rvu   * pe_gpci
             + mp_rvu   * mp_gpci) * conversion_factor

ZERO-FALLBACK POLICY:
  Any missing RVU or GPCI component is treated as 0 before multiplication.
  This mirrors the upstream reference pipeline, which coalesces absent
  components to zero rather than failing the whole calculation. The
  fallback applies to COMPONENTS only: a missing GPCI or RVU row fails
  the lookup stage with ErrNotFound before the formula ever runs.

  Open question upstream: silent degradation to zero can mask missing
  reference data. The policy is kept, named, and tested rather than
  quietly tightened.

ROUNDING:
  AllowedAmount returns full precision. Rounding to cents (half up)
  happens once, at presentation, via Round2.
*/
package engine

import "github.com/shopspring/decimal"

// AllowedAmount combines the RVU triple, the GPCI triple, and the yearly
// conversion factor into a full-precision monetary amount. Zero-valued
// components contribute nothing; see the zero-fallback policy above.
func AllowedAmount(r RVU, g GPCI, conversionFactor decimal.Decimal) decimal.Decimal {
	weighted := r.Work.Mul(g.Work).
		Add(r.PracticeExpense.Mul(g.PracticeExpense)).
		Add(r.Malpractice.Mul(g.Malpractice))
	return weighted.Mul(conversionFactor)
}

// Round2 rounds a monetary amount to cents, half up. Presentation only;
// never feed a rounded value back into the formula.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

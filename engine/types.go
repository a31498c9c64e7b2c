/*
Package engine provides the core rate resolution engine.

PURPOSE:
  This package contains the lookup, join, and arithmetic rules that turn
  raw Medicare reference rows into a single reimbursable amount. The engine
  is a pure query layer: it reads from an injected ReferenceStore, never
  writes, and computes every monetary value in fixed-precision decimals.

KEY CONCEPTS IN THIS FILE (types.go):
  - GPCI:      Geographic Practice Cost Index triple (work, PE, malpractice)
  - RVU:       Relative Value Unit triple for a procedure code
  - Locality:  A ZIP code resolved to its Medicare carrier/locality
  - MedicareRate: The fully resolved result, full precision

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere money or indices appear.
     Rounding happens once, at presentation (MedicareRate.Rounded).
  2. Injection: all reference data flows through the ReferenceStore
     interface so fixtures and fakes substitute cleanly in tests.
  3. Explicit policy: the zero-fallback arithmetic and the fuzzy
     locality-name join are named, documented behaviors, not accidents
     of query ordering.

SEE ALSO:
  - resolver.go:   Top-level ResolveMedicareAllowedAmount orchestration
  - calculator.go: The allowed-amount formula and zero-fallback policy
  - store.go:      ReferenceStore interface
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INDEX TRIPLES
// =============================================================================

// GPCI is the Geographic Practice Cost Index triple for a locality and year.
// A zero-valued component contributes nothing to the allowed amount; see
// calculator.go for the zero-fallback policy.
type GPCI struct {
	Work            decimal.Decimal
	PracticeExpense decimal.Decimal
	Malpractice     decimal.Decimal
}

// RVU is the Relative Value Unit triple for a procedure code and year.
type RVU struct {
	Work            decimal.Decimal
	PracticeExpense decimal.Decimal
	Malpractice     decimal.Decimal
}

// =============================================================================
// REFERENCE ROWS - shapes returned by the ReferenceStore
// =============================================================================

// LocalityMapRow maps a ZIP code to its Medicare carrier and locality.
// One ZIP maps to exactly one (carrier, locality) per year-quarter version.
type LocalityMapRow struct {
	ZIPCode      string
	StateCode    string
	CarrierCode  string
	LocalityCode string
	YearQuarter  string
}

// LocalityMetaRow describes a (carrier, locality) pair: the state it belongs
// to and the fee-schedule-area label used as the join key into the GPCI table.
type LocalityMetaRow struct {
	MACCode         string
	LocalityCode    string
	StateName       string
	FeeScheduleArea string
	Counties        string
}

// GPCIRow is a raw cost-index row keyed by (locality_code, year). The
// LocalityName is the fuzzy join key back to LocalityMetaRow.FeeScheduleArea.
type GPCIRow struct {
	LocalityCode    string
	Year            int
	LocalityName    string
	Work            decimal.Decimal
	PracticeExpense decimal.Decimal
	Malpractice     decimal.Decimal
}

// RVURow is a raw relative-value row keyed by (procedure_code, modifier, year).
type RVURow struct {
	ProcedureCode   string
	Modifier        string
	Year            int
	Work            decimal.Decimal
	PracticeExpense decimal.Decimal
	Malpractice     decimal.Decimal
	Total           *decimal.Decimal
}

// ConversionFactorRow is the yearly dollar multiplier.
type ConversionFactorRow struct {
	Year   int
	Factor decimal.Decimal
}

// =============================================================================
// RESOLVED RESULTS
// =============================================================================

// Locality is a ZIP code resolved through the locality map and metadata.
type Locality struct {
	ZIPCode         string
	StateCode       string
	StateName       string
	CarrierCode     string
	LocalityCode    string
	FeeScheduleArea string
}

// MedicareRate is the fully resolved Medicare allowed amount with every
// input that produced it. AllowedAmount is full precision; callers round
// at the presentation boundary via Rounded.
type MedicareRate struct {
	Locality         Locality
	ProcedureCode    string
	Modifier         string
	Year             int
	GPCI             GPCI
	RVU              RVU
	ConversionFactor decimal.Decimal
	AllowedAmount    decimal.Decimal
}

// Rounded returns the allowed amount rounded to cents, half up.
func (m *MedicareRate) Rounded() decimal.Decimal {
	return Round2(m.AllowedAmount)
}

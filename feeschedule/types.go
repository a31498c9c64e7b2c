/*
Package feeschedule selects workers'-compensation and state fee-schedule
rates.

PURPOSE:
  A state publishes fee schedules over time, each holding fixed rates per
  procedure. For one (state, procedure, modifier, region) lookup several
  candidate rows can exist - regional and statewide rows, rows from older
  and newer schedules. This package owns the precedence policy that picks
  the single applicable row.

KEY CONCEPTS IN THIS FILE (types.go):
  - Schedule:  A state fee schedule with its effective window
  - Rate:      One priced procedure row within a schedule
  - Candidate: A rate joined with its schedule, region, and description
  - RateView:  The selected rate shaped for the caller

PRECEDENCE (see selector.go):
  1. Region-specific rows beat statewide rows.
  2. Among equals, the most recent schedule wins.

SEE ALSO:
  - selector.go: Ranking function and the advisory access counter
  - store.go:    RateStore interface
*/
package feeschedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REFERENCE ROWS
// =============================================================================

// Schedule is a state fee schedule: a versioned table of rates of one
// schedule type ("Physician", "WorkersComp", ...).
type Schedule struct {
	ID               int64
	StateCode        string
	ScheduleType     string
	EffectiveDate    time.Time
	ExpirationDate   *time.Time
	ConversionFactor *decimal.Decimal
	Notes            string
}

// Rate is one priced procedure row within a schedule. RegionID nil means
// the rate applies statewide. At most one row exists per
// (schedule, procedure, modifier, region).
type Rate struct {
	ID            int64
	FeeScheduleID int64
	ProcedureCode string
	Modifier      string
	RegionID      *int64
	Rate          decimal.Decimal
	RateUnit      string
	IsByReport    bool
	EffectiveDate time.Time
	AccessCount   int64
}

// =============================================================================
// SELECTION TYPES
// =============================================================================

// Filter narrows candidate rates. Modifier blank matches only unmodified
// rows. RegionID nil means no region constraint was supplied.
type Filter struct {
	StateCode     string
	ProcedureCode string
	Modifier      string
	RegionID      *int64
}

// Candidate is a rate joined with the context the ranking and the view
// need: its schedule, the procedure description, and the region name.
type Candidate struct {
	Rate                  Rate
	ScheduleType          string
	ScheduleEffectiveDate time.Time
	StateCode             string
	Description           string
	RegionName            string
}

// RateView is the selected rate shaped for the caller.
type RateView struct {
	ID            int64
	StateCode     string
	ScheduleType  string
	ProcedureCode string
	Description   string
	Modifier      string
	Region        string
	Rate          decimal.Decimal
	RateUnit      string
	IsByReport    bool
	EffectiveDate time.Time
}

func viewOf(c Candidate) *RateView {
	return &RateView{
		ID:            c.Rate.ID,
		StateCode:     c.StateCode,
		ScheduleType:  c.ScheduleType,
		ProcedureCode: c.Rate.ProcedureCode,
		Description:   c.Description,
		Modifier:      c.Rate.Modifier,
		Region:        c.RegionName,
		Rate:          c.Rate.Rate,
		RateUnit:      c.Rate.RateUnit,
		IsByReport:    c.Rate.IsByReport,
		EffectiveDate: c.Rate.EffectiveDate,
	}
}

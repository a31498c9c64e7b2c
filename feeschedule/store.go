/*
store.go - Fee-schedule rate persistence interface

PURPOSE:
  Read access to fee-schedule rates plus the one write in the entire
  system: the advisory access counter.

FIND SEMANTICS:
  FindRates applies the cheap, unambiguous filters (state, procedure,
  modifier) in the store and returns every remaining candidate. Region
  eligibility and precedence ranking are selection policy and stay in
  selector.go where they are testable in isolation.

COUNTER CONTRACT:
  IncrementAccessCount must be a single atomic SQL increment
  (SET access_count = access_count + 1), never read-modify-write in
  application code. It is advisory telemetry: eventual consistency is
  fine, and a failed increment is logged by the selector, never surfaced.
*/
package feeschedule

import "context"

// RateStore provides access to fee-schedule rate rows.
type RateStore interface {
	// FindRates returns all candidate rows for the filter's state,
	// procedure code, and modifier, regional and statewide alike.
	FindRates(ctx context.Context, f Filter) ([]Candidate, error)

	// IncrementAccessCount atomically bumps the advisory usage counter
	// of a selected rate.
	IncrementAccessCount(ctx context.Context, rateID int64) error
}

// State is a catalog row for the state picker.
type State struct {
	Code       string
	Name       string
	HasRegions bool
}

// Procedure is a catalog row for the procedure picker.
type Procedure struct {
	Code        string
	Description string
	CodeType    string
}

// Catalog lists the reference entities the lookup forms offer.
type Catalog interface {
	ListStates(ctx context.Context) ([]State, error)
	ListProcedures(ctx context.Context) ([]Procedure, error)
}

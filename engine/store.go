/*
store.go - Reference data access interface

PURPOSE:
  Defines the interface between the resolution engine and the versioned
  reference store. The engine never owns a connection; a store is injected
  so SQLite, Postgres, and in-memory fixtures are interchangeable.

READ-ONLY CONTRACT:
  Every method is a read. The reference tables are loaded and refreshed
  externally on a yearly or quarterly cadence; the engine only consumes
  them. The single write in the whole system - the advisory access counter
  on fee-schedule rates - lives on feeschedule.RateStore, not here.

CANDIDATE SEMANTICS:
  LookupGPCI and LookupRVU return ALL rows under their natural key rather
  than picking one. The fuzzy locality-name join, the modifier constraint,
  and the ambiguity rules are resolution policy and belong to the
  resolvers, not to SQL. See gpci.go and rvu.go.

ERROR CONTRACT:
  Absent single-row lookups return (nil, nil). Driver failures and query
  timeouts are mapped by implementations to ErrStoreUnavailable; they are
  never folded into ErrNotFound.

IMPLEMENTATIONS:
  - store/sqlite:        Embedded production store
  - store/postgres:      Server-backed production store
  - engine/store:        In-memory store for tests and demos
*/
package engine

import "context"

// ReferenceStore provides read access to the Medicare reference datasets.
type ReferenceStore interface {
	// LookupLocality returns the locality map row for a ZIP code,
	// or (nil, nil) when the ZIP is absent.
	LookupLocality(ctx context.Context, zipCode string) (*LocalityMapRow, error)

	// LookupLocalityMeta returns the metadata row for a (carrier, locality)
	// pair, or (nil, nil) when absent.
	LookupLocalityMeta(ctx context.Context, carrierCode, localityCode string) (*LocalityMetaRow, error)

	// LookupGPCI returns every cost-index row for (locality_code, year).
	LookupGPCI(ctx context.Context, localityCode string, year int) ([]GPCIRow, error)

	// LookupRVU returns every relative-value row for (procedure_code, year),
	// all modifiers included.
	LookupRVU(ctx context.Context, procedureCode string, year int) ([]RVURow, error)

	// LookupConversionFactor returns the yearly multiplier, or (nil, nil)
	// when the year is absent.
	LookupConversionFactor(ctx context.Context, year int) (*ConversionFactorRow, error)
}

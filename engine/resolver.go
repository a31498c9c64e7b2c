/*
resolver.go - Top-level Medicare resolution

PURPOSE:
  Orchestrates the Medicare path:

    ZIP -> LocalityResolver -> CostIndexResolver + ValueUnitResolver
        -> conversion factor -> AllowedAmount

PROPAGATION POLICY:
  Each stage returns its own failure kind. The resolver passes the first
  failure upward unchanged - no swallowing, no reclassification. Callers
  distinguish kinds with errors.Is against the sentinels in errors.go.

STATELESSNESS:
  A resolution is a sequence of independent reads plus a pure
  computation. Resolvers are safe for concurrent use; any number of
  requests may be in flight against the same store.
*/
package engine

import (
	"context"
	"strconv"
)

// Resolver is the engine's entry point for the Medicare path.
type Resolver struct {
	locality  LocalityResolver
	costIndex CostIndexResolver
	valueUnit ValueUnitResolver
	store     ReferenceStore
}

// NewResolver builds a Resolver over the given reference store.
func NewResolver(store ReferenceStore) *Resolver {
	return &Resolver{
		locality:  LocalityResolver{Store: store},
		costIndex: CostIndexResolver{Store: store},
		valueUnit: ValueUnitResolver{Store: store},
		store:     store,
	}
}

// ResolveMedicareAllowedAmount resolves the Medicare allowed amount for a
// (ZIP, procedure code) pair in the given year. The modifier may be blank,
// meaning only unmodified RVU rows qualify.
func (r *Resolver) ResolveMedicareAllowedAmount(ctx context.Context, zipCode, procedureCode, modifier string, year int) (*MedicareRate, error) {
	loc, err := r.locality.Resolve(ctx, zipCode)
	if err != nil {
		return nil, err
	}

	gpci, err := r.costIndex.Resolve(ctx, loc.FeeScheduleArea, loc.LocalityCode, year)
	if err != nil {
		return nil, err
	}

	rvu, err := r.valueUnit.Resolve(ctx, procedureCode, modifier, year)
	if err != nil {
		return nil, err
	}

	cf, err := r.store.LookupConversionFactor(ctx, year)
	if err != nil {
		return nil, err
	}
	if cf == nil {
		return nil, &NotFoundError{Kind: "conversion_factor", Key: strconv.Itoa(year)}
	}

	return &MedicareRate{
		Locality:         *loc,
		ProcedureCode:    procedureCode,
		Modifier:         modifier,
		Year:             year,
		GPCI:             gpci,
		RVU:              rvu,
		ConversionFactor: cf.Factor,
		AllowedAmount:    AllowedAmount(rvu, gpci, cf.Factor),
	}, nil
}

/*
gpci.go - Cost-index resolution with the fuzzy area join

PURPOSE:
  Second stage of the Medicare path: (fee_schedule_area, locality_code,
  year) becomes a GPCI triple. The join key is a human-entered label, so
  both sides are normalized (see normalize.go) before comparison.

AMBIGUITY RULE:
  The reference data promises one GPCI row per (locality_code, year),
  but upstream refreshes have produced duplicates before. The resolver
  never picks arbitrarily among ties:
    0 candidates  -> ErrNotFound
    1 candidate   -> that row
    N candidates  -> if exactly one matches the area RAW (trimmed but
                     case-sensitive), prefer it; otherwise ErrAmbiguousMatch
  The raw-match preference is deterministic; everything else is surfaced
  so operators can spot corrupted reference loads.
*/
package engine

import (
	"context"
	"strings"
)

// CostIndexResolver joins locality metadata to the GPCI table.
type CostIndexResolver struct {
	Store ReferenceStore
}

// Resolve returns the GPCI triple for a fee-schedule area and locality in
// the given year.
func (r *CostIndexResolver) Resolve(ctx context.Context, feeScheduleArea, localityCode string, year int) (GPCI, error) {
	rows, err := r.Store.LookupGPCI(ctx, localityCode, year)
	if err != nil {
		return GPCI{}, err
	}

	want := NormalizeArea(feeScheduleArea)
	var candidates []GPCIRow
	for _, row := range rows {
		if NormalizeArea(row.LocalityName) == want {
			candidates = append(candidates, row)
		}
	}

	key := feeScheduleArea + "/" + localityCode
	switch len(candidates) {
	case 0:
		return GPCI{}, &NotFoundError{Kind: "gpci", Key: key}
	case 1:
		return triple(candidates[0]), nil
	}

	// Tie-break: a single raw-equal locality_name wins.
	var exact []GPCIRow
	for _, row := range candidates {
		if strings.TrimSpace(row.LocalityName) == strings.TrimSpace(feeScheduleArea) {
			exact = append(exact, row)
		}
	}
	if len(exact) == 1 {
		return triple(exact[0]), nil
	}

	return GPCI{}, &AmbiguousMatchError{Kind: "gpci", Key: key, Count: len(candidates)}
}

func triple(row GPCIRow) GPCI {
	return GPCI{
		Work:            row.Work,
		PracticeExpense: row.PracticeExpense,
		Malpractice:     row.Malpractice,
	}
}

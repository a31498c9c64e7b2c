/*
locality.go - ZIP code to Medicare locality resolution

PURPOSE:
  First stage of the Medicare path: a 5-digit ZIP code becomes a
  (carrier, locality, fee-schedule-area) tuple via two reference lookups.

CONTRACT:
  - Input must be exactly five ASCII digits; anything else is
    ErrInvalidInput, before any store access.
  - Absent ZIP          -> NotFoundError{Kind: "zip"}
  - Absent locality meta -> NotFoundError{Kind: "locality"}
  - No side effects.
*/
package engine

import "context"

// LocalityResolver maps ZIP codes to Medicare localities.
type LocalityResolver struct {
	Store ReferenceStore
}

// Resolve looks up the locality for a 5-digit ZIP code.
func (r *LocalityResolver) Resolve(ctx context.Context, zipCode string) (*Locality, error) {
	if !isFiveDigits(zipCode) {
		return nil, &InvalidInputError{
			Field:  "zip_code",
			Value:  zipCode,
			Reason: "must be exactly 5 digits",
		}
	}

	row, err := r.Store.LookupLocality(ctx, zipCode)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &NotFoundError{Kind: "zip", Key: zipCode}
	}

	meta, err := r.Store.LookupLocalityMeta(ctx, row.CarrierCode, row.LocalityCode)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, &NotFoundError{Kind: "locality", Key: row.CarrierCode + "/" + row.LocalityCode}
	}

	return &Locality{
		ZIPCode:         row.ZIPCode,
		StateCode:       row.StateCode,
		StateName:       meta.StateName,
		CarrierCode:     row.CarrierCode,
		LocalityCode:    row.LocalityCode,
		FeeScheduleArea: meta.FeeScheduleArea,
	}, nil
}

// isFiveDigits reports whether s is exactly five ASCII digits.
// Unicode digits do not qualify.
func isFiveDigits(s string) bool {
	if len(s) != 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

/*
rvu.go - Relative-value resolution with the modifier constraint

PURPOSE:
  Third stage of the Medicare path: (procedure_code, modifier, year)
  becomes an RVU triple.

MODIFIER CONSTRAINT:
  A blank modifier means "no modifier": only rows whose stored modifier
  is NULL or empty are eligible. A non-blank modifier matches exactly.

DEFENSIVE DUPLICATE HANDLING:
  The unique-key invariant should make multiple matches impossible, but
  the resolver handles them anyway: among duplicate matches, exactly one
  unmodified row wins; anything else is ErrAmbiguousMatch, never an
  arbitrary pick.
*/
package engine

import (
	"context"
	"strings"
)

// ValueUnitResolver looks up RVU triples for procedure codes.
type ValueUnitResolver struct {
	Store ReferenceStore
}

// Resolve returns the RVU triple for a procedure code and optional
// modifier in the given year.
func (r *ValueUnitResolver) Resolve(ctx context.Context, procedureCode, modifier string, year int) (RVU, error) {
	rows, err := r.Store.LookupRVU(ctx, procedureCode, year)
	if err != nil {
		return RVU{}, err
	}

	want := strings.TrimSpace(modifier)
	var matches []RVURow
	for _, row := range rows {
		if strings.TrimSpace(row.Modifier) == want {
			matches = append(matches, row)
		}
	}

	key := procedureCode
	if want != "" {
		key += "-" + want
	}

	switch len(matches) {
	case 0:
		return RVU{}, &NotFoundError{Kind: "rvu", Key: key}
	case 1:
		return values(matches[0]), nil
	}

	// Duplicate rows under the same key. Prefer a single unmodified row.
	var unmodified []RVURow
	for _, row := range matches {
		if strings.TrimSpace(row.Modifier) == "" {
			unmodified = append(unmodified, row)
		}
	}
	if len(unmodified) == 1 {
		return values(unmodified[0]), nil
	}

	return RVU{}, &AmbiguousMatchError{Kind: "rvu", Key: key, Count: len(matches)}
}

func values(row RVURow) RVU {
	return RVU{
		Work:            row.Work,
		PracticeExpense: row.PracticeExpense,
		Malpractice:     row.Malpractice,
	}
}

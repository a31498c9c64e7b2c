/*
normalize.go - Fee-schedule-area normalization

PURPOSE:
  The GPCI table's locality_name and the locality metadata's
  fee_schedule_area come from different upstream files and disagree on
  case and whitespace ("REST OF CALIFORNIA " vs "Rest of California").
  The join between them is therefore fuzzy: both sides are normalized
  with the same function before comparison.

  Keeping the normalization in one exported function - used by the
  cost-index resolver on both sides of the join, and by tests - is what
  makes the ambiguity rule in gpci.go deterministic instead of an
  accident of join order.
*/
package engine

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeArea lowercases, collapses internal whitespace, and trims the
// input. Both sides of the fee-schedule-area join go through this.
func NormalizeArea(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return multiSpace.ReplaceAllString(s, " ")
}

/*
errors.go - Centralized error taxonomy for rate resolution

PURPOSE:
  All failure kinds in one place. Every resolver stage returns its own
  failure kind; the top-level resolution functions pass the first failure
  upward unchanged, never reclassifying.

ERROR CATEGORIES:
  1. ErrInvalidInput     - Malformed ZIP/procedure code. Caller's fault,
                           never retried.
  2. ErrNotFound         - No matching row at some resolution stage.
                           "No data for this input", not retried.
  3. ErrAmbiguousMatch   - Data-integrity violation: more than one equally
                           valid candidate where uniqueness was assumed.
                           Surfaced distinctly so operators can detect
                           reference-data corruption.
  4. ErrStoreUnavailable - Transient infrastructure failure. Safe for the
                           caller to retry with backoff.

USAGE:
  Structured errors wrap the sentinels, so callers match with errors.Is:

    if errors.Is(err, engine.ErrNotFound) { ... }

SEE ALSO:
  - resolver.go: Propagation policy
  - api/handlers.go: HTTP status mapping at the collaborator boundary
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for malformed caller input such as a
	// ZIP code that is not exactly five ASCII digits.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when no reference row matches at any
	// resolution stage.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousMatch is returned when more than one equally valid
	// candidate row matches where the reference data promises uniqueness.
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrStoreUnavailable is returned when the reference store cannot be
	// reached or a query times out.
	ErrStoreUnavailable = errors.New("reference store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError reports a malformed input field.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// NotFoundError reports which resolution stage found no data and for
// what key.
type NotFoundError struct {
	Kind string // "zip", "locality", "gpci", "rvu", "conversion_factor", "rate"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s data for %q", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AmbiguousMatchError reports a uniqueness violation in the reference data.
type AmbiguousMatchError struct {
	Kind  string
	Key   string
	Count int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d %s rows match %q, expected one", e.Count, e.Kind, e.Key)
}

func (e *AmbiguousMatchError) Unwrap() error { return ErrAmbiguousMatch }

// StoreError wraps a driver-level failure as ErrStoreUnavailable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return ErrStoreUnavailable }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
// Only store failures qualify; resolution reads are idempotent.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsClientError returns true if the error is due to the caller's input
// rather than a systemic problem.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound)
}

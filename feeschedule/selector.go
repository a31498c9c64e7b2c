/*
selector.go - Fee-schedule rate selection

PURPOSE:
  Picks the single applicable rate among the candidates for a
  (state, procedure, modifier, region) lookup. The precedence that the
  original system left implicit in query ordering is an explicit,
  orderable ranking here:

    1. If a region was requested, rows for that region beat statewide
       rows - regardless of date.
    2. Among equals, the newer schedule wins.
    3. Then the newer rate row, then the lower ID, purely so results
       are stable under duplicate reference loads.

SIDE EFFECT:
  The selected row's access counter is incremented best-effort. A
  counter failure is logged at warn and never reaches the caller.
*/
package feeschedule

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/bph/rate-engine/engine"
)

// Selector resolves fee-schedule rate lookups against a RateStore.
type Selector struct {
	store RateStore
	log   zerolog.Logger
}

// NewSelector builds a Selector over the given store.
func NewSelector(store RateStore, log zerolog.Logger) *Selector {
	return &Selector{store: store, log: log}
}

// Resolve returns the applicable rate for state+procedure, honoring the
// optional modifier and region. RegionID nil means statewide lookup.
func (s *Selector) Resolve(ctx context.Context, stateCode, procedureCode, modifier string, regionID *int64) (*RateView, error) {
	candidates, err := s.store.FindRates(ctx, Filter{
		StateCode:     stateCode,
		ProcedureCode: procedureCode,
		Modifier:      modifier,
		RegionID:      regionID,
	})
	if err != nil {
		return nil, err
	}

	eligible := candidates[:0:0]
	for _, c := range candidates {
		if regionAllows(c, regionID) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil, &engine.NotFoundError{Kind: "rate", Key: stateCode + "/" + procedureCode}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return rankLess(eligible[i], eligible[j], regionID)
	})
	selected := eligible[0]

	// Advisory only. Must never block or fail the lookup.
	if err := s.store.IncrementAccessCount(ctx, selected.Rate.ID); err != nil {
		s.log.Warn().
			Int64("rate_id", selected.Rate.ID).
			Err(err).
			Msg("access counter update failed")
	}

	return viewOf(selected), nil
}

// regionAllows keeps statewide rows always, and regional rows only when
// they match the requested region. With no region requested, only
// statewide rows qualify.
func regionAllows(c Candidate, regionID *int64) bool {
	if c.Rate.RegionID == nil {
		return true
	}
	return regionID != nil && *c.Rate.RegionID == *regionID
}

// rankLess orders candidates best-first.
func rankLess(a, b Candidate, regionID *int64) bool {
	if regionID != nil {
		aRegional := a.Rate.RegionID != nil
		bRegional := b.Rate.RegionID != nil
		if aRegional != bRegional {
			return aRegional
		}
	}
	if !a.ScheduleEffectiveDate.Equal(b.ScheduleEffectiveDate) {
		return a.ScheduleEffectiveDate.After(b.ScheduleEffectiveDate)
	}
	if !a.Rate.EffectiveDate.Equal(b.Rate.EffectiveDate) {
		return a.Rate.EffectiveDate.After(b.Rate.EffectiveDate)
	}
	return a.Rate.ID < b.Rate.ID
}

// Package store provides an in-memory reference store for tests and demos.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements engine.ReferenceStore and feeschedule.RateStore over
// plain maps and slices. Populate it with the Add* methods.
type Memory struct {
	mu         sync.RWMutex
	localities map[string]engine.LocalityMapRow
	metas      map[metaKey]engine.LocalityMetaRow
	gpcis      []engine.GPCIRow
	rvus       []engine.RVURow
	factors    map[int]engine.ConversionFactorRow
	rates      []feeschedule.Candidate
	accesses   map[int64]int64
	states     []feeschedule.State
	procedures []feeschedule.Procedure
}

type metaKey struct {
	Carrier  string
	Locality string
}

func NewMemory() *Memory {
	return &Memory{
		localities: make(map[string]engine.LocalityMapRow),
		metas:      make(map[metaKey]engine.LocalityMetaRow),
		factors:    make(map[int]engine.ConversionFactorRow),
		accesses:   make(map[int64]int64),
	}
}

// =============================================================================
// POPULATION HELPERS
// =============================================================================

func (m *Memory) AddLocality(row engine.LocalityMapRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localities[row.ZIPCode] = row
}

func (m *Memory) AddLocalityMeta(row engine.LocalityMetaRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metas[metaKey{row.MACCode, row.LocalityCode}] = row
}

func (m *Memory) AddGPCI(row engine.GPCIRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gpcis = append(m.gpcis, row)
}

func (m *Memory) AddRVU(row engine.RVURow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rvus = append(m.rvus, row)
}

func (m *Memory) AddConversionFactor(row engine.ConversionFactorRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factors[row.Year] = row
}

func (m *Memory) AddRate(c feeschedule.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append(m.rates, c)
}

// AccessCount returns the advisory counter for a rate.
func (m *Memory) AccessCount(rateID int64) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accesses[rateID]
}

// =============================================================================
// engine.ReferenceStore
// =============================================================================

func (m *Memory) LookupLocality(_ context.Context, zipCode string) (*engine.LocalityMapRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.localities[zipCode]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *Memory) LookupLocalityMeta(_ context.Context, carrierCode, localityCode string) (*engine.LocalityMetaRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.metas[metaKey{carrierCode, localityCode}]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *Memory) LookupGPCI(_ context.Context, localityCode string, year int) ([]engine.GPCIRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []engine.GPCIRow
	for _, row := range m.gpcis {
		if row.LocalityCode == localityCode && row.Year == year {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *Memory) LookupRVU(_ context.Context, procedureCode string, year int) ([]engine.RVURow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []engine.RVURow
	for _, row := range m.rvus {
		if row.ProcedureCode == procedureCode && row.Year == year {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *Memory) LookupConversionFactor(_ context.Context, year int) (*engine.ConversionFactorRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.factors[year]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// =============================================================================
// feeschedule.RateStore
// =============================================================================

func (m *Memory) FindRates(_ context.Context, f feeschedule.Filter) ([]feeschedule.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []feeschedule.Candidate
	for _, c := range m.rates {
		if c.StateCode != f.StateCode || c.Rate.ProcedureCode != f.ProcedureCode {
			continue
		}
		if c.Rate.Modifier != f.Modifier {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) IncrementAccessCount(_ context.Context, rateID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accesses[rateID]++
	return nil
}

// =============================================================================
// feeschedule.Catalog
// =============================================================================

func (m *Memory) AddState(st feeschedule.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, st)
}

func (m *Memory) AddProcedure(p feeschedule.Procedure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.procedures = append(m.procedures, p)
}

func (m *Memory) ListStates(_ context.Context) ([]feeschedule.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]feeschedule.State, len(m.states))
	copy(out, m.states)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *Memory) ListProcedures(_ context.Context) ([]feeschedule.Procedure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]feeschedule.Procedure, len(m.procedures))
	copy(out, m.procedures)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

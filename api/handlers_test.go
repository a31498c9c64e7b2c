/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Medicare lookup endpoint (parameters, body shape)
- Fee-schedule lookup endpoint
- Catalog endpoints
- Domain error to HTTP status mapping
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/engine/store"
	"github.com/bph/rate-engine/feeschedule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func newTestRouter(t *testing.T) (*chiRouter, *store.Memory) {
	m := store.NewMemory()

	m.AddLocality(engine.LocalityMapRow{
		ZIPCode: "94110", StateCode: "CA", CarrierCode: "01112", LocalityCode: "05",
	})
	m.AddLocalityMeta(engine.LocalityMetaRow{
		MACCode: "01112", LocalityCode: "05",
		StateName: "CALIFORNIA", FeeScheduleArea: "SAN FRANCISCO",
	})
	m.AddGPCI(engine.GPCIRow{
		LocalityCode: "05", Year: 2025, LocalityName: "SAN FRANCISCO",
		Work: mustDec(t, "1.0966"), PracticeExpense: mustDec(t, "1.4295"), Malpractice: mustDec(t, "0.6472"),
	})
	m.AddRVU(engine.RVURow{
		ProcedureCode: "99213", Year: 2025,
		Work: mustDec(t, "1.30"), PracticeExpense: mustDec(t, "1.24"), Malpractice: mustDec(t, "0.10"),
	})
	m.AddConversionFactor(engine.ConversionFactorRow{Year: 2025, Factor: mustDec(t, "32.35")})

	m.AddRate(feeschedule.Candidate{
		Rate: feeschedule.Rate{
			ID: 1, ProcedureCode: "99213", Rate: mustDec(t, "106.52"), RateUnit: "1",
			EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		ScheduleType:          "physician",
		ScheduleEffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		StateCode:             "CA",
		Description:           "Office visit",
	})

	m.AddState(feeschedule.State{Code: "CA", Name: "California"})
	m.AddState(feeschedule.State{Code: "NY", Name: "New York", HasRegions: true})
	m.AddProcedure(feeschedule.Procedure{Code: "99213", Description: "Office visit", CodeType: "CPT"})

	h := NewHandler(engine.NewResolver(m), feeschedule.NewSelector(m, zerolog.Nop()), m, zerolog.Nop())
	return &chiRouter{NewRouter(h)}, m
}

// chiRouter keeps the test call sites short.
type chiRouter struct {
	http.Handler
}

func (r *chiRouter) get(t *testing.T, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// =============================================================================
// MEDICARE ENDPOINT
// =============================================================================

func TestGetMedicareRate_OK(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := router.get(t, "/api/medicare-rates?zip_code=94110&procedure_code=99213&year=2025")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var dto MedicareRateDTO
	decodeBody(t, rec, &dto)
	if dto.AllowedAmount != "105.55" {
		t.Errorf("allowed amount %q, want 105.55", dto.AllowedAmount)
	}
	if dto.FeeScheduleArea != "SAN FRANCISCO" {
		t.Errorf("fee schedule area %q", dto.FeeScheduleArea)
	}
	if dto.ConversionFactor != "32.35" {
		t.Errorf("conversion factor %q", dto.ConversionFactor)
	}
}

func TestGetMedicareRate_InvalidZIP_400(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := router.get(t, "/api/medicare-rates?zip_code=123&procedure_code=99213&year=2025")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Error == "" {
		t.Error("expected error message in body")
	}
}

func TestGetMedicareRate_MissingProcedureCode_400(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := router.get(t, "/api/medicare-rates?zip_code=94110")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestGetMedicareRate_BadYear_400(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := router.get(t, "/api/medicare-rates?zip_code=94110&procedure_code=99213&year=soon")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestGetMedicareRate_UnknownZIP_404(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := router.get(t, "/api/medicare-rates?zip_code=00000&procedure_code=99213&year=2025")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestGetMedicareRate_AmbiguousData_500Generic(t *testing.T) {
	// GIVEN: Duplicate GPCI rows that cannot be tie-broken
	router, m := newTestRouter(t)
	m.AddGPCI(engine.GPCIRow{
		LocalityCode: "05", Year: 2025, LocalityName: "SAN FRANCISCO",
		Work: mustDec(t, "9.9"), PracticeExpense: mustDec(t, "9.9"), Malpractice: mustDec(t, "9.9"),
	})

	rec := router.get(t, "/api/medicare-rates?zip_code=94110&procedure_code=99213&year=2025")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}

	// The data-quality detail must not leak to the caller.
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Details != "" {
		t.Errorf("expected generic body, got details %q", resp.Details)
	}
}

// =============================================================================
// FEE SCHEDULE ENDPOINT
// =============================================================================

func TestGetRate_OK(t *testing.T) {
	router, m := newTestRouter(t)

	rec := router.get(t, "/api/rates?state=CA&procedure_code=99213")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var dto RateDTO
	decodeBody(t, rec, &dto)
	if dto.Rate != "106.52" {
		t.Errorf("rate %q, want 106.52", dto.Rate)
	}
	if dto.ScheduleType != "physician" {
		t.Errorf("schedule type %q", dto.ScheduleType)
	}

	// The lookup bumps the advisory counter.
	if got := m.AccessCount(1); got != 1 {
		t.Errorf("access count %d, want 1", got)
	}
}

func TestGetRate_MissingParams_400(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, url := range []string{
		"/api/rates?procedure_code=99213",
		"/api/rates?state=CA",
		"/api/rates?state=CA&procedure_code=99213&region_id=four",
	} {
		rec := router.get(t, url)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", url, rec.Code)
		}
	}
}

func TestGetRate_Unknown_404(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := router.get(t, "/api/rates?state=TX&procedure_code=99213")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

// =============================================================================
// CATALOG ENDPOINTS
// =============================================================================

func TestListStates(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := router.get(t, "/api/states")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var dtos []StateDTO
	decodeBody(t, rec, &dtos)
	if len(dtos) != 2 || dtos[0].Code != "CA" || !dtos[1].HasRegions {
		t.Errorf("unexpected states: %+v", dtos)
	}
}

func TestListProcedures(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := router.get(t, "/api/procedures")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var dtos []ProcedureDTO
	decodeBody(t, rec, &dtos)
	if len(dtos) != 1 || dtos[0].Code != "99213" {
		t.Errorf("unexpected procedures: %+v", dtos)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := router.get(t, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

// =============================================================================
// ERROR MAPPING UNIT TESTS
// =============================================================================

type failingStore struct {
	*store.Memory
}

func (f *failingStore) LookupLocality(ctx context.Context, zip string) (*engine.LocalityMapRow, error) {
	return nil, &engine.StoreError{Op: "lookup locality", Err: context.DeadlineExceeded}
}

func TestGetMedicareRate_StoreDown_503(t *testing.T) {
	m := store.NewMemory()
	fs := &failingStore{m}
	h := NewHandler(engine.NewResolver(fs), feeschedule.NewSelector(m, zerolog.Nop()), m, zerolog.Nop())
	router := &chiRouter{NewRouter(h)}

	rec := router.get(t, "/api/medicare-rates?zip_code=94110&procedure_code=99213&year=2025")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
}

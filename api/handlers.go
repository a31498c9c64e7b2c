/*
handlers.go - HTTP API handlers for the rate resolution engine

PURPOSE:
  Exposes the two resolution paths via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Lookups:
    GET /api/medicare-rates   Medicare allowed amount for ZIP + procedure
    GET /api/rates            State fee-schedule rate

  Catalog:
    GET /api/states           States with published schedules
    GET /api/procedures       Known procedure codes

  Ops:
    GET /api/health           Liveness probe

REQUEST FLOW:
  1. Parse and validate query parameters
  2. Call the resolver/selector
  3. Serialize the DTO
  4. Map domain errors to HTTP status

ERROR HANDLING:
  Domain errors carry their own taxonomy; the mapping here is the only
  place status codes are assigned:
  - 400: invalid input (bad ZIP shape, missing parameters, bad year)
  - 404: no matching reference data or rate
  - 500: ambiguous reference data (a data quality problem, not the
         caller's; the response body stays generic)
  - 503: store unavailable, safe to retry

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - engine/errors.go: The error taxonomy being mapped
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Resolver *engine.Resolver
	Selector *feeschedule.Selector
	Catalog  feeschedule.Catalog
	Log      zerolog.Logger
}

// NewHandler creates a new handler over the resolution engine.
func NewHandler(resolver *engine.Resolver, selector *feeschedule.Selector, catalog feeschedule.Catalog, log zerolog.Logger) *Handler {
	return &Handler{
		Resolver: resolver,
		Selector: selector,
		Catalog:  catalog,
		Log:      log,
	}
}

// =============================================================================
// LOOKUP HANDLERS
// =============================================================================

// GetMedicareRate resolves a Medicare allowed amount.
// GET /api/medicare-rates?zip_code=&procedure_code=&modifier=&year=
func (h *Handler) GetMedicareRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	zipCode := q.Get("zip_code")
	procedureCode := q.Get("procedure_code")
	modifier := q.Get("modifier")
	if procedureCode == "" {
		writeError(w, http.StatusBadRequest, "procedure_code is required", nil)
		return
	}

	year := time.Now().Year()
	if raw := q.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be an integer", err)
			return
		}
		year = parsed
	}

	rate, err := h.Resolver.ResolveMedicareAllowedAmount(r.Context(), zipCode, procedureCode, modifier, year)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMedicareRateDTO(rate))
}

// GetRate resolves a state fee-schedule rate.
// GET /api/rates?state=&procedure_code=&modifier=&region_id=
func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stateCode := q.Get("state")
	procedureCode := q.Get("procedure_code")
	modifier := q.Get("modifier")
	if stateCode == "" {
		writeError(w, http.StatusBadRequest, "state is required", nil)
		return
	}
	if procedureCode == "" {
		writeError(w, http.StatusBadRequest, "procedure_code is required", nil)
		return
	}

	var regionID *int64
	if raw := q.Get("region_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "region_id must be an integer", err)
			return
		}
		regionID = &parsed
	}

	view, err := h.Selector.Resolve(r.Context(), stateCode, procedureCode, modifier, regionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRateDTO(view))
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListStates returns all states with published schedules.
// GET /api/states
func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.Catalog.ListStates(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]StateDTO, len(states))
	for i, st := range states {
		dtos[i] = StateDTO{Code: st.Code, Name: st.Name, HasRegions: st.HasRegions}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListProcedures returns all known procedure codes.
// GET /api/procedures
func (h *Handler) ListProcedures(w http.ResponseWriter, r *http.Request) {
	procedures, err := h.Catalog.ListProcedures(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]ProcedureDTO, len(procedures))
	for i, p := range procedures {
		dtos[i] = ProcedureDTO{Code: p.Code, Description: p.Description, CodeType: p.CodeType}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Health is a liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// writeDomainError translates the domain error taxonomy to HTTP.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, "no matching rate data", err)
	case errors.Is(err, engine.ErrAmbiguousMatch):
		// A reference data quality problem. Log the specifics, keep the
		// response generic.
		h.Log.Error().Err(err).Msg("ambiguous reference data")
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	case errors.Is(err, engine.ErrStoreUnavailable):
		h.Log.Error().Err(err).Msg("store unavailable")
		writeError(w, http.StatusServiceUnavailable, "store unavailable, try again", nil)
	default:
		h.Log.Error().Err(err).Msg("unexpected resolution error")
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

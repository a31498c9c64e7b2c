/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - ErrorResponse: Uniform error envelope

MONEY FIELDS:
  Decimal amounts are serialized as JSON strings ("54.40"), never floats.
  Clients that need arithmetic parse them with a decimal library.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: Domain types these project
*/
package api

import (
	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// MedicareRateDTO is the response for a Medicare allowed-amount lookup.
type MedicareRateDTO struct {
	ZIPCode         string `json:"zip_code"`
	StateCode       string `json:"state_code"`
	StateName       string `json:"state_name"`
	CarrierCode     string `json:"carrier_code"`
	LocalityCode    string `json:"locality_code"`
	FeeScheduleArea string `json:"fee_schedule_area"`
	ProcedureCode   string `json:"procedure_code"`
	Modifier        string `json:"modifier,omitempty"`
	Year            int    `json:"year"`

	WorkRVU          string `json:"work_rvu"`
	PracticeRVU      string `json:"practice_expense_rvu"`
	MalpracticeRVU   string `json:"malpractice_rvu"`
	WorkGPCI         string `json:"work_gpci"`
	PracticeGPCI     string `json:"practice_expense_gpci"`
	MalpracticeGPCI  string `json:"malpractice_gpci"`
	ConversionFactor string `json:"conversion_factor"`
	AllowedAmount    string `json:"allowed_amount"`
}

func toMedicareRateDTO(r *engine.MedicareRate) MedicareRateDTO {
	return MedicareRateDTO{
		ZIPCode:          r.Locality.ZIPCode,
		StateCode:        r.Locality.StateCode,
		StateName:        r.Locality.StateName,
		CarrierCode:      r.Locality.CarrierCode,
		LocalityCode:     r.Locality.LocalityCode,
		FeeScheduleArea:  r.Locality.FeeScheduleArea,
		ProcedureCode:    r.ProcedureCode,
		Modifier:         r.Modifier,
		Year:             r.Year,
		WorkRVU:          r.RVU.Work.String(),
		PracticeRVU:      r.RVU.PracticeExpense.String(),
		MalpracticeRVU:   r.RVU.Malpractice.String(),
		WorkGPCI:         r.GPCI.Work.String(),
		PracticeGPCI:     r.GPCI.PracticeExpense.String(),
		MalpracticeGPCI:  r.GPCI.Malpractice.String(),
		ConversionFactor: r.ConversionFactor.String(),
		AllowedAmount:    r.Rounded().String(),
	}
}

// RateDTO is the response for a fee-schedule rate lookup.
type RateDTO struct {
	ID            int64  `json:"id"`
	StateCode     string `json:"state_code"`
	ScheduleType  string `json:"schedule_type"`
	ProcedureCode string `json:"procedure_code"`
	Description   string `json:"description,omitempty"`
	Modifier      string `json:"modifier,omitempty"`
	Region        string `json:"region,omitempty"`
	Rate          string `json:"rate"`
	RateUnit      string `json:"rate_unit"`
	IsByReport    bool   `json:"is_by_report"`
	EffectiveDate string `json:"effective_date"`
}

func toRateDTO(v *feeschedule.RateView) RateDTO {
	return RateDTO{
		ID:            v.ID,
		StateCode:     v.StateCode,
		ScheduleType:  v.ScheduleType,
		ProcedureCode: v.ProcedureCode,
		Description:   v.Description,
		Modifier:      v.Modifier,
		Region:        v.Region,
		Rate:          v.Rate.Round(2).String(),
		RateUnit:      v.RateUnit,
		IsByReport:    v.IsByReport,
		EffectiveDate: v.EffectiveDate.Format("2006-01-02"),
	}
}

// StateDTO is a catalog entry for the state picker.
type StateDTO struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	HasRegions bool   `json:"has_regions"`
}

// ProcedureDTO is a catalog entry for the procedure picker.
type ProcedureDTO struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	CodeType    string `json:"code_type"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

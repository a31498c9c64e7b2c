/*
Package fixtures loads a small demo reference dataset.

PURPOSE:
  Enough real-shaped data to exercise both resolution paths end to end
  without the CMS bulk files: one California ZIP with its locality
  chain, GPCI and RVU rows for a handful of common office-visit codes,
  and fee schedules for a statewide state (CA) and a regionalized one
  (NY).

  The values are representative, not authoritative. Production
  deployments load the real CMS and state publications instead.
*/
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
)

// Loader is the write surface a store exposes for bulk reference loads.
// Both store/sqlite and store/postgres satisfy it.
type Loader interface {
	SaveState(ctx context.Context, code, name string, effectiveDate time.Time, hasRegions bool) error
	SaveRegion(ctx context.Context, stateCode, regionType, regionCode, regionName string) (int64, error)
	SaveProcedureCode(ctx context.Context, code, description, codeType string) error
	SaveFeeSchedule(ctx context.Context, sched feeschedule.Schedule) (int64, error)
	SaveRate(ctx context.Context, rate feeschedule.Rate) (int64, error)
	SaveLocality(ctx context.Context, row engine.LocalityMapRow) error
	SaveLocalityMeta(ctx context.Context, row engine.LocalityMetaRow) error
	SaveGPCI(ctx context.Context, row engine.GPCIRow) error
	SaveRVU(ctx context.Context, row engine.RVURow) error
	SaveConversionFactor(ctx context.Context, row engine.ConversionFactorRow) error
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("fixtures: bad decimal literal %q", s))
	}
	return d
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(fmt.Sprintf("fixtures: bad date literal %q", s))
	}
	return t
}

// LoadDemo populates the store with the demo dataset. It is idempotent
// for keyed rows (states, localities, factors) but appends GPCI/RVU and
// schedule rows, so run it against a fresh database.
func LoadDemo(ctx context.Context, l Loader) error {
	if err := loadMedicare(ctx, l); err != nil {
		return fmt.Errorf("load medicare reference: %w", err)
	}
	if err := loadFeeSchedules(ctx, l); err != nil {
		return fmt.Errorf("load fee schedules: %w", err)
	}
	return nil
}

func loadMedicare(ctx context.Context, l Loader) error {
	localities := []engine.LocalityMapRow{
		{ZIPCode: "94110", StateCode: "CA", CarrierCode: "01112", LocalityCode: "05", YearQuarter: "20251"},
		{ZIPCode: "90210", StateCode: "CA", CarrierCode: "01182", LocalityCode: "18", YearQuarter: "20251"},
		{ZIPCode: "10001", StateCode: "NY", CarrierCode: "13202", LocalityCode: "01", YearQuarter: "20251"},
	}
	for _, row := range localities {
		if err := l.SaveLocality(ctx, row); err != nil {
			return err
		}
	}

	metas := []engine.LocalityMetaRow{
		{MACCode: "01112", LocalityCode: "05", StateName: "CALIFORNIA", FeeScheduleArea: "SAN FRANCISCO", Counties: "SAN FRANCISCO"},
		{MACCode: "01182", LocalityCode: "18", StateName: "CALIFORNIA", FeeScheduleArea: "LOS ANGELES", Counties: "LOS ANGELES"},
		{MACCode: "13202", LocalityCode: "01", StateName: "NEW YORK", FeeScheduleArea: "MANHATTAN", Counties: "NEW YORK"},
	}
	for _, row := range metas {
		if err := l.SaveLocalityMeta(ctx, row); err != nil {
			return err
		}
	}

	gpcis := []engine.GPCIRow{
		{LocalityCode: "05", Year: 2025, LocalityName: "SAN FRANCISCO", Work: dec("1.0966"), PracticeExpense: dec("1.4295"), Malpractice: dec("0.6472")},
		{LocalityCode: "18", Year: 2025, LocalityName: "LOS ANGELES", Work: dec("1.0508"), PracticeExpense: dec("1.2034"), Malpractice: dec("0.6823")},
		{LocalityCode: "01", Year: 2025, LocalityName: "MANHATTAN", Work: dec("1.0584"), PracticeExpense: dec("1.2643"), Malpractice: dec("1.3984")},
	}
	for _, row := range gpcis {
		if err := l.SaveGPCI(ctx, row); err != nil {
			return err
		}
	}

	rvus := []engine.RVURow{
		{ProcedureCode: "99213", Modifier: "", Year: 2025, Work: dec("1.30"), PracticeExpense: dec("1.24"), Malpractice: dec("0.10")},
		{ProcedureCode: "99214", Modifier: "", Year: 2025, Work: dec("1.92"), PracticeExpense: dec("1.71"), Malpractice: dec("0.14")},
		{ProcedureCode: "73721", Modifier: "", Year: 2025, Work: dec("1.35"), PracticeExpense: dec("5.40"), Malpractice: dec("0.33")},
		{ProcedureCode: "73721", Modifier: "TC", Year: 2025, Work: dec("0.00"), PracticeExpense: dec("4.52"), Malpractice: dec("0.27")},
		{ProcedureCode: "73721", Modifier: "26", Year: 2025, Work: dec("1.35"), PracticeExpense: dec("0.88"), Malpractice: dec("0.06")},
	}
	for _, row := range rvus {
		if err := l.SaveRVU(ctx, row); err != nil {
			return err
		}
	}

	return l.SaveConversionFactor(ctx, engine.ConversionFactorRow{Year: 2025, Factor: dec("32.35")})
}

func loadFeeSchedules(ctx context.Context, l Loader) error {
	if err := l.SaveState(ctx, "CA", "California", date("2025-01-01"), false); err != nil {
		return err
	}
	if err := l.SaveState(ctx, "NY", "New York", date("2025-01-01"), true); err != nil {
		return err
	}

	procedures := []struct{ code, description, codeType string }{
		{"99213", "Office/outpatient visit, established patient, low complexity", "CPT"},
		{"99214", "Office/outpatient visit, established patient, moderate complexity", "CPT"},
		{"73721", "MRI, lower extremity joint, without contrast", "CPT"},
	}
	for _, p := range procedures {
		if err := l.SaveProcedureCode(ctx, p.code, p.description, p.codeType); err != nil {
			return err
		}
	}

	downstate, err := l.SaveRegion(ctx, "NY", "rate_region", "IV", "Region IV (Downstate)")
	if err != nil {
		return err
	}

	caSchedule, err := l.SaveFeeSchedule(ctx, feeschedule.Schedule{
		StateCode:     "CA",
		ScheduleType:  "physician",
		EffectiveDate: date("2025-01-01"),
		Notes:         "OMFS physician services",
	})
	if err != nil {
		return err
	}
	nySchedule, err := l.SaveFeeSchedule(ctx, feeschedule.Schedule{
		StateCode:     "NY",
		ScheduleType:  "physician",
		EffectiveDate: date("2025-04-01"),
	})
	if err != nil {
		return err
	}

	rates := []feeschedule.Rate{
		{FeeScheduleID: caSchedule, ProcedureCode: "99213", Rate: dec("106.52"), RateUnit: "1", EffectiveDate: date("2025-01-01")},
		{FeeScheduleID: caSchedule, ProcedureCode: "99214", Rate: dec("155.87"), RateUnit: "1", EffectiveDate: date("2025-01-01")},
		{FeeScheduleID: caSchedule, ProcedureCode: "73721", Rate: dec("231.04"), RateUnit: "1", EffectiveDate: date("2025-01-01")},
		{FeeScheduleID: nySchedule, ProcedureCode: "99213", Rate: dec("92.10"), RateUnit: "1", EffectiveDate: date("2025-04-01")},
		{FeeScheduleID: nySchedule, ProcedureCode: "99213", RegionID: &downstate, Rate: dec("104.35"), RateUnit: "1", EffectiveDate: date("2025-04-01")},
	}
	for _, r := range rates {
		if _, err := l.SaveRate(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

/*
Package postgres provides a Postgres-backed implementation of the
reference store interfaces using pgx.

PURPOSE:
  The server deployment of the reference store. Same tables and query
  shapes as store/sqlite; database-level concurrency control replaces
  the embedded store's mutex.

TIMEOUTS & ERRORS:
  Every query runs under a per-call deadline. pgx.ErrNoRows maps to the
  (nil, nil) "absent" convention; everything else surfaces as
  engine.ErrStoreUnavailable. Reads run at the connection default
  isolation (read committed), which is all the engine needs.

SEE ALSO:
  - engine/store.go:  Interface definitions
  - store/sqlite:     Embedded implementation with the full schema notes
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
)

const defaultQueryTimeout = 5 * time.Second

// Store implements the reference store interfaces over a pgx pool.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// New connects to Postgres, pings it, and ensures the schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool, timeout: defaultQueryTimeout}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS state (
		state_code TEXT PRIMARY KEY,
		state_name TEXT NOT NULL,
		effective_date DATE NOT NULL,
		expiration_date DATE,
		has_regions BOOLEAN DEFAULT FALSE,
		data_source TEXT,
		data_url TEXT,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS region (
		id BIGSERIAL PRIMARY KEY,
		state_code TEXT NOT NULL,
		region_type TEXT NOT NULL,
		region_code TEXT NOT NULL,
		region_name TEXT,
		UNIQUE(state_code, region_type, region_code)
	);

	CREATE TABLE IF NOT EXISTS procedure_code (
		procedure_code TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		code_type TEXT NOT NULL,
		category TEXT,
		subcategory TEXT
	);

	CREATE TABLE IF NOT EXISTS fee_schedule (
		id BIGSERIAL PRIMARY KEY,
		state_code TEXT NOT NULL,
		schedule_type TEXT NOT NULL,
		effective_date DATE NOT NULL,
		expiration_date DATE,
		conversion_factor NUMERIC(10,4),
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_fee_schedule_state
		ON fee_schedule(state_code);

	CREATE TABLE IF NOT EXISTS fee_schedule_rate (
		id BIGSERIAL PRIMARY KEY,
		fee_schedule_id BIGINT NOT NULL,
		procedure_code TEXT NOT NULL,
		modifier TEXT NOT NULL DEFAULT '',
		region_id BIGINT,
		rate NUMERIC(10,2) NOT NULL,
		rate_unit TEXT NOT NULL DEFAULT '1',
		is_by_report BOOLEAN DEFAULT FALSE,
		effective_date DATE NOT NULL,
		access_count BIGINT DEFAULT 0,
		last_accessed TIMESTAMPTZ,
		UNIQUE(fee_schedule_id, procedure_code, modifier, region_id)
	);

	CREATE INDEX IF NOT EXISTS idx_rate_procedure
		ON fee_schedule_rate(procedure_code, modifier);

	CREATE TABLE IF NOT EXISTS medicare_locality_map (
		zip_code TEXT PRIMARY KEY,
		state_code TEXT NOT NULL,
		carrier_code TEXT NOT NULL,
		locality_code TEXT NOT NULL,
		year_qtr TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS medicare_locality_meta (
		mac_code TEXT NOT NULL,
		locality_code TEXT NOT NULL,
		state_name TEXT NOT NULL,
		fee_schedule_area TEXT NOT NULL,
		counties TEXT,
		PRIMARY KEY (mac_code, locality_code)
	);

	CREATE TABLE IF NOT EXISTS cms_gpci (
		locality_code TEXT NOT NULL,
		year INT NOT NULL,
		locality_name TEXT NOT NULL DEFAULT '',
		work_gpci NUMERIC(5,4) NOT NULL,
		pe_gpci NUMERIC(5,4) NOT NULL,
		mp_gpci NUMERIC(5,4) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_gpci_locality_year
		ON cms_gpci(locality_code, year);

	CREATE TABLE IF NOT EXISTS cms_rvu (
		procedure_code TEXT NOT NULL,
		modifier TEXT NOT NULL DEFAULT '',
		year INT NOT NULL,
		work_rvu NUMERIC(6,2) NOT NULL,
		pe_rvu NUMERIC(6,2) NOT NULL,
		mp_rvu NUMERIC(6,2) NOT NULL,
		total_rvu NUMERIC(6,2)
	);

	CREATE INDEX IF NOT EXISTS idx_rvu_code_year
		ON cms_rvu(procedure_code, year);

	CREATE TABLE IF NOT EXISTS cms_conversion_factor (
		year INT PRIMARY KEY,
		conversion_factor NUMERIC(10,2) NOT NULL,
		effective_date DATE
	);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Store) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// =============================================================================
// MEDICARE REFERENCE LOOKUPS (engine.ReferenceStore)
// =============================================================================

func (s *Store) LookupLocality(ctx context.Context, zipCode string) (*engine.LocalityMapRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var row engine.LocalityMapRow
	err := s.pool.QueryRow(ctx,
		`SELECT zip_code, state_code, carrier_code, locality_code, year_qtr
		 FROM medicare_locality_map WHERE zip_code = $1`, zipCode,
	).Scan(&row.ZIPCode, &row.StateCode, &row.CarrierCode, &row.LocalityCode, &row.YearQuarter)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &engine.StoreError{Op: "lookup locality", Err: err}
	}
	return &row, nil
}

func (s *Store) LookupLocalityMeta(ctx context.Context, carrierCode, localityCode string) (*engine.LocalityMetaRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var row engine.LocalityMetaRow
	var counties *string
	err := s.pool.QueryRow(ctx,
		`SELECT mac_code, locality_code, state_name, fee_schedule_area, counties
		 FROM medicare_locality_meta WHERE mac_code = $1 AND locality_code = $2`,
		carrierCode, localityCode,
	).Scan(&row.MACCode, &row.LocalityCode, &row.StateName, &row.FeeScheduleArea, &counties)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &engine.StoreError{Op: "lookup locality meta", Err: err}
	}
	if counties != nil {
		row.Counties = *counties
	}
	return &row, nil
}

func (s *Store) LookupGPCI(ctx context.Context, localityCode string, year int) ([]engine.GPCIRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT locality_code, year, locality_name, work_gpci::text, pe_gpci::text, mp_gpci::text
		 FROM cms_gpci WHERE locality_code = $1 AND year = $2`, localityCode, year)
	if err != nil {
		return nil, &engine.StoreError{Op: "lookup gpci", Err: err}
	}
	defer rows.Close()

	var out []engine.GPCIRow
	for rows.Next() {
		var r engine.GPCIRow
		var work, pe, mp string
		if err := rows.Scan(&r.LocalityCode, &r.Year, &r.LocalityName, &work, &pe, &mp); err != nil {
			return nil, &engine.StoreError{Op: "scan gpci", Err: err}
		}
		r.Work = mustDecimal(work)
		r.PracticeExpense = mustDecimal(pe)
		r.Malpractice = mustDecimal(mp)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &engine.StoreError{Op: "lookup gpci", Err: err}
	}
	return out, nil
}

func (s *Store) LookupRVU(ctx context.Context, procedureCode string, year int) ([]engine.RVURow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT procedure_code, modifier, year, work_rvu::text, pe_rvu::text, mp_rvu::text, total_rvu::text
		 FROM cms_rvu WHERE procedure_code = $1 AND year = $2`, procedureCode, year)
	if err != nil {
		return nil, &engine.StoreError{Op: "lookup rvu", Err: err}
	}
	defer rows.Close()

	var out []engine.RVURow
	for rows.Next() {
		var r engine.RVURow
		var work, pe, mp string
		var total *string
		if err := rows.Scan(&r.ProcedureCode, &r.Modifier, &r.Year, &work, &pe, &mp, &total); err != nil {
			return nil, &engine.StoreError{Op: "scan rvu", Err: err}
		}
		r.Work = mustDecimal(work)
		r.PracticeExpense = mustDecimal(pe)
		r.Malpractice = mustDecimal(mp)
		if total != nil {
			d := mustDecimal(*total)
			r.Total = &d
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &engine.StoreError{Op: "lookup rvu", Err: err}
	}
	return out, nil
}

func (s *Store) LookupConversionFactor(ctx context.Context, year int) (*engine.ConversionFactorRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var row engine.ConversionFactorRow
	var factor string
	err := s.pool.QueryRow(ctx,
		`SELECT year, conversion_factor::text FROM cms_conversion_factor WHERE year = $1`, year,
	).Scan(&row.Year, &factor)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &engine.StoreError{Op: "lookup conversion factor", Err: err}
	}
	row.Factor = mustDecimal(factor)
	return &row, nil
}

// =============================================================================
// FEE SCHEDULE RATES (feeschedule.RateStore)
// =============================================================================

func (s *Store) FindRates(ctx context.Context, f feeschedule.Filter) ([]feeschedule.Candidate, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	query := `
		SELECT r.id, r.fee_schedule_id, r.procedure_code, r.modifier, r.region_id,
		       r.rate::text, r.rate_unit, r.is_by_report, r.effective_date, r.access_count,
		       fs.schedule_type, fs.effective_date, fs.state_code,
		       COALESCE(pc.description, ''), COALESCE(rg.region_name, '')
		FROM fee_schedule_rate r
		JOIN fee_schedule fs ON fs.id = r.fee_schedule_id
		LEFT JOIN procedure_code pc ON pc.procedure_code = r.procedure_code
		LEFT JOIN region rg ON rg.id = r.region_id
		WHERE fs.state_code = $1 AND r.procedure_code = $2 AND r.modifier = $3
	`

	rows, err := s.pool.Query(ctx, query, f.StateCode, f.ProcedureCode, f.Modifier)
	if err != nil {
		return nil, &engine.StoreError{Op: "find rates", Err: err}
	}
	defer rows.Close()

	var out []feeschedule.Candidate
	for rows.Next() {
		var c feeschedule.Candidate
		var regionID *int64
		var rate string
		if err := rows.Scan(
			&c.Rate.ID, &c.Rate.FeeScheduleID, &c.Rate.ProcedureCode, &c.Rate.Modifier,
			&regionID, &rate, &c.Rate.RateUnit, &c.Rate.IsByReport, &c.Rate.EffectiveDate,
			&c.Rate.AccessCount, &c.ScheduleType, &c.ScheduleEffectiveDate, &c.StateCode,
			&c.Description, &c.RegionName,
		); err != nil {
			return nil, &engine.StoreError{Op: "scan rate", Err: err}
		}
		c.Rate.RegionID = regionID
		c.Rate.Rate = mustDecimal(rate)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &engine.StoreError{Op: "find rates", Err: err}
	}
	return out, nil
}

func (s *Store) IncrementAccessCount(ctx context.Context, rateID int64) error {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`UPDATE fee_schedule_rate
		 SET access_count = access_count + 1, last_accessed = now()
		 WHERE id = $1`, rateID)
	if err != nil {
		return &engine.StoreError{Op: "increment access count", Err: err}
	}
	return nil
}

// =============================================================================
// CATALOG QUERIES (feeschedule.Catalog)
// =============================================================================

// ListStates returns all states ordered by code.
func (s *Store) ListStates(ctx context.Context) ([]feeschedule.State, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT state_code, state_name, has_regions FROM state ORDER BY state_code`)
	if err != nil {
		return nil, &engine.StoreError{Op: "list states", Err: err}
	}
	defer rows.Close()

	var out []feeschedule.State
	for rows.Next() {
		var st feeschedule.State
		if err := rows.Scan(&st.Code, &st.Name, &st.HasRegions); err != nil {
			return nil, &engine.StoreError{Op: "scan state", Err: err}
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// ListProcedures returns all procedure codes ordered by code.
func (s *Store) ListProcedures(ctx context.Context) ([]feeschedule.Procedure, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT procedure_code, description, code_type FROM procedure_code ORDER BY procedure_code`)
	if err != nil {
		return nil, &engine.StoreError{Op: "list procedures", Err: err}
	}
	defer rows.Close()

	var out []feeschedule.Procedure
	for rows.Next() {
		var p feeschedule.Procedure
		if err := rows.Scan(&p.Code, &p.Description, &p.CodeType); err != nil {
			return nil, &engine.StoreError{Op: "scan procedure", Err: err}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// LOADERS - fixtures/tests only, mirroring store/sqlite
// =============================================================================

func (s *Store) SaveState(ctx context.Context, code, name string, effectiveDate time.Time, hasRegions bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO state (state_code, state_name, effective_date, has_regions)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (state_code) DO UPDATE SET
			state_name = excluded.state_name,
			has_regions = excluded.has_regions`,
		code, name, effectiveDate, hasRegions)
	return err
}

func (s *Store) SaveRegion(ctx context.Context, stateCode, regionType, regionCode, regionName string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO region (state_code, region_type, region_code, region_name)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		stateCode, regionType, regionCode, regionName).Scan(&id)
	return id, err
}

func (s *Store) SaveProcedureCode(ctx context.Context, code, description, codeType string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO procedure_code (procedure_code, description, code_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (procedure_code) DO UPDATE SET
			description = excluded.description,
			code_type = excluded.code_type`,
		code, description, codeType)
	return err
}

func (s *Store) SaveFeeSchedule(ctx context.Context, sched feeschedule.Schedule) (int64, error) {
	var factor *string
	if sched.ConversionFactor != nil {
		f := sched.ConversionFactor.String()
		factor = &f
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO fee_schedule (state_code, schedule_type, effective_date, expiration_date, conversion_factor, notes)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6) RETURNING id`,
		sched.StateCode, sched.ScheduleType, sched.EffectiveDate, sched.ExpirationDate,
		factor, sched.Notes).Scan(&id)
	return id, err
}

func (s *Store) SaveRate(ctx context.Context, rate feeschedule.Rate) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO fee_schedule_rate
		 (fee_schedule_id, procedure_code, modifier, region_id, rate, rate_unit, is_by_report, effective_date)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8) RETURNING id`,
		rate.FeeScheduleID, rate.ProcedureCode, rate.Modifier, rate.RegionID,
		rate.Rate.String(), rate.RateUnit, rate.IsByReport, rate.EffectiveDate).Scan(&id)
	return id, err
}

func (s *Store) SaveLocality(ctx context.Context, row engine.LocalityMapRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO medicare_locality_map (zip_code, state_code, carrier_code, locality_code, year_qtr)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (zip_code) DO UPDATE SET
			state_code = excluded.state_code,
			carrier_code = excluded.carrier_code,
			locality_code = excluded.locality_code,
			year_qtr = excluded.year_qtr`,
		row.ZIPCode, row.StateCode, row.CarrierCode, row.LocalityCode, row.YearQuarter)
	return err
}

func (s *Store) SaveLocalityMeta(ctx context.Context, row engine.LocalityMetaRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO medicare_locality_meta (mac_code, locality_code, state_name, fee_schedule_area, counties)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (mac_code, locality_code) DO UPDATE SET
			state_name = excluded.state_name,
			fee_schedule_area = excluded.fee_schedule_area,
			counties = excluded.counties`,
		row.MACCode, row.LocalityCode, row.StateName, row.FeeScheduleArea, row.Counties)
	return err
}

func (s *Store) SaveGPCI(ctx context.Context, row engine.GPCIRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cms_gpci (locality_code, year, locality_name, work_gpci, pe_gpci, mp_gpci)
		 VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric)`,
		row.LocalityCode, row.Year, row.LocalityName,
		row.Work.String(), row.PracticeExpense.String(), row.Malpractice.String())
	return err
}

func (s *Store) SaveRVU(ctx context.Context, row engine.RVURow) error {
	var total *string
	if row.Total != nil {
		t := row.Total.String()
		total = &t
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO cms_rvu (procedure_code, modifier, year, work_rvu, pe_rvu, mp_rvu, total_rvu)
		 VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric)`,
		row.ProcedureCode, row.Modifier, row.Year,
		row.Work.String(), row.PracticeExpense.String(), row.Malpractice.String(), total)
	return err
}

func (s *Store) SaveConversionFactor(ctx context.Context, row engine.ConversionFactorRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cms_conversion_factor (year, conversion_factor)
		 VALUES ($1, $2::numeric)
		 ON CONFLICT (year) DO UPDATE SET
			conversion_factor = excluded.conversion_factor`,
		row.Year, row.Factor.String())
	return err
}

// Truncate clears every reference table. Test isolation only.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		TRUNCATE state, region, procedure_code, fee_schedule, fee_schedule_rate,
			medicare_locality_map, medicare_locality_meta,
			cms_gpci, cms_rvu, cms_conversion_factor
		RESTART IDENTITY CASCADE`)
	return err
}

// GetAccessCount returns the advisory counter for a rate row.
func (s *Store) GetAccessCount(ctx context.Context, rateID int64) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT access_count FROM fee_schedule_rate WHERE id = $1`, rateID).Scan(&count)
	return count, err
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

/*
Package sqlite provides a SQLite-backed implementation of the reference
store interfaces.

PURPOSE:
  Implements engine.ReferenceStore and feeschedule.RateStore using SQLite.
  The same schema and queries carry to Postgres (store/postgres) with only
  placeholder-style differences.

INTERFACES IMPLEMENTED:
  engine.ReferenceStore:  Medicare reference lookups
  feeschedule.RateStore:  Fee-schedule rate candidates + access counter

READ-ONLY CONTRACT:
  The engine never writes reference rows. The Save* methods exist for
  fixtures and tests, standing in for the external refresh pipeline that
  is out of scope here. The one runtime write is IncrementAccessCount,
  a single atomic UPDATE.

TIMEOUTS:
  Every query runs under a per-call deadline (default 5s). Driver
  failures and timeouts surface as engine.ErrStoreUnavailable via
  engine.StoreError; sql.ErrNoRows is mapped to the (nil, nil) "absent"
  convention, never to a store failure.

KEY TABLES:
  medicare_locality_map / medicare_locality_meta:  ZIP -> locality
  cms_gpci / cms_rvu / cms_conversion_factor:      Index + multiplier data
  state / region / procedure_code:                 Catalog data
  fee_schedule / fee_schedule_rate:                State fee schedules

CONCURRENCY:
  Uses sync.RWMutex for thread-safety under the sqlite driver. The
  Postgres implementation relies on database-level concurrency instead.

WAL MODE:
  SQLite is opened with WAL so concurrent readers never block on the
  advisory counter writes.

SEE ALSO:
  - engine/store.go:     Interface definitions
  - store/postgres:      Server-backed implementation
  - fixtures:            Demo dataset loaded through the Save* methods
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
)

const defaultQueryTimeout = 5 * time.Second

// Store implements the reference store interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	timeout time.Duration
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, timeout: defaultQueryTimeout}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the reference schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS state (
		state_code TEXT PRIMARY KEY,
		state_name TEXT NOT NULL,
		effective_date TEXT NOT NULL,
		expiration_date TEXT,
		has_regions BOOLEAN DEFAULT FALSE,
		data_source TEXT,
		data_url TEXT,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS region (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
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
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		state_code TEXT NOT NULL,
		schedule_type TEXT NOT NULL,
		effective_date TEXT NOT NULL,
		expiration_date TEXT,
		conversion_factor TEXT,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_fee_schedule_state
		ON fee_schedule(state_code);

	CREATE TABLE IF NOT EXISTS fee_schedule_rate (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fee_schedule_id INTEGER NOT NULL,
		procedure_code TEXT NOT NULL,
		modifier TEXT NOT NULL DEFAULT '',
		region_id INTEGER,
		rate TEXT NOT NULL,
		rate_unit TEXT NOT NULL DEFAULT '1',
		is_by_report BOOLEAN DEFAULT FALSE,
		effective_date TEXT NOT NULL,
		access_count INTEGER DEFAULT 0,
		last_accessed TEXT,
		UNIQUE(fee_schedule_id, procedure_code, modifier, region_id)
	);

	-- Hot path: candidate lookup by procedure within a schedule's state
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
		year INTEGER NOT NULL,
		locality_name TEXT NOT NULL DEFAULT '',
		work_gpci TEXT NOT NULL,
		pe_gpci TEXT NOT NULL,
		mp_gpci TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_gpci_locality_year
		ON cms_gpci(locality_code, year);

	CREATE TABLE IF NOT EXISTS cms_rvu (
		procedure_code TEXT NOT NULL,
		modifier TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL,
		work_rvu TEXT NOT NULL,
		pe_rvu TEXT NOT NULL,
		mp_rvu TEXT NOT NULL,
		total_rvu TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_rvu_code_year
		ON cms_rvu(procedure_code, year);

	CREATE TABLE IF NOT EXISTS cms_conversion_factor (
		year INTEGER PRIMARY KEY,
		conversion_factor TEXT NOT NULL,
		effective_date TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// =============================================================================
// MEDICARE REFERENCE LOOKUPS (engine.ReferenceStore)
// =============================================================================

// LookupLocality returns the locality map row for a ZIP, or (nil, nil).
func (s *Store) LookupLocality(ctx context.Context, zipCode string) (*engine.LocalityMapRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var row engine.LocalityMapRow
	err := s.db.QueryRowContext(ctx,
		`SELECT zip_code, state_code, carrier_code, locality_code, year_qtr
		 FROM medicare_locality_map WHERE zip_code = ?`, zipCode,
	).Scan(&row.ZIPCode, &row.StateCode, &row.CarrierCode, &row.LocalityCode, &row.YearQuarter)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &engine.StoreError{Op: "lookup locality", Err: err}
	}
	return &row, nil
}

// LookupLocalityMeta returns the metadata for (carrier, locality), or (nil, nil).
func (s *Store) LookupLocalityMeta(ctx context.Context, carrierCode, localityCode string) (*engine.LocalityMetaRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var row engine.LocalityMetaRow
	var counties sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT mac_code, locality_code, state_name, fee_schedule_area, counties
		 FROM medicare_locality_meta WHERE mac_code = ? AND locality_code = ?`,
		carrierCode, localityCode,
	).Scan(&row.MACCode, &row.LocalityCode, &row.StateName, &row.FeeScheduleArea, &counties)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &engine.StoreError{Op: "lookup locality meta", Err: err}
	}
	row.Counties = counties.String
	return &row, nil
}

// LookupGPCI returns every cost-index row for (locality_code, year).
func (s *Store) LookupGPCI(ctx context.Context, localityCode string, year int) ([]engine.GPCIRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT locality_code, year, locality_name, work_gpci, pe_gpci, mp_gpci
		 FROM cms_gpci WHERE locality_code = ? AND year = ?`, localityCode, year)
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

// LookupRVU returns every relative-value row for (procedure_code, year).
func (s *Store) LookupRVU(ctx context.Context, procedureCode string, year int) ([]engine.RVURow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT procedure_code, modifier, year, work_rvu, pe_rvu, mp_rvu, total_rvu
		 FROM cms_rvu WHERE procedure_code = ? AND year = ?`, procedureCode, year)
	if err != nil {
		return nil, &engine.StoreError{Op: "lookup rvu", Err: err}
	}
	defer rows.Close()

	var out []engine.RVURow
	for rows.Next() {
		var r engine.RVURow
		var work, pe, mp string
		var total sql.NullString
		if err := rows.Scan(&r.ProcedureCode, &r.Modifier, &r.Year, &work, &pe, &mp, &total); err != nil {
			return nil, &engine.StoreError{Op: "scan rvu", Err: err}
		}
		r.Work = mustDecimal(work)
		r.PracticeExpense = mustDecimal(pe)
		r.Malpractice = mustDecimal(mp)
		if total.Valid {
			d := mustDecimal(total.String)
			r.Total = &d
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &engine.StoreError{Op: "lookup rvu", Err: err}
	}
	return out, nil
}

// LookupConversionFactor returns the yearly multiplier, or (nil, nil).
func (s *Store) LookupConversionFactor(ctx context.Context, year int) (*engine.ConversionFactorRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var factor string
	var row engine.ConversionFactorRow
	err := s.db.QueryRowContext(ctx,
		`SELECT year, conversion_factor FROM cms_conversion_factor WHERE year = ?`, year,
	).Scan(&row.Year, &factor)

	if err == sql.ErrNoRows {
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

// FindRates returns all candidate rates for state+procedure+modifier,
// joined with their schedule, region name, and procedure description.
func (s *Store) FindRates(ctx context.Context, f feeschedule.Filter) ([]feeschedule.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	query := `
		SELECT r.id, r.fee_schedule_id, r.procedure_code, r.modifier, r.region_id,
		       r.rate, r.rate_unit, r.is_by_report, r.effective_date, r.access_count,
		       fs.schedule_type, fs.effective_date, fs.state_code,
		       COALESCE(pc.description, ''), COALESCE(rg.region_name, '')
		FROM fee_schedule_rate r
		JOIN fee_schedule fs ON fs.id = r.fee_schedule_id
		LEFT JOIN procedure_code pc ON pc.procedure_code = r.procedure_code
		LEFT JOIN region rg ON rg.id = r.region_id
		WHERE fs.state_code = ? AND r.procedure_code = ? AND r.modifier = ?
	`

	rows, err := s.db.QueryContext(ctx, query, f.StateCode, f.ProcedureCode, f.Modifier)
	if err != nil {
		return nil, &engine.StoreError{Op: "find rates", Err: err}
	}
	defer rows.Close()

	var out []feeschedule.Candidate
	for rows.Next() {
		var c feeschedule.Candidate
		var regionID sql.NullInt64
		var rate, rateDate, schedDate string
		if err := rows.Scan(
			&c.Rate.ID, &c.Rate.FeeScheduleID, &c.Rate.ProcedureCode, &c.Rate.Modifier,
			&regionID, &rate, &c.Rate.RateUnit, &c.Rate.IsByReport, &rateDate,
			&c.Rate.AccessCount, &c.ScheduleType, &schedDate, &c.StateCode,
			&c.Description, &c.RegionName,
		); err != nil {
			return nil, &engine.StoreError{Op: "scan rate", Err: err}
		}
		if regionID.Valid {
			id := regionID.Int64
			c.Rate.RegionID = &id
		}
		c.Rate.Rate = mustDecimal(rate)
		c.Rate.EffectiveDate = parseDate(rateDate)
		c.ScheduleEffectiveDate = parseDate(schedDate)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &engine.StoreError{Op: "find rates", Err: err}
	}
	return out, nil
}

// IncrementAccessCount atomically bumps the advisory usage counter.
// A single UPDATE, never read-modify-write.
func (s *Store) IncrementAccessCount(ctx context.Context, rateID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`UPDATE fee_schedule_rate
		 SET access_count = access_count + 1, last_accessed = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), rateID)
	if err != nil {
		return &engine.StoreError{Op: "increment access count", Err: err}
	}
	return nil
}

// =============================================================================
// CATALOG QUERIES (for the lookup forms)
// =============================================================================

// ListStates returns all states ordered by code.
func (s *Store) ListStates(ctx context.Context) ([]feeschedule.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
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
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
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

// GetAccessCount returns the advisory counter for a rate row.
func (s *Store) GetAccessCount(ctx context.Context, rateID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT access_count FROM fee_schedule_rate WHERE id = ?`, rateID).Scan(&count)
	return count, err
}

// =============================================================================
// LOADERS - stand-in for the external refresh pipeline (fixtures/tests only)
// =============================================================================

// SaveState inserts or replaces a state catalog row.
func (s *Store) SaveState(ctx context.Context, code, name string, effectiveDate time.Time, hasRegions bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state (state_code, state_name, effective_date, has_regions)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(state_code) DO UPDATE SET
			state_name = excluded.state_name,
			has_regions = excluded.has_regions`,
		code, name, effectiveDate.Format(dateLayout), hasRegions)
	return err
}

// SaveRegion inserts a region and returns its ID.
func (s *Store) SaveRegion(ctx context.Context, stateCode, regionType, regionCode, regionName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO region (state_code, region_type, region_code, region_name)
		 VALUES (?, ?, ?, ?)`,
		stateCode, regionType, regionCode, regionName)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SaveProcedureCode inserts or replaces a procedure catalog row.
func (s *Store) SaveProcedureCode(ctx context.Context, code, description, codeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO procedure_code (procedure_code, description, code_type)
		 VALUES (?, ?, ?)
		 ON CONFLICT(procedure_code) DO UPDATE SET
			description = excluded.description,
			code_type = excluded.code_type`,
		code, description, codeType)
	return err
}

// SaveFeeSchedule inserts a fee schedule and returns its ID.
func (s *Store) SaveFeeSchedule(ctx context.Context, sched feeschedule.Schedule) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiration, factor any
	if sched.ExpirationDate != nil {
		expiration = sched.ExpirationDate.Format(dateLayout)
	}
	if sched.ConversionFactor != nil {
		factor = sched.ConversionFactor.String()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO fee_schedule (state_code, schedule_type, effective_date, expiration_date, conversion_factor, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sched.StateCode, sched.ScheduleType, sched.EffectiveDate.Format(dateLayout),
		expiration, factor, sched.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SaveRate inserts a fee-schedule rate and returns its ID.
func (s *Store) SaveRate(ctx context.Context, rate feeschedule.Rate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var regionID any
	if rate.RegionID != nil {
		regionID = *rate.RegionID
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO fee_schedule_rate
		 (fee_schedule_id, procedure_code, modifier, region_id, rate, rate_unit, is_by_report, effective_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rate.FeeScheduleID, rate.ProcedureCode, rate.Modifier, regionID,
		rate.Rate.String(), rate.RateUnit, rate.IsByReport, rate.EffectiveDate.Format(dateLayout))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SaveLocality inserts or replaces a ZIP locality mapping.
func (s *Store) SaveLocality(ctx context.Context, row engine.LocalityMapRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medicare_locality_map (zip_code, state_code, carrier_code, locality_code, year_qtr)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(zip_code) DO UPDATE SET
			state_code = excluded.state_code,
			carrier_code = excluded.carrier_code,
			locality_code = excluded.locality_code,
			year_qtr = excluded.year_qtr`,
		row.ZIPCode, row.StateCode, row.CarrierCode, row.LocalityCode, row.YearQuarter)
	return err
}

// SaveLocalityMeta inserts or replaces locality metadata.
func (s *Store) SaveLocalityMeta(ctx context.Context, row engine.LocalityMetaRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medicare_locality_meta (mac_code, locality_code, state_name, fee_schedule_area, counties)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(mac_code, locality_code) DO UPDATE SET
			state_name = excluded.state_name,
			fee_schedule_area = excluded.fee_schedule_area,
			counties = excluded.counties`,
		row.MACCode, row.LocalityCode, row.StateName, row.FeeScheduleArea, row.Counties)
	return err
}

// SaveGPCI inserts a cost-index row.
func (s *Store) SaveGPCI(ctx context.Context, row engine.GPCIRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cms_gpci (locality_code, year, locality_name, work_gpci, pe_gpci, mp_gpci)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		row.LocalityCode, row.Year, row.LocalityName,
		row.Work.String(), row.PracticeExpense.String(), row.Malpractice.String())
	return err
}

// SaveRVU inserts a relative-value row.
func (s *Store) SaveRVU(ctx context.Context, row engine.RVURow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total any
	if row.Total != nil {
		total = row.Total.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cms_rvu (procedure_code, modifier, year, work_rvu, pe_rvu, mp_rvu, total_rvu)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.ProcedureCode, row.Modifier, row.Year,
		row.Work.String(), row.PracticeExpense.String(), row.Malpractice.String(), total)
	return err
}

// SaveConversionFactor inserts or replaces a yearly multiplier.
func (s *Store) SaveConversionFactor(ctx context.Context, row engine.ConversionFactorRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cms_conversion_factor (year, conversion_factor)
		 VALUES (?, ?)
		 ON CONFLICT(year) DO UPDATE SET
			conversion_factor = excluded.conversion_factor`,
		row.Year, row.Factor.String())
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

const dateLayout = "2006-01-02"

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

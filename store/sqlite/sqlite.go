/*
Package sqlite provides the SQLite-backed implementation of the driver,
shift and leave stores.

PURPOSE:
  One Store implements driver.Store, shift.Store and leave.Store. The
  same patterns apply to PostgreSQL; only minor SQL dialect differences.

KEY TABLES:
  drivers:        the fleet roster
  shifts:         clock-in/clock-out sessions with odometer bounds
  leave_requests: one row per driver per calendar day

INVARIANTS IN THE SCHEMA:
  idx_shifts_one_active:  partial unique index on (driver_id) WHERE
                          status='active' - the database itself rejects
                          a second concurrent shift, surfaced as
                          shift.ErrShiftAlreadyActive.
  idx_leave_driver_date:  unique (driver_id, leave_date), surfaced as
                          leave.ErrDuplicateLeaveDate.

TIME ENCODING:
  Civil times are stored as "2006-01-02 15:04" and dates as
  "2006-01-02". Both sort lexically, so range queries are plain string
  comparisons.

WAL MODE:
  The database is opened with WAL so readers do not block the single
  writer.

SEE ALSO:
  - shift/store.go, leave/store.go, driver/driver.go: contracts
  - store/memory: in-memory twin for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/fleet-payroll/civil"
	"github.com/warp/fleet-payroll/driver"
	"github.com/warp/fleet-payroll/leave"
	"github.com/warp/fleet-payroll/shift"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		hire_date TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		clock_in TEXT NOT NULL,
		clock_out TEXT,
		start_odometer INTEGER NOT NULL,
		end_odometer INTEGER,
		total_distance INTEGER NOT NULL DEFAULT 0,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- The database enforces one active shift per driver.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_active
		ON shifts(driver_id) WHERE status = 'active';

	-- Monthly payroll range scans (hot path).
	CREATE INDEX IF NOT EXISTS idx_shifts_driver_clock_in
		ON shifts(driver_id, clock_in);

	-- Last-completed lookups at clock-in.
	CREATE INDEX IF NOT EXISTS idx_shifts_driver_status_out
		ON shifts(driver_id, status, clock_out DESC);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		leave_date TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		requested_at TEXT NOT NULL,
		decided_at TEXT,
		created_at TEXT NOT NULL
	);

	-- One request per driver per calendar day.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_leave_driver_date
		ON leave_requests(driver_id, leave_date);

	CREATE INDEX IF NOT EXISTS idx_leave_driver_status_date
		ON leave_requests(driver_id, status, leave_date);
	CREATE INDEX IF NOT EXISTS idx_leave_status
		ON leave_requests(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DRIVER STORE (driver.Store interface)
// =============================================================================

func (s *Store) SaveDriver(ctx context.Context, d driver.Driver) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	query := `
		INSERT INTO drivers (id, name, phone, hire_date, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			hire_date = excluded.hire_date,
			active = excluded.active
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Name, nullString(d.Phone), d.HireDate.String(), boolToInt(d.Active),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save driver: %w", err)
	}
	return d.ID, nil
}

func (s *Store) GetDriver(ctx context.Context, id string) (driver.Driver, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, hire_date, active FROM drivers WHERE id = ?`, id)
	d, err := scanDriver(row)
	if errors.Is(err, sql.ErrNoRows) {
		return driver.Driver{}, driver.ErrDriverNotFound
	}
	return d, err
}

func (s *Store) ListDrivers(ctx context.Context) ([]driver.Driver, error) {
	return s.queryDrivers(ctx,
		`SELECT id, name, phone, hire_date, active FROM drivers ORDER BY name`)
}

func (s *Store) ActiveDrivers(ctx context.Context) ([]driver.Driver, error) {
	return s.queryDrivers(ctx,
		`SELECT id, name, phone, hire_date, active FROM drivers WHERE active = 1 ORDER BY name`)
}

func (s *Store) queryDrivers(ctx context.Context, query string, args ...any) ([]driver.Driver, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	var out []driver.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(r rowScanner) (driver.Driver, error) {
	var (
		d        driver.Driver
		phone    sql.NullString
		hireDate string
		active   int
	)
	if err := r.Scan(&d.ID, &d.Name, &phone, &hireDate, &active); err != nil {
		return driver.Driver{}, err
	}
	d.Phone = phone.String
	d.Active = active != 0
	hd, err := civil.ParseDate(hireDate)
	if err != nil {
		return driver.Driver{}, err
	}
	d.HireDate = hd
	return d, nil
}

// =============================================================================
// SHIFT STORE (shift.Store interface)
// =============================================================================

const shiftColumns = `id, driver_id, clock_in, clock_out, start_odometer,
	end_odometer, total_distance, duration_minutes, status`

func (s *Store) ActiveShift(ctx context.Context, driverID string) (shift.Shift, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE driver_id = ? AND status = 'active'`,
		driverID)
	sh, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shift.Shift{}, shift.ErrNoActiveShift
	}
	return sh, err
}

func (s *Store) LastCompletedShift(ctx context.Context, driverID string) (shift.Shift, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts
		 WHERE driver_id = ? AND status = 'completed'
		 ORDER BY clock_out DESC LIMIT 1`,
		driverID)
	sh, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return sh, err
}

func (s *Store) InsertActive(ctx context.Context, sh shift.Shift) (string, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO shifts (id, driver_id, clock_in, start_odometer, status, created_at)
		VALUES (?, ?, ?, ?, 'active', ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		id, sh.DriverID, sh.ClockIn.String(), sh.StartOdometer,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return "", shift.ErrShiftAlreadyActive
		}
		return "", fmt.Errorf("failed to insert shift: %w", err)
	}
	return id, nil
}

func (s *Store) CompleteShift(ctx context.Context, sh shift.Shift) error {
	query := `
		UPDATE shifts
		SET clock_out = ?, end_odometer = ?, total_distance = ?,
		    duration_minutes = ?, status = 'completed'
		WHERE id = ? AND status = 'active'
	`
	res, err := s.db.ExecContext(ctx, query,
		sh.ClockOut.String(), sh.EndOdometer, sh.TotalDistance,
		sh.DurationMinutes, sh.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete shift: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return shift.ErrNoActiveShift
	}
	return nil
}

func (s *Store) ShiftsInRange(ctx context.Context, driverID string, from, to civil.Time) ([]shift.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts
		 WHERE driver_id = ? AND clock_in >= ? AND clock_in < ?
		 ORDER BY clock_in`,
		driverID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var out []shift.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func scanShift(r rowScanner) (shift.Shift, error) {
	var (
		sh          shift.Shift
		clockIn     string
		clockOut    sql.NullString
		endOdometer sql.NullInt64
		status      string
	)
	err := r.Scan(&sh.ID, &sh.DriverID, &clockIn, &clockOut, &sh.StartOdometer,
		&endOdometer, &sh.TotalDistance, &sh.DurationMinutes, &status)
	if err != nil {
		return shift.Shift{}, err
	}

	sh.Status = shift.Status(status)
	sh.EndOdometer = endOdometer.Int64
	if sh.ClockIn, err = civil.ParseTime(clockIn); err != nil {
		return shift.Shift{}, err
	}
	if clockOut.Valid {
		if sh.ClockOut, err = civil.ParseTime(clockOut.String); err != nil {
			return shift.Shift{}, err
		}
	}
	return sh, nil
}

// =============================================================================
// LEAVE STORE (leave.Store interface)
// =============================================================================

const leaveColumns = `id, driver_id, leave_date, leave_type, status, requested_at, decided_at`

func (s *Store) InsertLeave(ctx context.Context, r leave.Request) (string, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO leave_requests
			(id, driver_id, leave_date, leave_type, status, requested_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		id, r.DriverID, r.Date.String(), string(r.Type), string(r.Status),
		r.RequestedAt.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return "", leave.ErrDuplicateLeaveDate
		}
		return "", fmt.Errorf("failed to insert leave request: %w", err)
	}
	return id, nil
}

func (s *Store) GetLeave(ctx context.Context, id string) (leave.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE id = ?`, id)
	r, err := scanLeave(row)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Request{}, leave.ErrLeaveNotFound
	}
	return r, err
}

func (s *Store) DecideLeave(ctx context.Context, r leave.Request) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leave_requests SET status = ?, decided_at = ? WHERE id = ?`,
		string(r.Status), r.DecidedAt.String(), r.ID)
	if err != nil {
		return fmt.Errorf("failed to decide leave request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func (s *Store) LeavesForDriver(ctx context.Context, driverID string) ([]leave.Request, error) {
	return s.queryLeaves(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE driver_id = ? ORDER BY leave_date`,
		driverID)
}

func (s *Store) PendingLeaves(ctx context.Context) ([]leave.Request, error) {
	return s.queryLeaves(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE status = 'pending' ORDER BY leave_date`)
}

func (s *Store) ApprovedLeavesInMonth(ctx context.Context, driverID string, year int, month time.Month) ([]leave.Request, error) {
	from, to := monthDateBounds(year, month)
	return s.queryLeaves(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests
		 WHERE driver_id = ? AND status = 'approved'
		   AND leave_date >= ? AND leave_date < ?
		 ORDER BY leave_date`,
		driverID, from, to)
}

func (s *Store) AnnualApprovedCount(ctx context.Context, driverID string, year int) (int, error) {
	return s.countAnnualApproved(ctx, driverID,
		fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
}

func (s *Store) AnnualApprovedCountBefore(ctx context.Context, driverID string, year int, month time.Month) (int, error) {
	monthStart, _ := monthDateBounds(year, month)
	return s.countAnnualApproved(ctx, driverID, fmt.Sprintf("%04d-01-01", year), monthStart)
}

func (s *Store) countAnnualApproved(ctx context.Context, driverID, from, to string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leave_requests
		 WHERE driver_id = ? AND status = 'approved' AND leave_type = 'annual'
		   AND leave_date >= ? AND leave_date < ?`,
		driverID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count annual leaves: %w", err)
	}
	return count, nil
}

func (s *Store) queryLeaves(ctx context.Context, query string, args ...any) ([]leave.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var out []leave.Request
	for rows.Next() {
		r, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanLeave(r rowScanner) (leave.Request, error) {
	var (
		req         leave.Request
		date        string
		typ         string
		status      string
		requestedAt string
		decidedAt   sql.NullString
	)
	err := r.Scan(&req.ID, &req.DriverID, &date, &typ, &status, &requestedAt, &decidedAt)
	if err != nil {
		return leave.Request{}, err
	}

	req.Type = leave.Type(typ)
	req.Status = leave.Status(status)
	if req.Date, err = civil.ParseDate(date); err != nil {
		return leave.Request{}, err
	}
	if req.RequestedAt, err = civil.ParseTime(requestedAt); err != nil {
		return leave.Request{}, err
	}
	if decidedAt.Valid {
		if req.DecidedAt, err = civil.ParseTime(decidedAt.String); err != nil {
			return leave.Request{}, err
		}
	}
	return req, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// monthDateBounds returns [first of month, first of next month) as
// lexically comparable date strings.
func monthDateBounds(year int, month time.Month) (from, to string) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start.Format(civil.DateLayout), start.AddDate(0, 1, 0).Format(civil.DateLayout)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Compile-time interface checks.
var (
	_ driver.Store = (*Store)(nil)
	_ shift.Store  = (*Store)(nil)
	_ leave.Store  = (*Store)(nil)
)

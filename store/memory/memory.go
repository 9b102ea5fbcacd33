// Package memory provides an in-memory implementation of the driver,
// shift and leave stores, for tests and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/fleet-payroll/civil"
	"github.com/warp/fleet-payroll/driver"
	"github.com/warp/fleet-payroll/leave"
	"github.com/warp/fleet-payroll/shift"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Store keeps everything behind one RWMutex. Uniqueness checks run under
// the write lock, which makes InsertActive and InsertLeave atomic against
// their invariants just like the SQLite constraints.
type Store struct {
	mu      sync.RWMutex
	drivers map[string]driver.Driver
	shifts  map[string]shift.Shift
	leaves  map[string]leave.Request
}

func New() *Store {
	return &Store{
		drivers: make(map[string]driver.Driver),
		shifts:  make(map[string]shift.Shift),
		leaves:  make(map[string]leave.Request),
	}
}

// -----------------------------------------------------------------------------
// driver.Store
// -----------------------------------------------------------------------------

func (m *Store) SaveDriver(_ context.Context, d driver.Driver) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	m.drivers[d.ID] = d
	return d.ID, nil
}

func (m *Store) GetDriver(_ context.Context, id string) (driver.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return driver.Driver{}, driver.ErrDriverNotFound
	}
	return d, nil
}

func (m *Store) ListDrivers(_ context.Context) ([]driver.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]driver.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) ActiveDrivers(_ context.Context) ([]driver.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []driver.Driver
	for _, d := range m.drivers {
		if d.Active {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// -----------------------------------------------------------------------------
// shift.Store
// -----------------------------------------------------------------------------

func (m *Store) ActiveShift(_ context.Context, driverID string) (shift.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.shifts {
		if s.DriverID == driverID && s.IsActive() {
			return s, nil
		}
	}
	return shift.Shift{}, shift.ErrNoActiveShift
}

func (m *Store) LastCompletedShift(_ context.Context, driverID string) (shift.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last shift.Shift
	found := false
	for _, s := range m.shifts {
		if s.DriverID != driverID || !s.IsCompleted() {
			continue
		}
		if !found || s.ClockOut.After(last.ClockOut) {
			last = s
			found = true
		}
	}
	if !found {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return last, nil
}

func (m *Store) InsertActive(_ context.Context, s shift.Shift) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.shifts {
		if existing.DriverID == s.DriverID && existing.IsActive() {
			return "", shift.ErrShiftAlreadyActive
		}
	}
	s.ID = uuid.NewString()
	s.Status = shift.StatusActive
	m.shifts[s.ID] = s
	return s.ID, nil
}

func (m *Store) CompleteShift(_ context.Context, s shift.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.shifts[s.ID]
	if !ok {
		return shift.ErrShiftNotFound
	}
	if !existing.IsActive() {
		return shift.ErrNoActiveShift
	}
	m.shifts[s.ID] = s
	return nil
}

func (m *Store) ShiftsInRange(_ context.Context, driverID string, from, to civil.Time) ([]shift.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []shift.Shift
	for _, s := range m.shifts {
		if s.DriverID != driverID {
			continue
		}
		if s.ClockIn.Before(from) || !s.ClockIn.Before(to) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockIn.Before(out[j].ClockIn) })
	return out, nil
}

// -----------------------------------------------------------------------------
// leave.Store
// -----------------------------------------------------------------------------

func (m *Store) InsertLeave(_ context.Context, r leave.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.leaves {
		if existing.DriverID == r.DriverID && existing.Date == r.Date {
			return "", leave.ErrDuplicateLeaveDate
		}
	}
	r.ID = uuid.NewString()
	m.leaves[r.ID] = r
	return r.ID, nil
}

func (m *Store) GetLeave(_ context.Context, id string) (leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.leaves[id]
	if !ok {
		return leave.Request{}, leave.ErrLeaveNotFound
	}
	return r, nil
}

func (m *Store) DecideLeave(_ context.Context, r leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leaves[r.ID]; !ok {
		return leave.ErrLeaveNotFound
	}
	m.leaves[r.ID] = r
	return nil
}

func (m *Store) LeavesForDriver(_ context.Context, driverID string) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Request
	for _, r := range m.leaves {
		if r.DriverID == driverID {
			out = append(out, r)
		}
	}
	sortLeaves(out)
	return out, nil
}

func (m *Store) PendingLeaves(_ context.Context) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Request
	for _, r := range m.leaves {
		if r.IsPending() {
			out = append(out, r)
		}
	}
	sortLeaves(out)
	return out, nil
}

func (m *Store) ApprovedLeavesInMonth(_ context.Context, driverID string, year int, month time.Month) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Request
	for _, r := range m.leaves {
		if r.DriverID == driverID && r.Status == leave.StatusApproved &&
			r.Date.Year == year && r.Date.Month == month {
			out = append(out, r)
		}
	}
	sortLeaves(out)
	return out, nil
}

func (m *Store) AnnualApprovedCount(_ context.Context, driverID string, year int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.leaves {
		if r.DriverID == driverID && r.Status == leave.StatusApproved &&
			r.Type == leave.TypeAnnual && r.Date.Year == year {
			count++
		}
	}
	return count, nil
}

func (m *Store) AnnualApprovedCountBefore(_ context.Context, driverID string, year int, month time.Month) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.leaves {
		if r.DriverID == driverID && r.Status == leave.StatusApproved &&
			r.Type == leave.TypeAnnual && r.Date.Year == year && r.Date.Month < month {
			count++
		}
	}
	return count, nil
}

func sortLeaves(rs []leave.Request) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Date.Before(rs[j].Date) })
}

// Compile-time interface checks.
var (
	_ driver.Store = (*Store)(nil)
	_ shift.Store  = (*Store)(nil)
	_ leave.Store  = (*Store)(nil)
)

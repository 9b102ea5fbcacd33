/*
lifecycle.go - Clock-in/clock-out state machine

PURPOSE:
  Enforces the shift invariants at the single point where shifts are
  created and completed:

  ClockIn:  rejects negative odometers, a second concurrent shift, and
            odometer regression against the last completed shift.
  ClockOut: rejects a missing active shift and an end reading below the
            shift's start; derives distance and duration on success.

ATOMICITY:
  The check-then-create sequence is serialized per driver with a keyed
  mutex, so two concurrent clock-ins for the same driver cannot both
  pass the active-shift check. The store's unique constraint enforces
  the same invariant at the persistence layer, which also covers
  multi-process deployments.

TIME:
  All timestamps come from the injected civil.Clock, which reads the
  single configured operating timezone. Overtime rules downstream depend
  on these being local wall-clock values.
*/
package shift

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/warp/fleet-payroll/civil"
)

// =============================================================================
// LIFECYCLE - The only writer of shift state
// =============================================================================

// Lifecycle drives shifts through NoActiveShift -> Active -> NoActiveShift.
type Lifecycle struct {
	store Store
	clock civil.Clock

	mu      sync.Mutex
	drivers map[string]*sync.Mutex
}

// NewLifecycle creates a lifecycle over the given store and clock.
func NewLifecycle(store Store, clock civil.Clock) *Lifecycle {
	return &Lifecycle{
		store:   store,
		clock:   clock,
		drivers: make(map[string]*sync.Mutex),
	}
}

// driverLock returns the mutex serializing operations for one driver.
func (l *Lifecycle) driverLock(driverID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.drivers[driverID]
	if !ok {
		m = &sync.Mutex{}
		l.drivers[driverID] = m
	}
	return m
}

// ClockIn opens a new active shift for the driver.
//
// Fails with ErrInvalidOdometer for a negative reading,
// ErrShiftAlreadyActive if a shift is already open, and
// ErrOdometerRegression if the reading is below the last completed end.
func (l *Lifecycle) ClockIn(ctx context.Context, driverID string, startOdometer int64) (Shift, error) {
	if startOdometer < 0 {
		return Shift{}, fmt.Errorf("start odometer %d: %w", startOdometer, ErrInvalidOdometer)
	}

	lock := l.driverLock(driverID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := l.store.ActiveShift(ctx, driverID); err == nil {
		return Shift{}, ErrShiftAlreadyActive
	} else if !errors.Is(err, ErrNoActiveShift) {
		return Shift{}, err
	}

	last, err := l.store.LastCompletedShift(ctx, driverID)
	switch {
	case err == nil:
		if startOdometer < last.EndOdometer {
			return Shift{}, &RegressionError{
				DriverID:  driverID,
				Requested: startOdometer,
				LastEnd:   last.EndOdometer,
			}
		}
	case errors.Is(err, ErrShiftNotFound):
		// First shift ever for this driver.
	default:
		return Shift{}, err
	}

	s := Shift{
		DriverID:      driverID,
		ClockIn:       l.clock.Now(),
		StartOdometer: startOdometer,
		Status:        StatusActive,
	}

	id, err := l.store.InsertActive(ctx, s)
	if err != nil {
		return Shift{}, err
	}
	s.ID = id
	return s, nil
}

// ClockOut completes the driver's active shift.
//
// Fails with ErrNoActiveShift when none is open and ErrInvalidOdometer
// when the end reading is below the shift's start reading. On success
// the shift is completed with derived distance and duration; duration
// and distance are never negative given the checks here and at clock-in.
func (l *Lifecycle) ClockOut(ctx context.Context, driverID string, endOdometer int64) (Shift, error) {
	lock := l.driverLock(driverID)
	lock.Lock()
	defer lock.Unlock()

	active, err := l.store.ActiveShift(ctx, driverID)
	if err != nil {
		return Shift{}, err
	}

	if endOdometer < active.StartOdometer {
		return Shift{}, fmt.Errorf("end odometer %d below start %d: %w",
			endOdometer, active.StartOdometer, ErrInvalidOdometer)
	}

	now := l.clock.Now()

	active.ClockOut = now
	active.EndOdometer = endOdometer
	active.TotalDistance = endOdometer - active.StartOdometer
	active.DurationMinutes = now.MinutesSince(active.ClockIn)
	active.Status = StatusCompleted

	if err := l.store.CompleteShift(ctx, active); err != nil {
		return Shift{}, err
	}
	return active, nil
}

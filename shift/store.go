package shift

import (
	"context"

	"github.com/warp/fleet-payroll/civil"
)

// =============================================================================
// STORE - Persistence contract for shifts
// =============================================================================

// Store persists shifts. The Lifecycle is the only writer; the payroll
// engine reads through ShiftsInRange and never mutates.
//
// InsertActive must be atomic against the one-active-shift-per-driver
// invariant: if an active shift already exists for the driver, the insert
// fails with ErrShiftAlreadyActive. The SQLite implementation enforces
// this with a partial unique index; the memory implementation with its
// mutex.
type Store interface {
	// ActiveShift returns the driver's active shift, or ErrNoActiveShift.
	ActiveShift(ctx context.Context, driverID string) (Shift, error)

	// LastCompletedShift returns the driver's most recently completed
	// shift (by clock-out), or ErrShiftNotFound when none exists.
	LastCompletedShift(ctx context.Context, driverID string) (Shift, error)

	// InsertActive persists a new active shift and returns its ID.
	InsertActive(ctx context.Context, s Shift) (string, error)

	// CompleteShift persists the clock-out fields of s in one write.
	// Fails with ErrNoActiveShift if the shift is not active anymore.
	CompleteShift(ctx context.Context, s Shift) error

	// ShiftsInRange returns the driver's shifts whose clock-in falls in
	// the half-open interval [from, to), ordered by clock-in.
	ShiftsInRange(ctx context.Context, driverID string, from, to civil.Time) ([]Shift, error)
}

/*
errors.go - Error taxonomy for shift operations

ERROR CATEGORIES:
  1. Validation errors - bad input, rejected before any state change
  2. Conflict errors   - rejected after a consistency check against
                         current state (already active, regression, none
                         active)
  3. Not-found errors  - unknown shift or driver

All are recoverable by the caller. A failed operation never leaves a
shift partially updated.
*/
package shift

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidOdometer is returned for a negative start reading or an
	// end reading below the active shift's start reading.
	ErrInvalidOdometer = errors.New("invalid odometer reading")

	// ErrShiftAlreadyActive is returned when clocking in while a shift
	// is already active for the driver.
	ErrShiftAlreadyActive = errors.New("shift already active")

	// ErrOdometerRegression is returned when a new shift would start
	// below the driver's last completed end reading.
	ErrOdometerRegression = errors.New("odometer regression")

	// ErrNoActiveShift is returned when clocking out without an active shift.
	ErrNoActiveShift = errors.New("no active shift")

	// ErrShiftNotFound is returned when a referenced shift does not exist.
	ErrShiftNotFound = errors.New("shift not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RegressionError reports the readings involved in an odometer regression.
type RegressionError struct {
	DriverID  string
	Requested int64
	LastEnd   int64
}

func (e *RegressionError) Error() string {
	return fmt.Sprintf("odometer regression for driver %s: start %d below last completed end %d",
		e.DriverID, e.Requested, e.LastEnd)
}

func (e *RegressionError) Unwrap() error { return ErrOdometerRegression }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true for input errors rejected before any state change.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidOdometer)
}

// IsConflict returns true for errors caused by the driver's current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrShiftAlreadyActive) ||
		errors.Is(err, ErrOdometerRegression) ||
		errors.Is(err, ErrNoActiveShift)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound)
}

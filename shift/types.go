/*
Package shift implements the driver shift lifecycle.

PURPOSE:
  A shift is one clock-in-to-clock-out work session with odometer bounds.
  This package owns all shift mutation: the Lifecycle state machine is
  the only writer, and it enforces the two structural invariants the
  payroll engine depends on:

  1. At most one active shift per driver at any instant.
  2. Odometer continuity: end >= start within a shift, and the start of
     a new shift never regresses below the previous completed end.

STATE MACHINE:
  NoActiveShift --ClockIn--> Active --ClockOut--> NoActiveShift

  A driver cycles indefinitely. Completed shifts are immutable; admin
  corrections happen outside this package.

SEE ALSO:
  - lifecycle.go: the state machine itself
  - store.go: persistence contract
  - payroll/engine.go: read-only consumer of completed shifts
*/
package shift

import "github.com/warp/fleet-payroll/civil"

// =============================================================================
// SHIFT - One clock-in-to-clock-out work session
// =============================================================================

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Shift records one work session. ClockOut, EndOdometer, TotalDistance and
// DurationMinutes are only meaningful once Status is completed.
type Shift struct {
	ID       string
	DriverID string

	ClockIn  civil.Time
	ClockOut civil.Time // zero while active

	StartOdometer int64
	EndOdometer   int64

	TotalDistance   int64 // derived: EndOdometer - StartOdometer
	DurationMinutes int   // derived: ClockOut - ClockIn in whole minutes

	Status Status
}

func (s Shift) IsActive() bool    { return s.Status == StatusActive }
func (s Shift) IsCompleted() bool { return s.Status == StatusCompleted }

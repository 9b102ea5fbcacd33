/*
Package leave implements leave requests and the approval workflow.

PURPOSE:
  A leave request covers one calendar day for one driver. Requests are
  created pending and transition exactly once to approved or rejected;
  the decision is terminal. Approved annual leaves feed the payroll
  engine's paid/unpaid classification (12 paid annual days per calendar
  year, chronological order decides which days fall beyond the
  allowance).

UNIQUENESS:
  One request per driver per date, regardless of type or status. The
  stores enforce this and surface ErrDuplicateLeaveDate on conflict.

SEE ALSO:
  - service.go: submit/approve/reject operations
  - store.go: persistence contract and payroll queries
  - payroll/engine.go: consumes approved leaves
*/
package leave

import (
	"errors"

	"github.com/warp/fleet-payroll/civil"
)

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type Type string

const (
	TypeAnnual Type = "annual"
	TypeSick   Type = "sick"
	TypeCasual Type = "casual"
)

// KnownType reports whether t is one of the accepted leave types.
func KnownType(t Type) bool {
	switch t {
	case TypeAnnual, TypeSick, TypeCasual:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is one driver's leave request for one calendar day.
type Request struct {
	ID       string
	DriverID string
	Date     civil.Date
	Type     Type
	Status   Status

	RequestedAt civil.Time
	DecidedAt   civil.Time // zero while pending
}

func (r Request) IsPending() bool { return r.Status == StatusPending }

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDuplicateLeaveDate is returned when the driver already has a
	// request for the date.
	ErrDuplicateLeaveDate = errors.New("leave already requested for date")

	// ErrUnknownLeaveType is returned for a type outside the accepted set.
	ErrUnknownLeaveType = errors.New("unknown leave type")

	// ErrInvalidLeaveDate is returned for a zero or malformed date.
	ErrInvalidLeaveDate = errors.New("invalid leave date")

	// ErrLeaveNotFound is returned when a referenced request does not exist.
	ErrLeaveNotFound = errors.New("leave request not found")

	// ErrAlreadyDecided is returned when approving or rejecting a request
	// that is no longer pending. Decisions are terminal.
	ErrAlreadyDecided = errors.New("leave request already decided")
)

// IsValidation returns true for input errors rejected before any state change.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnknownLeaveType) || errors.Is(err, ErrInvalidLeaveDate)
}

// IsConflict returns true for errors caused by the request's current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateLeaveDate) || errors.Is(err, ErrAlreadyDecided)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeaveNotFound)
}

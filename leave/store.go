package leave

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Persistence contract for leave requests
// =============================================================================

// Store persists leave requests and answers the queries the payroll
// engine needs. The engine never writes.
//
// AnnualApprovedCountBefore exists because the unpaid classification is
// order-dependent: a month's annual leaves take their chronological
// ordinal within the whole year, so the engine needs to know how many
// approved annual days precede the month.
type Store interface {
	// InsertLeave persists a new request and returns its ID. Fails with
	// ErrDuplicateLeaveDate if the driver already has one for the date.
	InsertLeave(ctx context.Context, r Request) (string, error)

	// GetLeave returns the request, or ErrLeaveNotFound.
	GetLeave(ctx context.Context, id string) (Request, error)

	// DecideLeave sets the terminal status of a pending request.
	// Fails with ErrLeaveNotFound or, via the service check, the request
	// may already be decided.
	DecideLeave(ctx context.Context, r Request) error

	// LeavesForDriver returns all of a driver's requests, ordered by date.
	LeavesForDriver(ctx context.Context, driverID string) ([]Request, error)

	// PendingLeaves returns all pending requests, ordered by date.
	PendingLeaves(ctx context.Context) ([]Request, error)

	// ApprovedLeavesInMonth returns the driver's approved requests of any
	// type dated within the month, ordered by date.
	ApprovedLeavesInMonth(ctx context.Context, driverID string, year int, month time.Month) ([]Request, error)

	// AnnualApprovedCount returns the number of approved annual-type
	// requests dated within the calendar year.
	AnnualApprovedCount(ctx context.Context, driverID string, year int) (int, error)

	// AnnualApprovedCountBefore returns the number of approved annual-type
	// requests dated within the year but before the first of the month.
	AnnualApprovedCountBefore(ctx context.Context, driverID string, year int, month time.Month) (int, error)
}

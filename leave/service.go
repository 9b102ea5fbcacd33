package leave

import (
	"context"
	"fmt"

	"github.com/warp/fleet-payroll/civil"
)

// =============================================================================
// SERVICE - Submit / approve / reject workflow
// =============================================================================

// Service owns leave request state transitions.
type Service struct {
	store Store
	clock civil.Clock
}

func NewService(store Store, clock civil.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// Submit creates a pending request for one calendar day.
func (s *Service) Submit(ctx context.Context, driverID string, date civil.Date, typ Type) (Request, error) {
	if !KnownType(typ) {
		return Request{}, fmt.Errorf("%q: %w", typ, ErrUnknownLeaveType)
	}
	if date.IsZero() {
		return Request{}, ErrInvalidLeaveDate
	}

	r := Request{
		DriverID:    driverID,
		Date:        date,
		Type:        typ,
		Status:      StatusPending,
		RequestedAt: s.clock.Now(),
	}

	id, err := s.store.InsertLeave(ctx, r)
	if err != nil {
		return Request{}, err
	}
	r.ID = id
	return r, nil
}

// Approve moves a pending request to approved. Terminal.
func (s *Service) Approve(ctx context.Context, id string) (Request, error) {
	return s.decide(ctx, id, StatusApproved)
}

// Reject moves a pending request to rejected. Terminal.
func (s *Service) Reject(ctx context.Context, id string) (Request, error) {
	return s.decide(ctx, id, StatusRejected)
}

func (s *Service) decide(ctx context.Context, id string, status Status) (Request, error) {
	r, err := s.store.GetLeave(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !r.IsPending() {
		return Request{}, fmt.Errorf("request %s is %s: %w", id, r.Status, ErrAlreadyDecided)
	}

	r.Status = status
	r.DecidedAt = s.clock.Now()

	if err := s.store.DecideLeave(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

// Package driver holds the driver roster consumed by the shift lifecycle
// and the payroll aggregator.
package driver

import (
	"context"
	"errors"

	"github.com/warp/fleet-payroll/civil"
)

// Driver is a member of the fleet roster. Payroll is computed for active
// drivers only; deactivated drivers keep their history.
type Driver struct {
	ID       string
	Name     string
	Phone    string
	HireDate civil.Date
	Active   bool
}

// ErrDriverNotFound is returned when a referenced driver does not exist.
var ErrDriverNotFound = errors.New("driver not found")

// Store persists the driver roster.
type Store interface {
	// SaveDriver inserts or updates a driver. A blank ID is assigned one.
	SaveDriver(ctx context.Context, d Driver) (string, error)

	// GetDriver returns the driver, or ErrDriverNotFound.
	GetDriver(ctx context.Context, id string) (Driver, error)

	// ListDrivers returns the full roster.
	ListDrivers(ctx context.Context) ([]Driver, error)

	// ActiveDrivers returns drivers currently on the payroll.
	ActiveDrivers(ctx context.Context) ([]Driver, error)
}

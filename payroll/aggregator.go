/*
aggregator.go - Fleet-wide and year-to-date payroll rollups

PURPOSE:
  Composes Engine results across drivers (monthly summary) and across
  months (year-to-date). The aggregator never retries and never
  partially commits: a failed driver computation is recorded on its own
  entry so the rest of the batch survives.

CONCURRENCY:
  The engine is read-only, so per-driver computations run concurrently
  under a bounded errgroup. The batch is bounded work, not a stream.
*/
package payroll

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/warp/fleet-payroll/civil"
	"github.com/warp/fleet-payroll/driver"
	"github.com/warp/fleet-payroll/leave"
)

// defaultWorkers bounds concurrent per-driver computations in a batch.
const defaultWorkers = 8

// =============================================================================
// AGGREGATOR
// =============================================================================

// DriverPayroll pairs a driver with their computed result. Err is set
// when that driver's computation failed; the rest of the batch is
// unaffected.
type DriverPayroll struct {
	Driver driver.Driver
	Result Result
	Err    error
}

// Aggregator runs the engine across the active roster.
type Aggregator struct {
	drivers driver.Store
	leaves  leave.Store
	engine  *Engine
	clock   civil.Clock
	workers int
}

func NewAggregator(drivers driver.Store, leaves leave.Store, engine *Engine, clock civil.Clock) *Aggregator {
	return &Aggregator{
		drivers: drivers,
		leaves:  leaves,
		engine:  engine,
		clock:   clock,
		workers: defaultWorkers,
	}
}

// MonthlySummary computes one result per active driver for year/month.
// Entry order follows the roster. A store failure listing the roster is
// returned as-is; per-driver failures land on the entries.
func (a *Aggregator) MonthlySummary(ctx context.Context, year int, month time.Month) ([]DriverPayroll, error) {
	if err := ValidatePeriod(year, month); err != nil {
		return nil, err
	}

	roster, err := a.drivers.ActiveDrivers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]DriverPayroll, len(roster))
	g := new(errgroup.Group)
	g.SetLimit(a.workers)
	for i, d := range roster {
		i, d := i, d
		g.Go(func() error {
			res, err := a.engine.ComputeMonth(ctx, d.ID, year, month)
			entries[i] = DriverPayroll{Driver: d, Result: res, Err: err}
			return nil
		})
	}
	g.Wait()

	return entries, nil
}

// YearToDate computes the year-to-date rollup for every active driver:
// January through the current month for the current year, through
// December for a past year. A future year is rejected.
func (a *Aggregator) YearToDate(ctx context.Context, year int) ([]DriverPayroll, error) {
	last, err := a.lastMonthOf(year)
	if err != nil {
		return nil, err
	}

	roster, err := a.drivers.ActiveDrivers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]DriverPayroll, len(roster))
	g := new(errgroup.Group)
	g.SetLimit(a.workers)
	for i, d := range roster {
		i, d := i, d
		g.Go(func() error {
			res, err := a.yearToDateDriver(ctx, d.ID, year, last)
			entries[i] = DriverPayroll{Driver: d, Result: res, Err: err}
			return nil
		})
	}
	g.Wait()

	return entries, nil
}

// DriverYearToDate computes the year-to-date rollup for one driver.
func (a *Aggregator) DriverYearToDate(ctx context.Context, driverID string, year int) (Result, error) {
	last, err := a.lastMonthOf(year)
	if err != nil {
		return Result{}, err
	}
	return a.yearToDateDriver(ctx, driverID, year, last)
}

func (a *Aggregator) lastMonthOf(year int) (time.Month, error) {
	now := a.clock.Now()
	switch {
	case year > now.Year():
		return 0, ErrInvalidPeriod
	case year == now.Year():
		return now.Month(), nil
	default:
		return time.December, nil
	}
}

// yearToDateDriver sums monthly results field-by-field through last.
// The annual leave counters come from the single year query rather than
// the monthly sums, so they are not double counted.
func (a *Aggregator) yearToDateDriver(ctx context.Context, driverID string, year int, last time.Month) (Result, error) {
	total := Result{DriverID: driverID, Year: year, Month: last}
	for m := time.January; m <= last; m++ {
		r, err := a.engine.ComputeMonth(ctx, driverID, year, m)
		if err != nil {
			return Result{}, err
		}
		total = total.Add(r)
	}

	annual, err := a.leaves.AnnualApprovedCount(ctx, driverID, year)
	if err != nil {
		return Result{}, err
	}
	total.AnnualLeavesUsed = annual
	total.AnnualLeavesRemaining = a.engine.Config().AnnualLeaveAllowance - annual
	if total.AnnualLeavesRemaining < 0 {
		total.AnnualLeavesRemaining = 0
	}
	return total, nil
}

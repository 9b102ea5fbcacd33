/*
Package payroll derives monthly pay from shifts and approved leave.

PURPOSE:
  The Engine converts one driver's completed shifts for a calendar month
  plus their approved leave into a gross-pay breakdown:

    gross = adjusted base salary + overtime pay + fuel allowance

OVERTIME RULES (local wall-clock):
  - Sunday shifts: the entire duration is overtime.
  - Weekdays/Saturdays: minutes before 08:00 (early component) and
    minutes at or after 20:00 (late component) are overtime; the rest
    is regular time.

LEAVE RULES:
  - 12 paid annual leave days per calendar year, consumed in
    chronological order. An approved annual leave whose ordinal within
    the year exceeds the allowance is unpaid and deducts one daily
    salary (base / 30, fixed divisor) from the month's base.
  - Sick and casual leave never deduct.

PRECISION:
  Minutes are integers; money is decimal.Decimal at full precision.
  Rounding to 2 decimal places happens only at the point of output
  (Result.Rounded()).

The engine is stateless and read-only: it holds store interfaces
injected at construction and never mutates anything, so computations
for different drivers or months can run concurrently.

SEE ALSO:
  - aggregator.go: fleet-wide and year-to-date rollups
  - shift/lifecycle.go: producer of the shifts read here
*/
package payroll

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/fleet-payroll/civil"
	"github.com/warp/fleet-payroll/leave"
	"github.com/warp/fleet-payroll/shift"
)

// Overtime boundaries, in minutes from midnight local time.
const (
	morningBoundaryMin = 8 * 60  // 08:00
	eveningBoundaryMin = 20 * 60 // 20:00
)

var minutesPerHour = decimal.NewFromInt(60)

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes monthly payroll. Construct once and share; all methods
// are safe for concurrent use.
type Engine struct {
	shifts shift.Store
	leaves leave.Store
	cfg    Config
}

func NewEngine(shifts shift.Store, leaves leave.Store, cfg Config) *Engine {
	return &Engine{shifts: shifts, leaves: leaves, cfg: cfg}
}

// Config returns the pay rates the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// ComputeMonth produces the driver's payroll breakdown for year/month.
// An empty month is the degenerate case, not an error: the result still
// carries the full base salary and zero shift totals.
func (e *Engine) ComputeMonth(ctx context.Context, driverID string, year int, month time.Month) (Result, error) {
	if err := ValidatePeriod(year, month); err != nil {
		return Result{}, err
	}

	from, to := civil.MonthInterval(year, month)
	shifts, err := e.shifts.ShiftsInRange(ctx, driverID, from, to)
	if err != nil {
		return Result{}, err
	}

	r := Result{
		DriverID:   driverID,
		Year:       year,
		Month:      month,
		BaseSalary: e.cfg.BaseSalary,
	}

	workedDays := make(map[civil.Date]struct{})
	for _, s := range shifts {
		if !s.IsCompleted() {
			continue
		}
		regular, overtime := splitMinutes(s)
		r.RegularMinutes += regular
		r.OvertimeMinutes += overtime
		r.TotalDistance += s.TotalDistance
		r.ShiftCount++
		workedDays[s.ClockIn.Date()] = struct{}{}
	}
	r.DaysWorked = len(workedDays)

	if err := e.applyLeave(ctx, &r, driverID, year, month); err != nil {
		return Result{}, err
	}

	r.RegularHours = decimal.NewFromInt(int64(r.RegularMinutes)).Div(minutesPerHour)
	r.OvertimeHours = decimal.NewFromInt(int64(r.OvertimeMinutes)).Div(minutesPerHour)

	r.OvertimePay = r.OvertimeHours.Mul(e.cfg.OvertimeRatePerHour)
	r.FuelAllowance = e.cfg.FuelAllowancePerDay.Mul(decimal.NewFromInt(int64(r.DaysWorked)))
	r.UnpaidLeaveDeduction = e.cfg.DailySalary().Mul(decimal.NewFromInt(int64(r.UnpaidLeaveDays)))
	r.AdjustedBaseSalary = e.cfg.BaseSalary.Sub(r.UnpaidLeaveDeduction)
	r.GrossPay = r.AdjustedBaseSalary.Add(r.OvertimePay).Add(r.FuelAllowance)

	return r, nil
}

// splitMinutes divides a completed shift's duration into regular and
// overtime minutes.
func splitMinutes(s shift.Shift) (regular, overtime int) {
	dur := s.DurationMinutes
	if dur <= 0 {
		return 0, 0
	}

	// Sunday: the whole shift is overtime, whatever the hours.
	if s.ClockIn.IsSunday() {
		return 0, dur
	}

	// Early component: minutes worked before 08:00.
	clockInMin := s.ClockIn.Hour()*60 + s.ClockIn.Minute()
	early := morningBoundaryMin - clockInMin
	if early < 0 {
		early = 0
	}
	if early > dur {
		early = dur
	}

	// Late component: minutes worked at or after 20:00 of the clock-in day.
	late := s.ClockOut.MinutesSince(s.ClockIn.At(20, 0))
	if late < 0 {
		late = 0
	}

	overtime = early + late
	if overtime > dur {
		overtime = dur
	}
	return dur - overtime, overtime
}

// applyLeave fills the leave counters of r.
//
// The paid/unpaid split is chronological across the whole year: the
// month's annual leaves (ordered by date) continue the year's running
// count, and each one whose cumulative ordinal exceeds the allowance is
// unpaid. Sick and casual leaves are counted but always paid.
func (e *Engine) applyLeave(ctx context.Context, r *Result, driverID string, year int, month time.Month) error {
	monthLeaves, err := e.leaves.ApprovedLeavesInMonth(ctx, driverID, year, month)
	if err != nil {
		return err
	}
	annualBefore, err := e.leaves.AnnualApprovedCountBefore(ctx, driverID, year, month)
	if err != nil {
		return err
	}
	annualYear, err := e.leaves.AnnualApprovedCount(ctx, driverID, year)
	if err != nil {
		return err
	}

	// Ordinals are assigned in chronological date order.
	sort.Slice(monthLeaves, func(i, j int) bool {
		return monthLeaves[i].Date.Before(monthLeaves[j].Date)
	})

	ordinal := annualBefore
	for _, lv := range monthLeaves {
		r.LeaveDays++
		if lv.Type != leave.TypeAnnual {
			continue
		}
		ordinal++
		if ordinal > e.cfg.AnnualLeaveAllowance {
			r.UnpaidLeaveDays++
		}
	}
	r.PaidLeaveDays = r.LeaveDays - r.UnpaidLeaveDays
	r.AnnualLeavesUsed = annualYear
	r.AnnualLeavesRemaining = e.cfg.AnnualLeaveAllowance - annualYear
	if r.AnnualLeavesRemaining < 0 {
		r.AnnualLeavesRemaining = 0
	}
	return nil
}

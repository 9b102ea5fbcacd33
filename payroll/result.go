package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT - One driver's payroll breakdown for one month
// =============================================================================

// Result is a pure value object, recomputed on demand and never stored.
// Monetary and hour fields hold full precision; callers round at the
// point of output via Rounded().
type Result struct {
	DriverID string
	Year     int
	Month    time.Month

	// Shift totals
	ShiftCount      int
	DaysWorked      int
	TotalDistance   int64
	RegularMinutes  int
	OvertimeMinutes int
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal

	// Leave counters
	LeaveDays             int
	PaidLeaveDays         int
	UnpaidLeaveDays       int
	AnnualLeavesUsed      int
	AnnualLeavesRemaining int

	// Money
	BaseSalary           decimal.Decimal
	UnpaidLeaveDeduction decimal.Decimal
	AdjustedBaseSalary   decimal.Decimal
	OvertimePay          decimal.Decimal
	FuelAllowance        decimal.Decimal
	GrossPay             decimal.Decimal
}

// Rounded returns a copy with hours and money rounded to 2 decimal
// places. Internal accumulation stays at full precision so rounding
// error never compounds.
func (r Result) Rounded() Result {
	r.RegularHours = r.RegularHours.Round(2)
	r.OvertimeHours = r.OvertimeHours.Round(2)
	r.BaseSalary = r.BaseSalary.Round(2)
	r.UnpaidLeaveDeduction = r.UnpaidLeaveDeduction.Round(2)
	r.AdjustedBaseSalary = r.AdjustedBaseSalary.Round(2)
	r.OvertimePay = r.OvertimePay.Round(2)
	r.FuelAllowance = r.FuelAllowance.Round(2)
	r.GrossPay = r.GrossPay.Round(2)
	return r
}

// Add sums every numeric field of o into a copy of r. Used by the
// year-to-date rollup: plain field-by-field addition, no re-derivation.
// Annual leave counters are summed here too but the aggregator
// overwrites them from the single year query to avoid double counting.
func (r Result) Add(o Result) Result {
	r.ShiftCount += o.ShiftCount
	r.DaysWorked += o.DaysWorked
	r.TotalDistance += o.TotalDistance
	r.RegularMinutes += o.RegularMinutes
	r.OvertimeMinutes += o.OvertimeMinutes
	r.RegularHours = r.RegularHours.Add(o.RegularHours)
	r.OvertimeHours = r.OvertimeHours.Add(o.OvertimeHours)

	r.LeaveDays += o.LeaveDays
	r.PaidLeaveDays += o.PaidLeaveDays
	r.UnpaidLeaveDays += o.UnpaidLeaveDays
	r.AnnualLeavesUsed += o.AnnualLeavesUsed
	r.AnnualLeavesRemaining += o.AnnualLeavesRemaining

	r.BaseSalary = r.BaseSalary.Add(o.BaseSalary)
	r.UnpaidLeaveDeduction = r.UnpaidLeaveDeduction.Add(o.UnpaidLeaveDeduction)
	r.AdjustedBaseSalary = r.AdjustedBaseSalary.Add(o.AdjustedBaseSalary)
	r.OvertimePay = r.OvertimePay.Add(o.OvertimePay)
	r.FuelAllowance = r.FuelAllowance.Add(o.FuelAllowance)
	r.GrossPay = r.GrossPay.Add(o.GrossPay)
	return r
}

package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// CONFIG - Pay rates in force for a computation
// =============================================================================

// Config carries the currently-active pay rates. The engine always uses
// a single Config for a given computation; there is no retroactive
// recomputation against historical rates.
type Config struct {
	// BaseSalary is the fixed monthly salary before deductions.
	BaseSalary decimal.Decimal

	// OvertimeRatePerHour is paid per overtime hour.
	OvertimeRatePerHour decimal.Decimal

	// FuelAllowancePerDay is paid per distinct worked day. Leave days
	// earn no fuel allowance.
	FuelAllowancePerDay decimal.Decimal

	// AnnualLeaveAllowance is the number of paid annual leave days per
	// calendar year. Approved annual leaves beyond it are unpaid.
	AnnualLeaveAllowance int
}

// salaryDivisor is the fixed daily-salary divisor. Every month divides
// by 30 regardless of its actual length.
var salaryDivisor = decimal.NewFromInt(30)

// DailySalary returns BaseSalary / 30 at full precision.
func (c Config) DailySalary() decimal.Decimal {
	return c.BaseSalary.Div(salaryDivisor)
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the external contract. Money is serialized as 2-decimal strings;
  the engine computes at full precision and rounds here, at the point
  of output.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"github.com/warp/fleet-payroll/driver"
	"github.com/warp/fleet-payroll/leave"
	"github.com/warp/fleet-payroll/payroll"
	"github.com/warp/fleet-payroll/shift"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DriverDTO represents a driver in API responses.
type DriverDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	HireDate string `json:"hire_date"`
	Active   bool   `json:"active"`
}

// CreateDriverRequest is the request to register a driver.
type CreateDriverRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	HireDate string `json:"hire_date"`
}

// ClockInRequest carries the odometer reading at clock-in.
type ClockInRequest struct {
	StartOdometer int64 `json:"start_odometer"`
}

// ClockOutRequest carries the odometer reading at clock-out.
type ClockOutRequest struct {
	EndOdometer int64 `json:"end_odometer"`
}

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	ID              string `json:"id"`
	DriverID        string `json:"driver_id"`
	ClockIn         string `json:"clock_in"`
	ClockOut        string `json:"clock_out,omitempty"`
	StartOdometer   int64  `json:"start_odometer"`
	EndOdometer     int64  `json:"end_odometer,omitempty"`
	TotalDistance   int64  `json:"total_distance"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
}

// SubmitLeaveRequest is the request to submit a leave day.
type SubmitLeaveRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
	Type string `json:"type"` // annual | sick | casual
}

// LeaveDTO represents a leave request in API responses.
type LeaveDTO struct {
	ID          string `json:"id"`
	DriverID    string `json:"driver_id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	RequestedAt string `json:"requested_at"`
	DecidedAt   string `json:"decided_at,omitempty"`
}

// PayrollDTO is one driver's monthly (or year-to-date) breakdown.
type PayrollDTO struct {
	DriverID string `json:"driver_id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`

	ShiftCount      int    `json:"shift_count"`
	DaysWorked      int    `json:"days_worked"`
	TotalDistance   int64  `json:"total_distance"`
	RegularHours    string `json:"regular_hours"`
	OvertimeHours   string `json:"overtime_hours"`

	LeaveDays             int `json:"leave_days"`
	PaidLeaveDays         int `json:"paid_leave_days"`
	UnpaidLeaveDays       int `json:"unpaid_leave_days"`
	AnnualLeavesUsed      int `json:"annual_leaves_used"`
	AnnualLeavesRemaining int `json:"annual_leaves_remaining"`

	BaseSalary           string `json:"base_salary"`
	UnpaidLeaveDeduction string `json:"unpaid_leave_deduction"`
	AdjustedBaseSalary   string `json:"adjusted_base_salary"`
	OvertimePay          string `json:"overtime_pay"`
	FuelAllowance        string `json:"fuel_allowance"`
	GrossPay             string `json:"gross_pay"`
}

// SummaryEntryDTO is one roster entry of a batch computation. Failed
// entries carry Error and a null payroll.
type SummaryEntryDTO struct {
	Driver  DriverDTO   `json:"driver"`
	Payroll *PayrollDTO `json:"payroll,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toDriverDTO(d driver.Driver) DriverDTO {
	return DriverDTO{
		ID:       d.ID,
		Name:     d.Name,
		Phone:    d.Phone,
		HireDate: d.HireDate.String(),
		Active:   d.Active,
	}
}

func toShiftDTO(s shift.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:              s.ID,
		DriverID:        s.DriverID,
		ClockIn:         s.ClockIn.String(),
		StartOdometer:   s.StartOdometer,
		TotalDistance:   s.TotalDistance,
		DurationMinutes: s.DurationMinutes,
		Status:          string(s.Status),
	}
	if s.IsCompleted() {
		dto.ClockOut = s.ClockOut.String()
		dto.EndOdometer = s.EndOdometer
	}
	return dto
}

func toLeaveDTO(r leave.Request) LeaveDTO {
	dto := LeaveDTO{
		ID:          r.ID,
		DriverID:    r.DriverID,
		Date:        r.Date.String(),
		Type:        string(r.Type),
		Status:      string(r.Status),
		RequestedAt: r.RequestedAt.String(),
	}
	if !r.DecidedAt.IsZero() {
		dto.DecidedAt = r.DecidedAt.String()
	}
	return dto
}

func toPayrollDTO(r payroll.Result) PayrollDTO {
	r = r.Rounded()
	return PayrollDTO{
		DriverID:      r.DriverID,
		Year:          r.Year,
		Month:         int(r.Month),
		ShiftCount:    r.ShiftCount,
		DaysWorked:    r.DaysWorked,
		TotalDistance: r.TotalDistance,
		RegularHours:  r.RegularHours.StringFixed(2),
		OvertimeHours: r.OvertimeHours.StringFixed(2),

		LeaveDays:             r.LeaveDays,
		PaidLeaveDays:         r.PaidLeaveDays,
		UnpaidLeaveDays:       r.UnpaidLeaveDays,
		AnnualLeavesUsed:      r.AnnualLeavesUsed,
		AnnualLeavesRemaining: r.AnnualLeavesRemaining,

		BaseSalary:           r.BaseSalary.StringFixed(2),
		UnpaidLeaveDeduction: r.UnpaidLeaveDeduction.StringFixed(2),
		AdjustedBaseSalary:   r.AdjustedBaseSalary.StringFixed(2),
		OvertimePay:          r.OvertimePay.StringFixed(2),
		FuelAllowance:        r.FuelAllowance.StringFixed(2),
		GrossPay:             r.GrossPay.StringFixed(2),
	}
}

func toSummaryDTO(entries []payroll.DriverPayroll) []SummaryEntryDTO {
	out := make([]SummaryEntryDTO, len(entries))
	for i, e := range entries {
		dto := SummaryEntryDTO{Driver: toDriverDTO(e.Driver)}
		if e.Err != nil {
			dto.Error = e.Err.Error()
		} else {
			p := toPayrollDTO(e.Result)
			dto.Payroll = &p
		}
		out[i] = dto
	}
	return out
}

package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/fleet-payroll/civil"
	"github.com/warp/fleet-payroll/leave"
	"github.com/warp/fleet-payroll/payroll"
	"github.com/warp/fleet-payroll/shift"
	"github.com/warp/fleet-payroll/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testConfig() payroll.Config {
	return payroll.Config{
		BaseSalary:           decimal.NewFromInt(27000),
		OvertimeRatePerHour:  decimal.NewFromInt(100),
		FuelAllowancePerDay:  decimal.RequireFromString("33.30"),
		AnnualLeaveAllowance: 12,
	}
}

func newEngine() (*payroll.Engine, *memory.Store) {
	store := memory.New()
	return payroll.NewEngine(store, store, testConfig()), store
}

// addShift seeds one completed shift with derived fields, the way the
// lifecycle would have written it.
func addShift(t *testing.T, store *memory.Store, driverID string, in, out civil.Time, startOdo, endOdo int64) {
	t.Helper()
	ctx := context.Background()

	id, err := store.InsertActive(ctx, shift.Shift{
		DriverID:      driverID,
		ClockIn:       in,
		StartOdometer: startOdo,
		Status:        shift.StatusActive,
	})
	require.NoError(t, err)

	err = store.CompleteShift(ctx, shift.Shift{
		ID:              id,
		DriverID:        driverID,
		ClockIn:         in,
		ClockOut:        out,
		StartOdometer:   startOdo,
		EndOdometer:     endOdo,
		TotalDistance:   endOdo - startOdo,
		DurationMinutes: out.MinutesSince(in),
		Status:          shift.StatusCompleted,
	})
	require.NoError(t, err)
}

// addApprovedLeave seeds an already-approved leave day.
func addApprovedLeave(t *testing.T, store *memory.Store, driverID string, date civil.Date, typ leave.Type) {
	t.Helper()
	_, err := store.InsertLeave(context.Background(), leave.Request{
		DriverID:    driverID,
		Date:        date,
		Type:        typ,
		Status:      leave.StatusApproved,
		RequestedAt: date.StartOfDay(),
	})
	require.NoError(t, err)
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	if !got.Round(2).Equal(money(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, got.Round(2))
	}
}

// =============================================================================
// CONCRETE PAY SCENARIOS
// =============================================================================

func TestComputeMonth_WeekdayShiftWithinRegularHours(t *testing.T) {
	// GIVEN: one shift 08:00-16:30 on Wednesday June 11 (510 minutes),
	//        entirely inside the 08:00-20:00 regular window
	// WHEN: computing June payroll
	// THEN: all 510 minutes are regular, gross = base + one fuel day

	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 11, 8, 0),
		civil.TimeOf(2025, time.June, 11, 16, 30),
		1000, 1185)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.OvertimeMinutes != 0 {
		t.Errorf("expected 0 overtime minutes, got %d", r.OvertimeMinutes)
	}
	if r.RegularMinutes != 510 {
		t.Errorf("expected 510 regular minutes, got %d", r.RegularMinutes)
	}
	if r.DaysWorked != 1 {
		t.Errorf("expected 1 day worked, got %d", r.DaysWorked)
	}
	assertMoney(t, "8.50", r.RegularHours, "regular hours")
	assertMoney(t, "0.00", r.OvertimePay, "overtime pay")
	assertMoney(t, "33.30", r.FuelAllowance, "fuel allowance")
	assertMoney(t, "27000.00", r.AdjustedBaseSalary, "adjusted base")
	assertMoney(t, "27033.30", r.GrossPay, "gross pay")
}

func TestComputeMonth_EarlyMorningWeekdayShift(t *testing.T) {
	// GIVEN: one shift 06:00-14:30 on Wednesday June 11 (510 minutes)
	// THEN: the 120 minutes before 08:00 are overtime, the rest regular

	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 11, 6, 0),
		civil.TimeOf(2025, time.June, 11, 14, 30),
		1000, 1185)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.OvertimeMinutes != 120 {
		t.Errorf("expected 120 overtime minutes, got %d", r.OvertimeMinutes)
	}
	if r.RegularMinutes != 390 {
		t.Errorf("expected 390 regular minutes, got %d", r.RegularMinutes)
	}
	assertMoney(t, "200.00", r.OvertimePay, "overtime pay")
	assertMoney(t, "27233.30", r.GrossPay, "gross pay")
}

func TestComputeMonth_SundayShiftIsAllOvertime(t *testing.T) {
	// GIVEN: one shift 06:00-14:30 on Sunday June 8 (510 minutes)
	// THEN: 100% of the duration is overtime regardless of the hours

	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 8, 6, 0),
		civil.TimeOf(2025, time.June, 8, 14, 30),
		1000, 1185)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.RegularMinutes != 0 {
		t.Errorf("expected 0 regular minutes, got %d", r.RegularMinutes)
	}
	if r.OvertimeMinutes != 510 {
		t.Errorf("expected 510 overtime minutes, got %d", r.OvertimeMinutes)
	}
	assertMoney(t, "8.50", r.OvertimeHours, "overtime hours")
	assertMoney(t, "850.00", r.OvertimePay, "overtime pay")
	assertMoney(t, "27883.30", r.GrossPay, "gross pay")
}

func TestComputeMonth_EarlyAndLateComponentsCombine(t *testing.T) {
	// GIVEN: a weekday shift 07:00-21:30 (870 minutes)
	// THEN: 60 early + 90 late = 150 overtime minutes, 720 regular

	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 11, 7, 0),
		civil.TimeOf(2025, time.June, 11, 21, 30),
		1000, 1300)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.OvertimeMinutes != 150 {
		t.Errorf("expected 150 overtime minutes, got %d", r.OvertimeMinutes)
	}
	if r.RegularMinutes != 720 {
		t.Errorf("expected 720 regular minutes, got %d", r.RegularMinutes)
	}
}

func TestComputeMonth_OvernightShiftLateComponent(t *testing.T) {
	// GIVEN: a weekday shift 18:00 to 01:00 next day (420 minutes)
	// THEN: everything past 20:00 of the clock-in day is overtime (300)

	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 11, 18, 0),
		civil.TimeOf(2025, time.June, 12, 1, 0),
		1000, 1200)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.OvertimeMinutes != 300 {
		t.Errorf("expected 300 overtime minutes, got %d", r.OvertimeMinutes)
	}
	if r.RegularMinutes != 120 {
		t.Errorf("expected 120 regular minutes, got %d", r.RegularMinutes)
	}
	// Worked days are keyed by the clock-in date.
	if r.DaysWorked != 1 {
		t.Errorf("expected 1 day worked, got %d", r.DaysWorked)
	}
}

func TestComputeMonth_ShiftEntirelyBeforeMorningBoundary(t *testing.T) {
	// GIVEN: a weekday shift 04:00-07:00, fully before 08:00
	// THEN: the early component is clamped to the shift duration

	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 11, 4, 0),
		civil.TimeOf(2025, time.June, 11, 7, 0),
		1000, 1080)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.OvertimeMinutes != 180 {
		t.Errorf("expected 180 overtime minutes, got %d", r.OvertimeMinutes)
	}
	if r.RegularMinutes != 0 {
		t.Errorf("expected 0 regular minutes, got %d", r.RegularMinutes)
	}
}

// =============================================================================
// AGGREGATION ACROSS SHIFTS
// =============================================================================

func TestComputeMonth_DistinctWorkedDays(t *testing.T) {
	// GIVEN: two shifts on the same day and one on another day
	// THEN: daysWorked counts distinct dates, fuel allowance follows

	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 10, 8, 0),
		civil.TimeOf(2025, time.June, 10, 12, 0),
		1000, 1100)
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 10, 14, 0),
		civil.TimeOf(2025, time.June, 10, 18, 0),
		1100, 1200)
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 12, 8, 0),
		civil.TimeOf(2025, time.June, 12, 12, 0),
		1200, 1350)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.ShiftCount != 3 {
		t.Errorf("expected 3 shifts, got %d", r.ShiftCount)
	}
	if r.DaysWorked != 2 {
		t.Errorf("expected 2 distinct days, got %d", r.DaysWorked)
	}
	if r.TotalDistance != 350 {
		t.Errorf("expected 350 km total, got %d", r.TotalDistance)
	}
	assertMoney(t, "66.60", r.FuelAllowance, "fuel allowance")
}

func TestComputeMonth_IgnoresShiftsOutsideMonth(t *testing.T) {
	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.May, 31, 8, 0),
		civil.TimeOf(2025, time.May, 31, 16, 0),
		900, 1000)
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 2, 8, 0),
		civil.TimeOf(2025, time.June, 2, 16, 0),
		1000, 1100)
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.July, 1, 8, 0),
		civil.TimeOf(2025, time.July, 1, 16, 0),
		1100, 1200)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.ShiftCount != 1 {
		t.Errorf("expected only June's shift, got %d", r.ShiftCount)
	}
	if r.TotalDistance != 100 {
		t.Errorf("expected 100 km, got %d", r.TotalDistance)
	}
}

func TestComputeMonth_ActiveShiftIsExcluded(t *testing.T) {
	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 2, 8, 0),
		civil.TimeOf(2025, time.June, 2, 16, 0),
		1000, 1100)
	_, err := store.InsertActive(context.Background(), shift.Shift{
		DriverID:      "drv-1",
		ClockIn:       civil.TimeOf(2025, time.June, 3, 8, 0),
		StartOdometer: 1100,
		Status:        shift.StatusActive,
	})
	require.NoError(t, err)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.ShiftCount != 1 {
		t.Errorf("active shift must not be counted, got %d shifts", r.ShiftCount)
	}
}

// =============================================================================
// DEGENERATE AND INVALID INPUT
// =============================================================================

func TestComputeMonth_EmptyMonthIsZeroValuedNotError(t *testing.T) {
	engine, _ := newEngine()

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.ShiftCount != 0 || r.DaysWorked != 0 || r.OvertimeMinutes != 0 {
		t.Errorf("expected zero shift totals, got %+v", r)
	}
	assertMoney(t, "0.00", r.FuelAllowance, "fuel allowance")
	assertMoney(t, "27000.00", r.GrossPay, "gross pay")
}

func TestComputeMonth_InvalidMonthFails(t *testing.T) {
	engine, _ := newEngine()

	for _, month := range []time.Month{0, 13} {
		_, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, month)
		require.ErrorIs(t, err, payroll.ErrInvalidPeriod, "month %d", month)
		require.True(t, payroll.IsValidation(err))
	}
}

// =============================================================================
// LEAVE ACCOUNTING
// =============================================================================

func TestComputeMonth_ThirteenthAnnualLeaveIsUnpaid(t *testing.T) {
	// GIVEN: 12 approved annual leaves January-May and one in June
	// THEN: the June leave is the 13th of the year and unpaid,
	//       deducting one daily salary (27000/30 = 900)

	engine, store := newEngine()
	for i := 0; i < 12; i++ {
		addApprovedLeave(t, store, "drv-1",
			civil.DateOf(2025, time.Month(1+i/3), 1+i%3*7), leave.TypeAnnual)
	}
	addApprovedLeave(t, store, "drv-1", civil.DateOf(2025, time.June, 16), leave.TypeAnnual)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.LeaveDays != 1 || r.UnpaidLeaveDays != 1 || r.PaidLeaveDays != 0 {
		t.Errorf("expected 1 unpaid leave, got total=%d paid=%d unpaid=%d",
			r.LeaveDays, r.PaidLeaveDays, r.UnpaidLeaveDays)
	}
	if r.AnnualLeavesUsed != 13 {
		t.Errorf("expected 13 annual leaves used, got %d", r.AnnualLeavesUsed)
	}
	if r.AnnualLeavesRemaining != 0 {
		t.Errorf("expected 0 remaining, got %d", r.AnnualLeavesRemaining)
	}
	assertMoney(t, "900.00", r.UnpaidLeaveDeduction, "deduction")
	assertMoney(t, "26100.00", r.AdjustedBaseSalary, "adjusted base")
	assertMoney(t, "26100.00", r.GrossPay, "gross pay")
}

func TestComputeMonth_LeaveAllowanceBoundary(t *testing.T) {
	// The unpaid rule is order-dependent: with n annual leaves in the
	// year, exactly max(0, n-12) are unpaid. Enumerates 11, 12, 13.
	for _, tc := range []struct {
		total      int
		wantUnpaid int
	}{
		{11, 0},
		{12, 0},
		{13, 1},
	} {
		engine, store := newEngine()
		// All leaves fall in June, one per day from the 1st.
		for i := 0; i < tc.total; i++ {
			addApprovedLeave(t, store, "drv-1",
				civil.DateOf(2025, time.June, 1+i), leave.TypeAnnual)
		}

		r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
		require.NoError(t, err)

		if r.UnpaidLeaveDays != tc.wantUnpaid {
			t.Errorf("%d annual leaves: expected %d unpaid, got %d",
				tc.total, tc.wantUnpaid, r.UnpaidLeaveDays)
		}
		if r.PaidLeaveDays != tc.total-tc.wantUnpaid {
			t.Errorf("%d annual leaves: expected %d paid, got %d",
				tc.total, tc.total-tc.wantUnpaid, r.PaidLeaveDays)
		}
	}
}

func TestComputeMonth_SickLeaveNeverDeducts(t *testing.T) {
	// GIVEN: the annual allowance is exhausted
	// THEN: a sick leave in the month is still paid

	engine, store := newEngine()
	for i := 0; i < 12; i++ {
		addApprovedLeave(t, store, "drv-1",
			civil.DateOf(2025, time.January, 1+i), leave.TypeAnnual)
	}
	addApprovedLeave(t, store, "drv-1", civil.DateOf(2025, time.June, 10), leave.TypeSick)

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.UnpaidLeaveDays != 0 || r.PaidLeaveDays != 1 {
		t.Errorf("sick leave should be paid: paid=%d unpaid=%d",
			r.PaidLeaveDays, r.UnpaidLeaveDays)
	}
	assertMoney(t, "0.00", r.UnpaidLeaveDeduction, "deduction")
}

func TestComputeMonth_PendingAndRejectedLeavesIgnored(t *testing.T) {
	engine, store := newEngine()
	ctx := context.Background()

	for i, status := range []leave.Status{leave.StatusPending, leave.StatusRejected} {
		_, err := store.InsertLeave(ctx, leave.Request{
			DriverID:    "drv-1",
			Date:        civil.DateOf(2025, time.June, 9+i),
			Type:        leave.TypeAnnual,
			Status:      status,
			RequestedAt: civil.TimeOf(2025, time.June, 1, 9, 0),
		})
		require.NoError(t, err)
	}

	r, err := engine.ComputeMonth(ctx, "drv-1", 2025, time.June)
	require.NoError(t, err)

	if r.LeaveDays != 0 {
		t.Errorf("expected no counted leaves, got %d", r.LeaveDays)
	}
}

// =============================================================================
// STRUCTURAL PROPERTIES
// =============================================================================

func TestComputeMonth_GrossPayIdentity(t *testing.T) {
	// gross = adjusted base + overtime pay + fuel allowance, exactly.
	engine, store := newEngine()
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 8, 5, 15),
		civil.TimeOf(2025, time.June, 8, 13, 40),
		100, 260)
	addShift(t, store, "drv-1",
		civil.TimeOf(2025, time.June, 9, 7, 5),
		civil.TimeOf(2025, time.June, 9, 20, 55),
		260, 410)
	for i := 0; i < 14; i++ {
		addApprovedLeave(t, store, "drv-1",
			civil.DateOf(2025, time.Month(1+i%6), 1+i/6), leave.TypeAnnual)
	}

	r, err := engine.ComputeMonth(context.Background(), "drv-1", 2025, time.June)
	require.NoError(t, err)

	sum := r.AdjustedBaseSalary.Add(r.OvertimePay).Add(r.FuelAllowance)
	if !r.GrossPay.Equal(sum) {
		t.Errorf("gross pay identity broken: %s != %s", r.GrossPay, sum)
	}
}

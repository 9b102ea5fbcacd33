package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fleet-payroll/civil"
	"github.com/warp/fleet-payroll/driver"
	"github.com/warp/fleet-payroll/leave"
	"github.com/warp/fleet-payroll/payroll"
	"github.com/warp/fleet-payroll/shift"
	"github.com/warp/fleet-payroll/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newAggregator(t *testing.T, clock civil.Clock) (*payroll.Aggregator, *memory.Store) {
	t.Helper()
	store := memory.New()
	engine := payroll.NewEngine(store, store, testConfig())
	return payroll.NewAggregator(store, store, engine, clock), store
}

func addDriver(t *testing.T, store *memory.Store, name string, active bool) string {
	t.Helper()
	id, err := store.SaveDriver(context.Background(), driver.Driver{
		Name:     name,
		HireDate: civil.DateOf(2024, time.January, 15),
		Active:   active,
	})
	require.NoError(t, err)
	return id
}

// flakyShifts wraps a shift store and fails range queries for one driver.
type flakyShifts struct {
	shift.Store
	badDriver string
}

var errStoreDown = errors.New("simulated store failure")

func (f *flakyShifts) ShiftsInRange(ctx context.Context, driverID string, from, to civil.Time) ([]shift.Shift, error) {
	if driverID == f.badDriver {
		return nil, errStoreDown
	}
	return f.Store.ShiftsInRange(ctx, driverID, from, to)
}

// =============================================================================
// MONTHLY SUMMARY
// =============================================================================

func TestMonthlySummary_OneEntryPerActiveDriver(t *testing.T) {
	clock := &civil.FixedClock{Reading: civil.TimeOf(2025, time.June, 30, 18, 0)}
	agg, store := newAggregator(t, clock)

	idA := addDriver(t, store, "Amara", true)
	idB := addDriver(t, store, "Bandu", true)
	addDriver(t, store, "Chamara", false)

	addShift(t, store, idA,
		civil.TimeOf(2025, time.June, 11, 8, 0),
		civil.TimeOf(2025, time.June, 11, 16, 30),
		1000, 1100)

	entries, err := agg.MonthlySummary(context.Background(), 2025, time.June)
	require.NoError(t, err)
	require.Len(t, entries, 2, "deactivated drivers are excluded")

	byID := map[string]payroll.DriverPayroll{}
	for _, e := range entries {
		require.NoError(t, e.Err)
		byID[e.Driver.ID] = e
	}
	assert.Equal(t, 1, byID[idA].Result.ShiftCount)
	assert.Equal(t, 0, byID[idB].Result.ShiftCount)
	// A driver with no activity still gets a base salary result.
	assertMoney(t, "27000.00", byID[idB].Result.GrossPay, "idle driver gross")
}

func TestMonthlySummary_PartialFailureIsPerEntry(t *testing.T) {
	clock := &civil.FixedClock{Reading: civil.TimeOf(2025, time.June, 30, 18, 0)}
	store := memory.New()

	idA := addDriver(t, store, "Amara", true)
	idB := addDriver(t, store, "Bandu", true)

	engine := payroll.NewEngine(&flakyShifts{Store: store, badDriver: idB}, store, testConfig())
	agg := payroll.NewAggregator(store, store, engine, clock)

	entries, err := agg.MonthlySummary(context.Background(), 2025, time.June)
	require.NoError(t, err, "batch survives a single driver's failure")
	require.Len(t, entries, 2)

	for _, e := range entries {
		switch e.Driver.ID {
		case idA:
			assert.NoError(t, e.Err)
		case idB:
			assert.ErrorIs(t, e.Err, errStoreDown)
		}
	}
}

func TestMonthlySummary_InvalidPeriod(t *testing.T) {
	clock := &civil.FixedClock{Reading: civil.TimeOf(2025, time.June, 30, 18, 0)}
	agg, _ := newAggregator(t, clock)

	_, err := agg.MonthlySummary(context.Background(), 2025, 13)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

// =============================================================================
// YEAR TO DATE
// =============================================================================

func TestDriverYearToDate_SumsMonths(t *testing.T) {
	// Clock pinned to March, so YTD covers January through March.
	clock := &civil.FixedClock{Reading: civil.TimeOf(2025, time.March, 20, 12, 0)}
	agg, store := newAggregator(t, clock)
	ctx := context.Background()

	id := addDriver(t, store, "Amara", true)
	addShift(t, store, id,
		civil.TimeOf(2025, time.January, 6, 8, 0),
		civil.TimeOf(2025, time.January, 6, 16, 0),
		100, 220)
	addShift(t, store, id,
		civil.TimeOf(2025, time.February, 3, 6, 0),
		civil.TimeOf(2025, time.February, 3, 16, 0),
		220, 350)
	addShift(t, store, id,
		civil.TimeOf(2025, time.March, 10, 8, 0),
		civil.TimeOf(2025, time.March, 10, 16, 0),
		350, 500)

	r, err := agg.DriverYearToDate(ctx, id, 2025)
	require.NoError(t, err)

	assert.Equal(t, 3, r.ShiftCount)
	assert.Equal(t, 3, r.DaysWorked)
	assert.Equal(t, int64(400), r.TotalDistance)
	// February's 06:00 start carries 120 early overtime minutes.
	assert.Equal(t, 120, r.OvertimeMinutes)
	assert.Equal(t, time.March, r.Month)

	// Three months of base salary plus overtime and fuel.
	// 3*27000 + 200 + 3*33.30 = 81299.90
	assertMoney(t, "81299.90", r.GrossPay, "YTD gross")
}

func TestDriverYearToDate_AnnualLeaveCountersNotDoubleCounted(t *testing.T) {
	clock := &civil.FixedClock{Reading: civil.TimeOf(2025, time.March, 20, 12, 0)}
	agg, store := newAggregator(t, clock)

	id := addDriver(t, store, "Amara", true)
	addApprovedLeave(t, store, id, civil.DateOf(2025, time.January, 10), leave.TypeAnnual)
	addApprovedLeave(t, store, id, civil.DateOf(2025, time.February, 14), leave.TypeAnnual)
	addApprovedLeave(t, store, id, civil.DateOf(2025, time.March, 3), leave.TypeAnnual)

	r, err := agg.DriverYearToDate(context.Background(), id, 2025)
	require.NoError(t, err)

	// Each monthly result reports the year-wide counter; the rollup must
	// carry the single year value, not a sum of monthly snapshots.
	assert.Equal(t, 3, r.AnnualLeavesUsed)
	assert.Equal(t, 9, r.AnnualLeavesRemaining)
	assert.Equal(t, 3, r.LeaveDays)
	assert.Equal(t, 3, r.PaidLeaveDays)
}

func TestDriverYearToDate_PastYearCoversDecember(t *testing.T) {
	clock := &civil.FixedClock{Reading: civil.TimeOf(2025, time.March, 20, 12, 0)}
	agg, store := newAggregator(t, clock)

	id := addDriver(t, store, "Amara", true)
	addShift(t, store, id,
		civil.TimeOf(2024, time.December, 2, 8, 0),
		civil.TimeOf(2024, time.December, 2, 16, 0),
		100, 180)

	r, err := agg.DriverYearToDate(context.Background(), id, 2024)
	require.NoError(t, err)

	assert.Equal(t, 1, r.ShiftCount)
	assert.Equal(t, time.December, r.Month)
	// 12 months of base salary plus one fuel day.
	assertMoney(t, "324033.30", r.GrossPay, "past year gross")
}

func TestYearToDate_FutureYearRejected(t *testing.T) {
	clock := &civil.FixedClock{Reading: civil.TimeOf(2025, time.March, 20, 12, 0)}
	agg, store := newAggregator(t, clock)
	addDriver(t, store, "Amara", true)

	_, err := agg.YearToDate(context.Background(), 2026)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)

	_, err = agg.DriverYearToDate(context.Background(), "whoever", 2026)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestYearToDate_BatchAcrossRoster(t *testing.T) {
	clock := &civil.FixedClock{Reading: civil.TimeOf(2025, time.February, 10, 12, 0)}
	agg, store := newAggregator(t, clock)

	idA := addDriver(t, store, "Amara", true)
	idB := addDriver(t, store, "Bandu", true)

	addShift(t, store, idA,
		civil.TimeOf(2025, time.January, 6, 8, 0),
		civil.TimeOf(2025, time.January, 6, 16, 0),
		100, 220)

	entries, err := agg.YearToDate(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[string]payroll.DriverPayroll{}
	for _, e := range entries {
		require.NoError(t, e.Err)
		byID[e.Driver.ID] = e
	}
	assert.Equal(t, 1, byID[idA].Result.ShiftCount)
	assert.Equal(t, 0, byID[idB].Result.ShiftCount)
}

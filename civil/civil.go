/*
Package civil provides wall-clock time values for the fleet's operating region.

PURPOSE:
  Overtime rules are defined against local clock hours (the 08:00 and
  20:00 boundaries) and the local day of week (Sunday). A civil value is
  a wall-clock reading with no location attached: once captured, all
  arithmetic is plain calendar math, unaffected by DST transitions or
  accidental UTC conversion.

KEY TYPES:
  Time:  minute-granularity wall-clock timestamp
  Date:  calendar date (worked-day and leave-day keys)
  Clock: source of "now" readings (real or fixed for tests)

CAPTURE:
  The operating timezone is fixed once at startup (config TIMEZONE,
  default Asia/Colombo). Now(loc) reads the wall clock in that location
  and then drops the location; values are never re-converted afterward.

SEE ALSO:
  - shift/lifecycle.go: stamps shifts with the clock's readings
  - payroll/engine.go: overtime boundary arithmetic
*/
package civil

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME - Minute-granularity wall-clock timestamp
// =============================================================================

// TimeLayout is the canonical storage/display format for Time values.
const TimeLayout = "2006-01-02 15:04"

// DateLayout is the canonical storage/display format for Date values.
const DateLayout = "2006-01-02"

// Time is a wall-clock timestamp with minute precision and no location.
// The zero value means "not set" (e.g. the clock-out of an active shift).
type Time struct {
	t time.Time
}

// TimeOf builds a Time from civil components.
func TimeOf(year int, month time.Month, day, hour, minute int) Time {
	return Time{t: time.Date(year, month, day, hour, minute, 0, 0, time.UTC)}
}

// Now captures the current wall-clock reading in loc, truncated to the minute.
// The location is dropped after capture.
func Now(loc *time.Location) Time {
	n := time.Now().In(loc)
	return TimeOf(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute())
}

// ParseTime parses the canonical "2006-01-02 15:04" format.
func ParseTime(s string) (Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return Time{}, fmt.Errorf("invalid civil time %q: %w", s, err)
	}
	return Time{t: t}, nil
}

// Comparison
func (t Time) Before(u Time) bool { return t.t.Before(u.t) }
func (t Time) After(u Time) bool  { return t.t.After(u.t) }
func (t Time) Equal(u Time) bool  { return t.t.Equal(u.t) }
func (t Time) IsZero() bool       { return t.t.IsZero() }

// MinutesSince returns the whole minutes elapsed from u to t.
// Negative when t is before u.
func (t Time) MinutesSince(u Time) int {
	return int(t.t.Sub(u.t) / time.Minute)
}

// AddMinutes returns the time n minutes later (earlier for negative n).
func (t Time) AddMinutes(n int) Time {
	return Time{t: t.t.Add(time.Duration(n) * time.Minute)}
}

// At returns the given clock time on the same calendar day as t.
func (t Time) At(hour, minute int) Time {
	return TimeOf(t.t.Year(), t.t.Month(), t.t.Day(), hour, minute)
}

// Properties
func (t Time) Year() int             { return t.t.Year() }
func (t Time) Month() time.Month     { return t.t.Month() }
func (t Time) Day() int              { return t.t.Day() }
func (t Time) Hour() int             { return t.t.Hour() }
func (t Time) Minute() int           { return t.t.Minute() }
func (t Time) Weekday() time.Weekday { return t.t.Weekday() }
func (t Time) IsSunday() bool        { return t.t.Weekday() == time.Sunday }

// Date returns the calendar date of t.
func (t Time) Date() Date {
	return Date{Year: t.t.Year(), Month: t.t.Month(), Day: t.t.Day()}
}

func (t Time) String() string { return t.t.Format(TimeLayout) }

// =============================================================================
// DATE - Calendar date
// =============================================================================

// Date is a calendar date. Comparable, so it can key sets and maps.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf builds a Date from components.
func DateOf(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses the canonical "2006-01-02" format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid civil date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// StartOfDay returns midnight at the start of d.
func (d Date) StartOfDay() Time { return TimeOf(d.Year, d.Month, d.Day, 0, 0) }

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// =============================================================================
// PERIOD HELPERS
// =============================================================================

// MonthInterval returns the half-open interval [start of month, start of
// next month). Range queries on clock-in times use this bound pair.
func MonthInterval(year int, month time.Month) (from, to Time) {
	from = TimeOf(year, month, 1, 0, 0)
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	to = TimeOf(next.Year(), next.Month(), next.Day(), 0, 0)
	return from, to
}

// =============================================================================
// CLOCK - Source of current wall-clock readings
// =============================================================================

// Clock supplies the current wall-clock reading in the operating timezone.
// Tests substitute fixed readings.
type Clock interface {
	Now() Time
}

type locationClock struct {
	loc *time.Location
}

// NewClock returns a Clock that reads the wall clock in loc.
func NewClock(loc *time.Location) Clock {
	return &locationClock{loc: loc}
}

func (c *locationClock) Now() Time { return Now(c.loc) }

// FixedClock always returns the same reading. Test helper.
type FixedClock struct {
	Reading Time
}

func (c *FixedClock) Now() Time { return c.Reading }

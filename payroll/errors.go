package payroll

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned when the requested month is outside 1-12
// or the year is outside a sane range.
var ErrInvalidPeriod = errors.New("invalid payroll period")

// ValidatePeriod checks a year/month pair before any computation.
func ValidatePeriod(year int, month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("month %d: %w", month, ErrInvalidPeriod)
	}
	if year < 2000 || year > 2200 {
		return fmt.Errorf("year %d: %w", year, ErrInvalidPeriod)
	}
	return nil
}

// IsValidation returns true for input errors rejected before computation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPeriod)
}

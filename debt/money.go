package debt

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point helpers (two decimal places, half-up)
// =============================================================================

// Cents is the number of decimal places every currency value is reported at.
const Cents = 2

// Round2 rounds to cents. decimal.Round rounds half away from zero, which is
// half-up for the non-negative values this package deals in.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Cents)
}

// MustParse parses a decimal literal and panics on malformed input.
// Intended for constants and test fixtures.
func MustParse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("debt: bad decimal literal %q: %v", s, err))
	}
	return d
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// FloorZero clamps negative values to zero.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

// MonthLabel returns the "YYYY-MM" label of base shifted by offset months.
func MonthLabel(base time.Time, offset int) string {
	total := int(base.Month()) - 1 + offset
	year := base.Year() + total/12
	month := total%12 + 1
	if month <= 0 {
		month += 12
		year--
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueDateIn clamps a configured due day to the last valid day of the month,
// so day 31 lands on the 30th in a 30-day month.
func DueDateIn(year int, month time.Month, dueDay int) time.Time {
	day := dueDay
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOnly drops the clock part of t, keeping its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

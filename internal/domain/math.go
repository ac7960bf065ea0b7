package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// SafeDiv divides a by b, returning zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// MonthlyFromAnnual spreads an annual amount evenly over twelve months.
func MonthlyFromAnnual(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(monthsInYear)
}

// DecimalFromFloat converts a float64 into a decimal. NaN and ±Inf are rejected
// with an InvalidInputError naming the field.
func DecimalFromFloat(field string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, &InvalidInputError{Field: field, Reason: fmt.Sprintf("non-finite value %v", f)}
	}
	return decimal.NewFromFloat(f), nil
}

// FractionFromPercent converts a percentage (10.2 meaning 10.2 %) into a fraction (0.102).
func FractionFromPercent(field string, pct float64) (decimal.Decimal, error) {
	d, err := DecimalFromFloat(field, pct)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Div(hundred), nil
}

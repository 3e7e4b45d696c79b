// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/shopspring/decimal"
)

// onePercent is 1/PercentageMultiplier; multiplying by it is exact, unlike a
// division which rounds to decimal.DivisionPrecision.
var onePercent = decimal.New(1, 0).Div(decimal.NewFromInt(constants.PercentageMultiplier))

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.DisplayPrecision)
}

// PercentToFraction converts a percentage (e.g. 1.5) into a fraction (0.015).
func PercentToFraction(percent decimal.Decimal) decimal.Decimal {
	return percent.Mul(onePercent)
}

// ApplyPercentage applies a percentage to a value.
func ApplyPercentage(value, percent decimal.Decimal) decimal.Decimal {
	return value.Mul(PercentToFraction(percent))
}

// Ratio returns (end - start) / start. The caller must guard start against zero.
func Ratio(start, end decimal.Decimal) decimal.Decimal {
	return end.Sub(start).Div(start)
}

// WithinRelativeTolerance reports whether actual differs from expected by at
// most tolerance relative to expected. A zero expected value requires an
// absolute difference within tolerance.
func WithinRelativeTolerance(actual, expected decimal.Decimal, tolerance float64) bool {
	diff := actual.Sub(expected).Abs()
	bound := decimal.NewFromFloat(tolerance)
	if !expected.IsZero() {
		bound = bound.Mul(expected.Abs())
	}
	return diff.LessThanOrEqual(bound)
}

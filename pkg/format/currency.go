// Package format renders monetary amounts and ratios for reports.
package format

import (
	"strings"

	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "R$"

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// Currency returns a currency string with the real sign and thousands separators (e.g., "-R$1,234.56").
func Currency(amount decimal.Decimal) string {
	formatted := formatPositiveCurrency(amount.Abs())
	if amount.IsNegative() && formatted != "0.00" {
		return "-" + CurrencySymbol + formatted
	}
	return CurrencySymbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount decimal.Decimal) string {
	formatted := formatPositiveCurrency(amount.Abs())
	if amount.IsNegative() && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// Ratio renders a profit ratio with constants.RatioDisplayPrecision places.
func Ratio(ratio decimal.Decimal) string {
	return ratio.StringFixed(constants.RatioDisplayPrecision)
}

// Percent renders a ratio as a percentage with two places (e.g., "12.34%").
func Percent(ratio decimal.Decimal) string {
	return ratio.Mul(hundred).StringFixed(constants.DisplayPrecision) + "%"
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.DisplayPrecision)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}

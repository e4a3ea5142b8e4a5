// Package format renders money amounts for display.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/debt-planner/pkg/constants"
)

// Currency returns an amount with the given symbol and thousands separators
// (e.g., "-£1,234.56"). An empty symbol uses the default.
func Currency(amount float64, symbol string) string {
	if symbol == "" {
		symbol = constants.DefaultCurrencySymbol
	}
	formatted := groupThousands(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	formatted := groupThousands(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// Percent renders a percentage with two decimals.
func Percent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// Months renders a month count as years and months, e.g. "2y 3m".
func Months(n int) string {
	switch {
	case n < constants.MonthsPerYear:
		return fmt.Sprintf("%dm", n)
	case n%constants.MonthsPerYear == 0:
		return fmt.Sprintf("%dy", n/constants.MonthsPerYear)
	}
	return fmt.Sprintf("%dy %dm", n/constants.MonthsPerYear, n%constants.MonthsPerYear)
}

func groupThousands(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	intPart, decPart, found := strings.Cut(formatted, ".")
	if !found {
		decPart = "00"
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

package utils

import (
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount the way it appears in routing and validation messages.
// Example: 12.3 returns "$12.30"
func FormatMoney(amount decimal.Decimal) string {
	return "$" + FormatWithPrecision(amount, 2)
}

// FormatWithPrecision formats an amount with the given number of decimal places, padding with zeros.
// Example: amount 12.3456 with precision 2 returns "12.35"
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}

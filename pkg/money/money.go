// Package money holds the decimal helpers shared by the invoice and catalog code.
package money

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits stored for every amount.
const Scale = 2

func init() {
	// Amounts are rendered as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Round rounds half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// LineTotal is round(price * quantity, 2).
func LineTotal(price decimal.Decimal, quantity int64) decimal.Decimal {
	return Round(price.Mul(decimal.NewFromInt(quantity)))
}

// Format renders d with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

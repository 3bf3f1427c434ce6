// Package money centralizes price arithmetic. All amounts are
// shopspring decimals; binary floating point never touches a price.
package money

import "github.com/shopspring/decimal"

// Round2 rounds to 2 fractional digits, half away from zero.
// Prices and deltas are non-negative here, so this matches half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal computes the total for one order line:
// round2((unitPrice + optionTotal) * quantity).
func LineTotal(unitPrice, optionTotal decimal.Decimal, quantity int32) decimal.Decimal {
	return Round2(unitPrice.Add(optionTotal).Mul(decimal.NewFromInt32(quantity)))
}

// Sum adds a sequence of amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Cents converts an amount to integer minor units for the payment
// provider (e.g. 10.99 -> 1099).
func Cents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

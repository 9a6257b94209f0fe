package calculator

import "github.com/shopspring/decimal"

// Tolerances used for equality checks on money. They are part of the stored
// data contract: tightening them rejects previously valid expenses and
// loosening them accepts previously invalid ones.
var (
	// SplitSumTolerance bounds |sum(splits) - amount| for a stored expense.
	SplitSumTolerance = decimal.New(10, -2)

	// PercentageTolerance bounds |sum(percentages) - 100|.
	PercentageTolerance = decimal.New(1, -2)

	// ZeroThreshold is the smallest balance treated as outstanding.
	ZeroThreshold = decimal.New(1, -2)
)

// centPlaces is the number of decimal places kept for split shares.
const centPlaces = 2

var hundred = decimal.NewFromInt(100)

// roundCents rounds d half away from zero to whole cents.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(centPlaces)
}

// isSettled reports whether d rounds to exactly zero cents.
func isSettled(d decimal.Decimal) bool {
	return roundCents(d).IsZero()
}

// sum adds up amounts.
func sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

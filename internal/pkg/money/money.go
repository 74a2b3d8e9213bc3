package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to 2 decimal places (half away from zero
// on the rounded cent). Every money-bearing figure in the system goes
// through this helper before it is stored or returned.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FloorZero clamps a balance at zero. Overpaid credits report 0.00, never
// a negative remainder.
func FloorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

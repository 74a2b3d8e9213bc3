package domain

import (
	"math"
	"time"

	"creditdesk/internal/pkg/money"
)

// ScheduleEntry is one row of an amortization schedule.
type ScheduleEntry struct {
	Number           int       `json:"number"`
	DueDate          time.Time `json:"due_date"`
	Total            float64   `json:"total"`
	Principal        float64   `json:"principal"`
	Interest         float64   `json:"interest"`
	RemainingBalance float64   `json:"remaining_balance"`
}

// MonthlyRate converts a nominal annual rate in percent to a monthly rate.
func MonthlyRate(annualRatePct float64) float64 {
	return annualRatePct / 100.0 / 12.0
}

// MonthlyPayment computes the fixed monthly installment for a fully
// amortizing loan:
//
//	M = P * (r * (1+r)^n) / ((1+r)^n - 1)
//
// with r the monthly rate and n the term in months. At a zero rate the
// principal is simply split evenly. The result is rounded to 2 decimals
// immediately; schedule rows and total-obligation figures are derived from
// this rounded value.
func MonthlyPayment(principal, annualRatePct float64, termMonths int) float64 {
	r := MonthlyRate(annualRatePct)
	if r == 0 {
		return money.Round2(principal / float64(termMonths))
	}
	factor := math.Pow(1+r, float64(termMonths))
	return money.Round2(principal * (r * factor / (factor - 1)))
}

// TotalObligation is the total amount owed over the life of the loan,
// derived from the rounded monthly payment rather than the per-row sum.
func TotalObligation(principal, annualRatePct float64, termMonths int) float64 {
	return money.Round2(MonthlyPayment(principal, annualRatePct, termMonths) * float64(termMonths))
}

// BuildSchedule generates the full payment schedule. Each row's interest is
// accrued on the running balance; the final row's principal is forced to the
// exact remaining balance so accumulated rounding drift is absorbed and the
// schedule closes at 0.00. Returns nil for non-positive principal or term.
func BuildSchedule(principal, annualRatePct float64, termMonths int, startDate time.Time) []ScheduleEntry {
	if principal <= 0 || termMonths <= 0 || annualRatePct < 0 {
		return nil
	}

	m := MonthlyPayment(principal, annualRatePct, termMonths)
	r := MonthlyRate(annualRatePct)

	entries := make([]ScheduleEntry, 0, termMonths)
	balance := principal

	for month := 1; month <= termMonths; month++ {
		interest := balance * r
		principalPart := m - interest
		total := m

		if month == termMonths {
			// Absorb rounding drift: pay off whatever is left exactly.
			principalPart = balance
			total = money.Round2(principalPart + interest)
		}

		balance -= principalPart
		balance = money.Round2(balance)

		entries = append(entries, ScheduleEntry{
			Number:           month,
			DueDate:          startDate.AddDate(0, month, 0),
			Total:            total,
			Principal:        money.Round2(principalPart),
			Interest:         money.Round2(interest),
			RemainingBalance: balance,
		})
	}

	return entries
}

// WholeMonthsBetween returns the number of whole calendar months from one
// date to a later one. Returns 0 when to precedes from.
func WholeMonthsBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

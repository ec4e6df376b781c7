package finance

import "time"

// WholeMonthsBetween counts full calendar months elapsed from one instant to
// another, ignoring partial months: Jan 15 -> Feb 14 is 0 months, Jan 15 ->
// Feb 15 is 1. Returns 0 when to precedes from.
func WholeMonthsBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	// Anchoring from forward by the candidate count may overshoot when the
	// day (or time of day) has not been reached yet.
	for months > 0 && AddMonths(from, months).After(to) {
		months--
	}
	return months
}

// MonthlyInterest computes simple monthly interest on a balance at an annual
// nominal rate (percent) over a number of whole months. The amount is not
// rounded; the ledger keeps the exact figure so repeated postings reconcile.
func MonthlyInterest(balance, annualRate float64, months int) float64 {
	if months < 1 || balance <= 0 {
		return 0
	}
	return balance * (annualRate / 100 / 12) * float64(months)
}

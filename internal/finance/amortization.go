package finance

import (
	"fmt"
	"math"
)

// LoanTerms is the result of an amortization computation, in currency units
// rounded to 2 decimals.
type LoanTerms struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalAmount    float64 `json:"total_amount"`
	TotalInterest  float64 `json:"total_interest"`
}

// ComputeLoan computes the monthly payment, total repayment and total
// interest for a principal at an annual nominal rate (percent) over a term in
// months, using the standard annuity formula. A zero rate falls back to flat
// division of the principal.
func ComputeLoan(principal, annualRate float64, termMonths int) (LoanTerms, error) {
	if principal <= 0 {
		return LoanTerms{}, fmt.Errorf("principal must be positive, got %.2f", principal)
	}
	if annualRate < 0 {
		return LoanTerms{}, fmt.Errorf("interest rate must not be negative, got %.2f", annualRate)
	}
	if termMonths < 1 {
		return LoanTerms{}, fmt.Errorf("term must be at least 1 month, got %d", termMonths)
	}

	rate := annualRate / 100 / 12
	var monthly float64
	if rate > 0 {
		factor := math.Pow(1+rate, float64(termMonths))
		monthly = principal * rate * factor / (factor - 1)
	} else {
		monthly = principal / float64(termMonths)
	}

	total := monthly * float64(termMonths)
	terms := LoanTerms{
		MonthlyPayment: Round2(monthly),
		TotalAmount:    Round2(total),
	}
	terms.TotalInterest = Round2(terms.TotalAmount - principal)
	return terms, nil
}

// Round2 rounds a currency amount to 2 decimals. No sub-cent tracking.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package finance

// ActiveCreditStanding describes one currently active credit of a client for
// scoring purposes.
type ActiveCreditStanding struct {
	AmountPaid          float64
	TotalAmount         float64
	OverdueInstallments int
}

// CreditScore derives a 0-100 creditworthiness score from a client's credit
// history. Clients with no history score the neutral base of 50; completed
// credits raise the score, overdue installments on active credits lower it.
// The score is a point-in-time snapshot, recomputed on demand.
func CreditScore(totalCredits, completedCredits int, active []ActiveCreditStanding) float64 {
	if totalCredits == 0 {
		return 50
	}

	score := 50.0
	score += float64(completedCredits) / float64(totalCredits) * 30

	for _, c := range active {
		if c.AmountPaid > 0 && c.TotalAmount > 0 {
			score += c.AmountPaid / c.TotalAmount * 10
		}
		score -= float64(c.OverdueInstallments) * 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Round2(score)
}

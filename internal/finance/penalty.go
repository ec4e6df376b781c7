package finance

import (
	"time"

	"github.com/dibasaye/finance-manager/internal/models"
)

// Penalty recomputes the accrued late-payment penalty of a credit from its
// schedule. For every unpaid installment past due by more than the grace
// period, the penalty is the expected amount times the penalty rate,
// pro-rated over 30-day periods of actual lateness. The result replaces the
// stored penalty; recomputation is idempotent.
func Penalty(schedule []models.PaymentSchedule, penaltyRate float64, graceDays int, today time.Time) float64 {
	day := DateOnly(today)
	total := 0.0
	for _, inst := range schedule {
		if inst.Paid {
			continue
		}
		due := DateOnly(inst.DueDate)
		if !due.Before(day) {
			continue
		}
		daysLate := int(day.Sub(due).Hours() / 24)
		if daysLate > graceDays {
			total += inst.ExpectedAmount * penaltyRate * float64(daysLate) / 30
		}
	}
	return Round2(total)
}

// DateOnly truncates a timestamp to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

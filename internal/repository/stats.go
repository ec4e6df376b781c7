package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dibasaye/finance-manager/internal/models"
)

// DashboardStats computes portfolio aggregates from a read-only snapshot.
// now anchors the date-relative figures; alertWindowDays is the look-ahead
// for upcoming installments.
func (r *Repository) DashboardStats(ctx context.Context, now time.Time, alertWindowDays int) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	counts := []struct {
		query string
		args  []any
		dest  *int
	}{
		{`SELECT COUNT(*) FROM clients`, nil, &stats.TotalClients},
		{`SELECT COUNT(*) FROM credits`, nil, &stats.TotalCredits},
		{`SELECT COUNT(*) FROM credits WHERE status = $1`, []any{models.CreditStatusPending}, &stats.PendingCredits},
		{`SELECT COUNT(*) FROM credits WHERE status = $1`, []any{models.CreditStatusActive}, &stats.ActiveCredits},
		{`SELECT COUNT(*) FROM credits WHERE status = $1`, []any{models.CreditStatusCompleted}, &stats.CompletedCredits},
		{`SELECT COUNT(*) FROM credits WHERE status = $1`, []any{models.CreditStatusRejected}, &stats.RejectedCredits},
		{`SELECT COUNT(*) FROM savings_accounts`, nil, &stats.TotalSavings},
		{`SELECT COUNT(*) FROM credits WHERE status = $1 AND penalty_amount > 0`, []any{models.CreditStatusActive}, &stats.RiskClients},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to compute dashboard counts: %w", err)
		}
	}

	sums := []struct {
		query string
		args  []any
		dest  *float64
	}{
		{`SELECT SUM(amount) FROM credits WHERE status IN ($1, $2)`,
			[]any{models.CreditStatusActive, models.CreditStatusApproved}, &stats.TotalCreditAmount},
		{`SELECT SUM(amount_paid) FROM credits WHERE status IN ($1, $2)`,
			[]any{models.CreditStatusActive, models.CreditStatusApproved}, &stats.TotalCreditPaid},
		{`SELECT AVG(amount) FROM credits WHERE status IN ($1, $2)`,
			[]any{models.CreditStatusActive, models.CreditStatusApproved}, &stats.AvgCreditAmount},
		{`SELECT SUM(balance) FROM savings_accounts WHERE status = $1`,
			[]any{models.SavingsStatusActive}, &stats.TotalSavingsBalance},
		{`SELECT AVG(balance) FROM savings_accounts WHERE status = $1`,
			[]any{models.SavingsStatusActive}, &stats.AvgSavingsBalance},
		{`SELECT SUM(amount) FROM credit_payments`, nil, &stats.TotalPayments},
	}
	for _, s := range sums {
		var v sql.NullFloat64
		if err := r.db.QueryRowContext(ctx, s.query, s.args...).Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to compute dashboard sums: %w", err)
		}
		*s.dest = v.Float64
	}

	if stats.TotalCreditAmount > 0 {
		stats.RepaymentRate = stats.TotalCreditPaid / stats.TotalCreditAmount * 100
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := today.AddDate(0, 0, alertWindowDays)
	thirtyDaysAgo := now.AddDate(0, 0, -30)

	dateCounts := []struct {
		query string
		args  []any
		dest  *int
	}{
		{`SELECT COUNT(*) FROM payment_schedule WHERE paid = FALSE AND due_date >= $1 AND due_date <= $2`,
			[]any{today, windowEnd}, &stats.UpcomingDue},
		{`SELECT COUNT(*) FROM payment_schedule WHERE paid = FALSE AND due_date < $1`,
			[]any{today}, &stats.Overdue},
		{`SELECT COUNT(*) FROM clients WHERE created_at >= $1`, []any{thirtyDaysAgo}, &stats.NewClientsMonth},
		{`SELECT COUNT(*) FROM credits WHERE application_date >= $1`, []any{thirtyDaysAgo}, &stats.NewCreditsMonth},
	}
	for _, c := range dateCounts {
		if err := r.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to compute dashboard date counts: %w", err)
		}
	}

	return stats, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dibasaye/finance-manager/internal/models"
)

const creditColumns = `id, credit_number, client_id, product_id, amount, interest_rate, duration_months,
		monthly_payment, total_amount, amount_paid, penalty_amount, status,
		application_date, approval_date, disbursement_date, notes, collateral, credit_score, version`

func scanCredit(row interface{ Scan(...any) error }) (*models.Credit, error) {
	c := &models.Credit{}
	err := row.Scan(&c.ID, &c.CreditNumber, &c.ClientID, &c.ProductID, &c.Amount, &c.InterestRate,
		&c.DurationMonths, &c.MonthlyPayment, &c.TotalAmount, &c.AmountPaid, &c.PenaltyAmount,
		&c.Status, &c.ApplicationDate, &c.ApprovalDate, &c.DisbursementDate, &c.Notes,
		&c.Collateral, &c.CreditScore, &c.Version)
	return c, err
}

// CreateCredit creates a new credit in the database
func (r *Repository) CreateCredit(ctx context.Context, credit *models.Credit) error {
	query := `
		INSERT INTO credits (credit_number, client_id, product_id, amount, interest_rate, duration_months,
			monthly_payment, total_amount, amount_paid, penalty_amount, status,
			application_date, approval_date, disbursement_date, notes, collateral, credit_score, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		credit.CreditNumber, credit.ClientID, credit.ProductID, credit.Amount, credit.InterestRate,
		credit.DurationMonths, credit.MonthlyPayment, credit.TotalAmount, credit.AmountPaid,
		credit.PenaltyAmount, credit.Status, credit.ApplicationDate, credit.ApprovalDate,
		credit.DisbursementDate, credit.Notes, credit.Collateral, credit.CreditScore, credit.Version).
		Scan(&credit.ID)
	if err != nil {
		return fmt.Errorf("failed to create credit: %w", err)
	}
	return nil
}

// UpdateCredit persists a credit mutation. The row version must match the
// one the credit was read with; on mismatch the update is rejected with
// ErrConflict and nothing is written.
func (r *Repository) UpdateCredit(ctx context.Context, credit *models.Credit) error {
	query := `
		UPDATE credits
		SET amount_paid = $2, penalty_amount = $3, status = $4, approval_date = $5,
		    disbursement_date = $6, notes = $7, credit_score = $8, version = version + 1
		WHERE id = $1 AND version = $9`
	result, err := r.db.ExecContext(ctx, query,
		credit.ID, credit.AmountPaid, credit.PenaltyAmount, credit.Status, credit.ApprovalDate,
		credit.DisbursementDate, credit.Notes, credit.CreditScore, credit.Version)
	if err != nil {
		return fmt.Errorf("failed to update credit: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("credit %d: %w", credit.ID, ErrConflict)
	}
	credit.Version++
	return nil
}

// FindCreditByID retrieves a credit by primary key
func (r *Repository) FindCreditByID(ctx context.Context, id int64) (*models.Credit, error) {
	credit, err := scanCredit(r.db.QueryRowContext(ctx,
		`SELECT `+creditColumns+` FROM credits WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("credit %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credit: %w", err)
	}
	return credit, nil
}

// ListCredits retrieves credits, optionally filtered by status, newest first
func (r *Repository) ListCredits(ctx context.Context, status string) ([]models.Credit, error) {
	query := `SELECT ` + creditColumns + `
		FROM credits
		WHERE ($1 = '' OR status = $1)
		ORDER BY application_date DESC, id DESC`
	return r.listCredits(ctx, query, status)
}

// ListCreditsByClient retrieves all credits of one client, newest first
func (r *Repository) ListCreditsByClient(ctx context.Context, clientID int64) ([]models.Credit, error) {
	query := `SELECT ` + creditColumns + `
		FROM credits
		WHERE client_id = $1
		ORDER BY application_date DESC, id DESC`
	return r.listCredits(ctx, query, clientID)
}

func (r *Repository) listCredits(ctx context.Context, query string, args ...any) ([]models.Credit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	defer rows.Close()

	var credits []models.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit: %w", err)
		}
		credits = append(credits, *c)
	}
	return credits, rows.Err()
}

// CreditNumberTaken reports whether an external credit number exists
func (r *Repository) CreditNumberTaken(ctx context.Context, creditNumber string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM credits WHERE credit_number = $1)`, creditNumber).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check credit number: %w", err)
	}
	return taken, nil
}

// ReplaceSchedule deletes any existing installments of a credit and inserts
// the given ones. Regeneration is idempotent: the schedule always ends up
// with exactly the installments passed in.
func (r *Repository) ReplaceSchedule(ctx context.Context, creditID int64, installments []models.PaymentSchedule) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM payment_schedule WHERE credit_id = $1`, creditID); err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}
	query := `
		INSERT INTO payment_schedule (credit_id, installment_number, due_date, expected_amount, paid, paid_date, paid_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	for i := range installments {
		inst := &installments[i]
		err := r.db.QueryRowContext(ctx, query,
			creditID, inst.InstallmentNumber, inst.DueDate, inst.ExpectedAmount,
			inst.Paid, inst.PaidDate, inst.PaidAmount).
			Scan(&inst.ID)
		if err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", inst.InstallmentNumber, err)
		}
		inst.CreditID = creditID
	}
	return nil
}

// ListSchedule retrieves the payment schedule of a credit ordered by
// installment number
func (r *Repository) ListSchedule(ctx context.Context, creditID int64) ([]models.PaymentSchedule, error) {
	query := `
		SELECT id, credit_id, installment_number, due_date, expected_amount, paid, paid_date, paid_amount
		FROM payment_schedule
		WHERE credit_id = $1
		ORDER BY installment_number`
	rows, err := r.db.QueryContext(ctx, query, creditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	defer rows.Close()

	var schedule []models.PaymentSchedule
	for rows.Next() {
		var s models.PaymentSchedule
		if err := rows.Scan(&s.ID, &s.CreditID, &s.InstallmentNumber, &s.DueDate,
			&s.ExpectedAmount, &s.Paid, &s.PaidDate, &s.PaidAmount); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		schedule = append(schedule, s)
	}
	return schedule, rows.Err()
}

// ListUnpaidInstallmentsDueBetween retrieves unpaid installments with a due
// date in [from, to], inclusive
func (r *Repository) ListUnpaidInstallmentsDueBetween(ctx context.Context, from, to time.Time) ([]models.PaymentSchedule, error) {
	query := `
		SELECT id, credit_id, installment_number, due_date, expected_amount, paid, paid_date, paid_amount
		FROM payment_schedule
		WHERE paid = FALSE AND due_date >= $1 AND due_date <= $2
		ORDER BY due_date, id`
	return r.listInstallments(ctx, query, from, to)
}

// ListUnpaidInstallmentsDueBefore retrieves unpaid installments due strictly
// before the given day
func (r *Repository) ListUnpaidInstallmentsDueBefore(ctx context.Context, before time.Time) ([]models.PaymentSchedule, error) {
	query := `
		SELECT id, credit_id, installment_number, due_date, expected_amount, paid, paid_date, paid_amount
		FROM payment_schedule
		WHERE paid = FALSE AND due_date < $1
		ORDER BY due_date, id`
	return r.listInstallments(ctx, query, before)
}

func (r *Repository) listInstallments(ctx context.Context, query string, args ...any) ([]models.PaymentSchedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var installments []models.PaymentSchedule
	for rows.Next() {
		var s models.PaymentSchedule
		if err := rows.Scan(&s.ID, &s.CreditID, &s.InstallmentNumber, &s.DueDate,
			&s.ExpectedAmount, &s.Paid, &s.PaidDate, &s.PaidAmount); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, s)
	}
	return installments, rows.Err()
}

// CreateCreditPayment records a payment event against a credit
func (r *Repository) CreateCreditPayment(ctx context.Context, payment *models.CreditPayment) error {
	query := `
		INSERT INTO credit_payments (credit_id, amount, payment_date, payment_method, reference, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		payment.CreditID, payment.Amount, payment.PaymentDate, payment.PaymentMethod,
		payment.Reference, payment.Notes).
		Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to create credit payment: %w", err)
	}
	return nil
}

// ListCreditPayments retrieves the payment history of a credit, newest first
func (r *Repository) ListCreditPayments(ctx context.Context, creditID int64) ([]models.CreditPayment, error) {
	query := `
		SELECT id, credit_id, amount, payment_date, payment_method, reference, notes
		FROM credit_payments
		WHERE credit_id = $1
		ORDER BY payment_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, creditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit payments: %w", err)
	}
	defer rows.Close()

	var payments []models.CreditPayment
	for rows.Next() {
		var p models.CreditPayment
		if err := rows.Scan(&p.ID, &p.CreditID, &p.Amount, &p.PaymentDate,
			&p.PaymentMethod, &p.Reference, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan credit payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SumCreditPayments returns the total of all recorded payment events for a
// credit. Used to verify that payment history reconciles with amount_paid.
func (r *Repository) SumCreditPayments(ctx context.Context, creditID int64) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM credit_payments WHERE credit_id = $1`, creditID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum credit payments: %w", err)
	}
	return total.Float64, nil
}

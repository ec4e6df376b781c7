package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dibasaye/finance-manager/internal/models"
)

const savingsColumns = `id, account_number, client_id, product_id, balance, interest_rate, status, opening_date, closing_date, version`

func scanSavingsAccount(row interface{ Scan(...any) error }) (*models.SavingsAccount, error) {
	a := &models.SavingsAccount{}
	err := row.Scan(&a.ID, &a.AccountNumber, &a.ClientID, &a.ProductID, &a.Balance,
		&a.InterestRate, &a.Status, &a.OpeningDate, &a.ClosingDate, &a.Version)
	return a, err
}

// CreateSavingsAccount creates a new savings account in the database
func (r *Repository) CreateSavingsAccount(ctx context.Context, account *models.SavingsAccount) error {
	query := `
		INSERT INTO savings_accounts (account_number, client_id, product_id, balance, interest_rate, status, opening_date, closing_date, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		account.AccountNumber, account.ClientID, account.ProductID, account.Balance,
		account.InterestRate, account.Status, account.OpeningDate, account.ClosingDate, account.Version).
		Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to create savings account: %w", err)
	}
	return nil
}

// UpdateSavingsAccount persists an account mutation with an optimistic
// version check; a stale version is rejected with ErrConflict.
func (r *Repository) UpdateSavingsAccount(ctx context.Context, account *models.SavingsAccount) error {
	query := `
		UPDATE savings_accounts
		SET balance = $2, status = $3, closing_date = $4, version = version + 1
		WHERE id = $1 AND version = $5`
	result, err := r.db.ExecContext(ctx, query,
		account.ID, account.Balance, account.Status, account.ClosingDate, account.Version)
	if err != nil {
		return fmt.Errorf("failed to update savings account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("savings account %d: %w", account.ID, ErrConflict)
	}
	account.Version++
	return nil
}

// FindSavingsAccountByID retrieves a savings account by primary key
func (r *Repository) FindSavingsAccountByID(ctx context.Context, id int64) (*models.SavingsAccount, error) {
	account, err := scanSavingsAccount(r.db.QueryRowContext(ctx,
		`SELECT `+savingsColumns+` FROM savings_accounts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("savings account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find savings account: %w", err)
	}
	return account, nil
}

// ListSavingsAccounts retrieves savings accounts, newest first
func (r *Repository) ListSavingsAccounts(ctx context.Context) ([]models.SavingsAccount, error) {
	query := `SELECT ` + savingsColumns + `
		FROM savings_accounts
		ORDER BY opening_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.SavingsAccount
	for rows.Next() {
		a, err := scanSavingsAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan savings account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// AccountNumberTaken reports whether an external account number exists
func (r *Repository) AccountNumberTaken(ctx context.Context, accountNumber string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM savings_accounts WHERE account_number = $1)`, accountNumber).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return taken, nil
}

// CreateSavingsTransaction appends a ledger entry for a savings account
func (r *Repository) CreateSavingsTransaction(ctx context.Context, txn *models.SavingsTransaction) error {
	query := `
		INSERT INTO savings_transactions (account_id, transaction_type, amount, transaction_date, balance_after, payment_method, reference, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		txn.AccountID, txn.TransactionType, txn.Amount, txn.TransactionDate,
		txn.BalanceAfter, txn.PaymentMethod, txn.Reference, txn.Notes).
		Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("failed to create savings transaction: %w", err)
	}
	return nil
}

// ListSavingsTransactions retrieves the ledger of an account, newest first
func (r *Repository) ListSavingsTransactions(ctx context.Context, accountID int64) ([]models.SavingsTransaction, error) {
	query := `
		SELECT id, account_id, transaction_type, amount, transaction_date, balance_after, payment_method, reference, notes
		FROM savings_transactions
		WHERE account_id = $1
		ORDER BY transaction_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.SavingsTransaction
	for rows.Next() {
		var t models.SavingsTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.TransactionType, &t.Amount, &t.TransactionDate,
			&t.BalanceAfter, &t.PaymentMethod, &t.Reference, &t.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan savings transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// FindLastInterestTransaction retrieves the most recent interest posting of
// an account, or ErrNotFound when interest has never been posted.
func (r *Repository) FindLastInterestTransaction(ctx context.Context, accountID int64) (*models.SavingsTransaction, error) {
	t := &models.SavingsTransaction{}
	query := `
		SELECT id, account_id, transaction_type, amount, transaction_date, balance_after, payment_method, reference, notes
		FROM savings_transactions
		WHERE account_id = $1 AND transaction_type = $2
		ORDER BY transaction_date DESC, id DESC
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, accountID, models.TransactionTypeInterest).
		Scan(&t.ID, &t.AccountID, &t.TransactionType, &t.Amount, &t.TransactionDate,
			&t.BalanceAfter, &t.PaymentMethod, &t.Reference, &t.Notes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("interest transaction for account %d: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find interest transaction: %w", err)
	}
	return t, nil
}

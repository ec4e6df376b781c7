package models

import "time"

// Savings transaction types
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeInterest   = "interest"
)

// SavingsTransaction is an immutable ledger entry. BalanceAfter equals the
// account balance immediately after the transaction was applied.
type SavingsTransaction struct {
	ID              int64     `json:"id"`
	AccountID       int64     `json:"account_id"`
	TransactionType string    `json:"transaction_type"`
	Amount          float64   `json:"amount"`
	TransactionDate time.Time `json:"transaction_date"`
	BalanceAfter    float64   `json:"balance_after"`
	PaymentMethod   string    `json:"payment_method"`
	Reference       string    `json:"reference"`
	Notes           string    `json:"notes"`
}

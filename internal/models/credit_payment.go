package models

import "time"

// CreditPayment records a single payment event against a credit.
// Immutable once created.
type CreditPayment struct {
	ID            int64     `json:"id"`
	CreditID      int64     `json:"credit_id"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentMethod string    `json:"payment_method"`
	Reference     string    `json:"reference"`
	Notes         string    `json:"notes"`
}

package models

import "time"

// Savings account statuses
const (
	SavingsStatusActive = "active"
	SavingsStatusClosed = "closed"
)

// SavingsAccount represents a client savings account. InterestRate is a
// snapshot of the product rate at opening time.
type SavingsAccount struct {
	ID            int64      `json:"id"`
	AccountNumber string     `json:"account_number"` // external identifier, SAV prefix
	ClientID      int64      `json:"client_id"`
	ProductID     int64      `json:"product_id"`
	Balance       float64    `json:"balance"`
	InterestRate  float64    `json:"interest_rate"` // annual nominal rate, percent
	Status        string     `json:"status"`
	OpeningDate   time.Time  `json:"opening_date"`
	ClosingDate   *time.Time `json:"closing_date,omitempty"`
	Version       int64      `json:"-"` // optimistic locking, bumped on every update
}

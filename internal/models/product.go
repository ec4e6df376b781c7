package models

import "time"

// Product types
const (
	ProductTypeCredit  = "credit"
	ProductTypeSavings = "savings"
)

// Product defines a financial offering. Once a credit or savings account has
// been issued against it the rate fields must not be edited (business rule,
// issued entities carry their own rate snapshot either way).
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ProductType  string    `json:"product_type"`
	InterestRate float64   `json:"interest_rate"` // annual nominal rate, percent
	MinAmount    float64   `json:"min_amount"`
	MaxAmount    float64   `json:"max_amount"`
	MinDuration  int       `json:"min_duration"` // months
	MaxDuration  int       `json:"max_duration"` // months
	Description  string    `json:"description"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

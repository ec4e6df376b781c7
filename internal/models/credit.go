package models

import "time"

// Credit statuses. Transitions are monotonic: pending -> approved -> active
// -> completed, with pending -> rejected as the only alternative.
const (
	CreditStatusPending   = "pending"
	CreditStatusApproved  = "approved"
	CreditStatusActive    = "active"
	CreditStatusCompleted = "completed"
	CreditStatusRejected  = "rejected"
)

// Credit represents a loan issued to a client. InterestRate is a snapshot of
// the product rate at application time, not a live reference.
type Credit struct {
	ID               int64      `json:"id"`
	CreditNumber     string     `json:"credit_number"` // external identifier, CRD prefix
	ClientID         int64      `json:"client_id"`
	ProductID        int64      `json:"product_id"`
	Amount           float64    `json:"amount"`
	InterestRate     float64    `json:"interest_rate"`
	DurationMonths   int        `json:"duration_months"`
	MonthlyPayment   float64    `json:"monthly_payment"`
	TotalAmount      float64    `json:"total_amount"`
	AmountPaid       float64    `json:"amount_paid"`
	PenaltyAmount    float64    `json:"penalty_amount"`
	Status           string     `json:"status"`
	ApplicationDate  time.Time  `json:"application_date"`
	ApprovalDate     *time.Time `json:"approval_date,omitempty"`
	DisbursementDate *time.Time `json:"disbursement_date,omitempty"`
	Notes            string     `json:"notes"`
	Collateral       string     `json:"collateral"`
	CreditScore      float64    `json:"credit_score"`
	Version          int64      `json:"-"` // optimistic locking, bumped on every update
}

// Balance is the outstanding amount including accrued penalties.
func (c *Credit) Balance() float64 {
	return c.TotalAmount + c.PenaltyAmount - c.AmountPaid
}

// ProgressPercentage reports repayment progress against the total.
func (c *Credit) ProgressPercentage() float64 {
	if c.TotalAmount > 0 {
		return c.AmountPaid / c.TotalAmount * 100
	}
	return 0
}

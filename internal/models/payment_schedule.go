package models

import "time"

// PaymentSchedule represents one expected installment of a credit.
// InstallmentNumber is unique within a credit and due dates increase with it.
type PaymentSchedule struct {
	ID                int64      `json:"id"`
	CreditID          int64      `json:"credit_id"`
	InstallmentNumber int        `json:"installment_number"`
	DueDate           time.Time  `json:"due_date"`
	ExpectedAmount    float64    `json:"expected_amount"`
	Paid              bool       `json:"paid"`
	PaidDate          *time.Time `json:"paid_date,omitempty"`
	PaidAmount        float64    `json:"paid_amount"`
}

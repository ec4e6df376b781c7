package models

// DashboardStats aggregates portfolio figures for the dashboard view.
// Computed from a read-only snapshot; staleness is acceptable.
type DashboardStats struct {
	TotalClients        int     `json:"total_clients"`
	TotalCredits        int     `json:"total_credits"`
	PendingCredits      int     `json:"pending_credits"`
	ActiveCredits       int     `json:"active_credits"`
	CompletedCredits    int     `json:"completed_credits"`
	RejectedCredits     int     `json:"rejected_credits"`
	TotalSavings        int     `json:"total_savings"`
	TotalCreditAmount   float64 `json:"total_credit_amount"`
	TotalCreditPaid     float64 `json:"total_credit_paid"`
	TotalSavingsBalance float64 `json:"total_savings_balance"`
	TotalPayments       float64 `json:"total_payments"`
	AvgCreditAmount     float64 `json:"avg_credit_amount"`
	AvgSavingsBalance   float64 `json:"avg_savings_balance"`
	RepaymentRate       float64 `json:"repayment_rate"` // TotalCreditPaid / TotalCreditAmount, percent
	RiskClients         int     `json:"risk_clients"`   // active credits carrying a penalty
	UpcomingDue         int     `json:"upcoming_due"`   // unpaid installments due within the alert window
	Overdue             int     `json:"overdue"`        // unpaid installments past due
	NewClientsMonth     int     `json:"new_clients_month"`
	NewCreditsMonth     int     `json:"new_credits_month"`
}

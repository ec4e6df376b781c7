package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dibasaye/finance-manager/internal/finance"
	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
	"github.com/dibasaye/finance-manager/internal/utils"
)

// CreditApplication carries the fields of a credit application
type CreditApplication struct {
	ClientID       int64   `json:"client_id"`
	ProductID      int64   `json:"product_id"`
	Amount         float64 `json:"amount"`
	DurationMonths int     `json:"duration_months"`
	Notes          string  `json:"notes"`
	Collateral     string  `json:"collateral"`
}

// CreditDetail bundles a credit with its schedule and payment history
type CreditDetail struct {
	Credit   *models.Credit           `json:"credit"`
	Schedule []models.PaymentSchedule `json:"schedule"`
	Payments []models.CreditPayment   `json:"payments"`
}

// LoanSimulation is the result of a what-if loan computation. Nothing is
// persisted.
type LoanSimulation struct {
	Amount         float64     `json:"amount"`
	InterestRate   float64     `json:"interest_rate"`
	DurationMonths int         `json:"duration_months"`
	MonthlyPayment float64     `json:"monthly_payment"`
	TotalAmount    float64     `json:"total_amount"`
	TotalInterest  float64     `json:"total_interest"`
	DueDates       []time.Time `json:"due_dates"`
}

// creditProduct loads a product and checks that the requested amount and
// duration fall inside its bounds.
func (s *Service) creditProduct(ctx context.Context, productID int64, amount float64, durationMonths int) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	if product.ProductType != models.ProductTypeCredit {
		return nil, validationf("product %q is not a credit product", product.Name)
	}
	if !product.Active {
		return nil, validationf("product %q is not active", product.Name)
	}
	if amount < product.MinAmount || amount > product.MaxAmount {
		return nil, validationf("amount %.2f outside product bounds [%.2f, %.2f]",
			amount, product.MinAmount, product.MaxAmount)
	}
	if durationMonths < product.MinDuration || durationMonths > product.MaxDuration {
		return nil, validationf("duration %d months outside product bounds [%d, %d]",
			durationMonths, product.MinDuration, product.MaxDuration)
	}
	return product, nil
}

// SimulateLoan computes the terms and due dates a credit application would
// produce, without creating anything.
func (s *Service) SimulateLoan(ctx context.Context, productID int64, amount float64, durationMonths int) (*LoanSimulation, error) {
	product, err := s.creditProduct(ctx, productID, amount, durationMonths)
	if err != nil {
		return nil, err
	}
	terms, err := finance.ComputeLoan(amount, product.InterestRate, durationMonths)
	if err != nil {
		return nil, validationf("%s", err)
	}
	return &LoanSimulation{
		Amount:         amount,
		InterestRate:   product.InterestRate,
		DurationMonths: durationMonths,
		MonthlyPayment: terms.MonthlyPayment,
		TotalAmount:    terms.TotalAmount,
		TotalInterest:  terms.TotalInterest,
		DueDates:       finance.InstallmentDates(s.now(), durationMonths),
	}, nil
}

// ApplyForCredit creates a pending credit for a client. The product rate and
// the client's score are snapshotted on the credit at application time.
func (s *Service) ApplyForCredit(ctx context.Context, input CreditApplication) (*models.Credit, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.FindClientByID(ctx, input.ClientID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	product, err := s.creditProduct(ctx, input.ProductID, input.Amount, input.DurationMonths)
	if err != nil {
		return nil, err
	}

	terms, err := finance.ComputeLoan(input.Amount, product.InterestRate, input.DurationMonths)
	if err != nil {
		return nil, validationf("%s", err)
	}
	score, err := s.ClientCreditScore(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	number, err := s.uniqueIdentifier(ctx, utils.CreditPrefix, s.repo.CreditNumberTaken)
	if err != nil {
		return nil, err
	}

	credit := &models.Credit{
		CreditNumber:    number,
		ClientID:        client.ID,
		ProductID:       product.ID,
		Amount:          input.Amount,
		InterestRate:    product.InterestRate,
		DurationMonths:  input.DurationMonths,
		MonthlyPayment:  terms.MonthlyPayment,
		TotalAmount:     terms.TotalAmount,
		Status:          models.CreditStatusPending,
		ApplicationDate: s.now(),
		Notes:           input.Notes,
		Collateral:      input.Collateral,
		CreditScore:     score,
	}

	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		if err := r.CreateCredit(ctx, credit); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "create", "Credit", credit.ID,
			fmt.Sprintf("credit application %s for client %s, amount %.2f over %d months",
				credit.CreditNumber, client.ClientID, credit.Amount, credit.DurationMonths))
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"credit_number": credit.CreditNumber,
		"client_id":     client.ClientID,
		"amount":        credit.Amount,
		"score":         score,
	}).Info("credit application created")
	return credit, nil
}

// ApproveCredit moves a pending credit to approved
func (s *Service) ApproveCredit(ctx context.Context, id int64) (*models.Credit, error) {
	return s.transitionCredit(ctx, id, "approve", func(credit *models.Credit, now time.Time) error {
		if credit.Status != models.CreditStatusPending {
			return transitionf("credit %s is %s, only pending credits can be approved",
				credit.CreditNumber, credit.Status)
		}
		credit.Status = models.CreditStatusApproved
		credit.ApprovalDate = &now
		return nil
	})
}

// RejectCredit moves a pending credit to rejected. The reason is appended to
// the credit notes.
func (s *Service) RejectCredit(ctx context.Context, id int64, reason string) (*models.Credit, error) {
	return s.transitionCredit(ctx, id, "reject", func(credit *models.Credit, now time.Time) error {
		if credit.Status != models.CreditStatusPending {
			return transitionf("credit %s is %s, only pending credits can be rejected",
				credit.CreditNumber, credit.Status)
		}
		credit.Status = models.CreditStatusRejected
		if reason != "" {
			if credit.Notes != "" {
				credit.Notes += "\n"
			}
			credit.Notes += "Rejected: " + reason
		}
		return nil
	})
}

// DisburseCredit moves an approved credit to active and generates its payment
// schedule: one installment per month starting one month after disbursement.
// The last installment absorbs rounding so the schedule sums exactly to the
// credit total.
func (s *Service) DisburseCredit(ctx context.Context, id int64) (*models.Credit, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !CanManageLifecycle(actor.Role) {
		return nil, fmt.Errorf("%w: insufficient role to disburse credits", ErrForbidden)
	}

	var credit *models.Credit
	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		var err error
		credit, err = r.FindCreditByID(ctx, id)
		if err != nil {
			return err
		}
		if credit.Status != models.CreditStatusApproved {
			return transitionf("credit %s is %s, only approved credits can be disbursed",
				credit.CreditNumber, credit.Status)
		}

		now := s.now()
		credit.Status = models.CreditStatusActive
		credit.DisbursementDate = &now
		if err := r.UpdateCredit(ctx, credit); err != nil {
			return err
		}

		installments := buildSchedule(credit, now)
		if err := r.ReplaceSchedule(ctx, credit.ID, installments); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "disburse", "Credit", credit.ID,
			fmt.Sprintf("disbursed credit %s, %d installments of %.2f",
				credit.CreditNumber, credit.DurationMonths, credit.MonthlyPayment))
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.log.WithField("credit_number", credit.CreditNumber).Info("credit disbursed")
	return credit, nil
}

// buildSchedule lays out the installments of a freshly disbursed credit.
func buildSchedule(credit *models.Credit, disbursed time.Time) []models.PaymentSchedule {
	dates := finance.InstallmentDates(disbursed, credit.DurationMonths)
	installments := make([]models.PaymentSchedule, len(dates))
	var scheduled float64
	for i, due := range dates {
		expected := credit.MonthlyPayment
		if i == len(dates)-1 {
			expected = finance.Round2(credit.TotalAmount - scheduled)
		}
		scheduled += expected
		installments[i] = models.PaymentSchedule{
			InstallmentNumber: i + 1,
			DueDate:           due,
			ExpectedAmount:    expected,
		}
	}
	return installments
}

// transitionCredit runs a pending-state transition under role check, update
// and audit.
func (s *Service) transitionCredit(ctx context.Context, id int64, action string, apply func(*models.Credit, time.Time) error) (*models.Credit, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !CanManageLifecycle(actor.Role) {
		return nil, fmt.Errorf("%w: insufficient role to %s credits", ErrForbidden, action)
	}

	var credit *models.Credit
	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		var err error
		credit, err = r.FindCreditByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(credit, s.now()); err != nil {
			return err
		}
		if err := r.UpdateCredit(ctx, credit); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, action, "Credit", credit.ID,
			fmt.Sprintf("%s credit %s", action, credit.CreditNumber))
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.log.WithFields(map[string]any{"credit_number": credit.CreditNumber, "status": credit.Status}).
		Info("credit " + action + "d")
	return credit, nil
}

// PaymentInput carries the fields of a credit payment request
type PaymentInput struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Reference     string  `json:"reference"`
	Notes         string  `json:"notes"`
}

// RecordPayment applies a payment to an active credit: a payment event is
// recorded, amount_paid advances, and the credit completes automatically once
// the scheduled total has been repaid. Payments are tracked in aggregate;
// installment rows are a due-date calendar and are not settled individually.
func (s *Service) RecordPayment(ctx context.Context, creditID int64, input PaymentInput) (*models.Credit, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, validationf("payment amount must be positive")
	}
	if input.Reference == "" {
		input.Reference = utils.GenerateReference()
	}

	var credit *models.Credit
	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		var err error
		credit, err = r.FindCreditByID(ctx, creditID)
		if err != nil {
			return err
		}
		if credit.Status != models.CreditStatusActive {
			return transitionf("credit %s is %s, payments require an active credit",
				credit.CreditNumber, credit.Status)
		}

		now := s.now()
		payment := &models.CreditPayment{
			CreditID:      credit.ID,
			Amount:        input.Amount,
			PaymentDate:   now,
			PaymentMethod: input.PaymentMethod,
			Reference:     input.Reference,
			Notes:         input.Notes,
		}
		if err := r.CreateCreditPayment(ctx, payment); err != nil {
			return err
		}

		credit.AmountPaid = finance.Round2(credit.AmountPaid + input.Amount)
		if credit.AmountPaid >= credit.TotalAmount {
			credit.Status = models.CreditStatusCompleted
		}
		if err := r.UpdateCredit(ctx, credit); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "payment", "Credit", credit.ID,
			fmt.Sprintf("payment of %.2f on credit %s (ref %s)",
				input.Amount, credit.CreditNumber, input.Reference))
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.log.WithFields(map[string]any{
		"credit_number": credit.CreditNumber,
		"amount":        input.Amount,
		"status":        credit.Status,
	}).Info("credit payment recorded")
	return credit, nil
}

// GetCredit retrieves a credit with its schedule and payment history. For an
// active credit the penalty is recomputed against today's date and persisted
// when it changed.
func (s *Service) GetCredit(ctx context.Context, id int64) (*CreditDetail, error) {
	credit, err := s.repo.FindCreditByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	schedule, err := s.repo.ListSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	if credit.Status == models.CreditStatusActive {
		penalty := finance.Penalty(schedule,
			s.config.Settings.PenaltyRatePercent/100,
			s.config.Settings.GracePeriodDays, s.now())
		if penalty != credit.PenaltyAmount {
			credit.PenaltyAmount = penalty
			err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
				return r.UpdateCredit(ctx, credit)
			})
			if err != nil {
				return nil, s.mapRepoErr(err)
			}
		}
	}

	payments, err := s.repo.ListCreditPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CreditDetail{Credit: credit, Schedule: schedule, Payments: payments}, nil
}

// ListCredits retrieves credits, optionally filtered by status
func (s *Service) ListCredits(ctx context.Context, status string) ([]models.Credit, error) {
	switch status {
	case "", models.CreditStatusPending, models.CreditStatusApproved, models.CreditStatusActive,
		models.CreditStatusCompleted, models.CreditStatusRejected:
	default:
		return nil, validationf("unknown credit status %q", status)
	}
	return s.repo.ListCredits(ctx, status)
}

// RecomputePenalties refreshes the stored penalty of every active credit.
// Recomputation replaces the stored value, so running it repeatedly on the
// same day is a no-op.
func (s *Service) RecomputePenalties(ctx context.Context) (int, error) {
	credits, err := s.repo.ListCredits(ctx, models.CreditStatusActive)
	if err != nil {
		return 0, err
	}

	today := s.now()
	updated := 0
	for i := range credits {
		credit := &credits[i]
		schedule, err := s.repo.ListSchedule(ctx, credit.ID)
		if err != nil {
			return updated, err
		}
		penalty := finance.Penalty(schedule,
			s.config.Settings.PenaltyRatePercent/100,
			s.config.Settings.GracePeriodDays, today)
		if penalty == credit.PenaltyAmount {
			continue
		}
		credit.PenaltyAmount = penalty
		err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
			return r.UpdateCredit(ctx, credit)
		})
		if err != nil {
			return updated, s.mapRepoErr(err)
		}
		updated++
	}

	if updated > 0 {
		s.log.WithField("credits", updated).Info("penalties recomputed")
	}
	return updated, nil
}

// ClientCreditScore computes the current score of a client from their credit
// history: 50 base, plus completion history, minus overdue installments,
// plus repayment progress, clamped to [0, 100].
func (s *Service) ClientCreditScore(ctx context.Context, clientID int64) (float64, error) {
	credits, err := s.repo.ListCreditsByClient(ctx, clientID)
	if err != nil {
		return 0, err
	}

	today := s.now()
	completed := 0
	var active []finance.ActiveCreditStanding
	for i := range credits {
		credit := &credits[i]
		switch credit.Status {
		case models.CreditStatusCompleted:
			completed++
		case models.CreditStatusActive:
			schedule, err := s.repo.ListSchedule(ctx, credit.ID)
			if err != nil {
				return 0, err
			}
			overdue := 0
			for _, inst := range schedule {
				if !inst.Paid && finance.DateOnly(inst.DueDate).Before(finance.DateOnly(today)) {
					overdue++
				}
			}
			active = append(active, finance.ActiveCreditStanding{
				AmountPaid:          credit.AmountPaid,
				TotalAmount:         credit.TotalAmount,
				OverdueInstallments: overdue,
			})
		}
	}
	return finance.CreditScore(len(credits), completed, active), nil
}

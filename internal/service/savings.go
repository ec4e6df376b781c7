package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dibasaye/finance-manager/internal/finance"
	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
	"github.com/dibasaye/finance-manager/internal/utils"
)

// OpenSavingsInput carries the fields of a savings account opening request
type OpenSavingsInput struct {
	ClientID       int64   `json:"client_id"`
	ProductID      int64   `json:"product_id"`
	InitialDeposit float64 `json:"initial_deposit"`
}

// SavingsDetail bundles a savings account with its transaction ledger
type SavingsDetail struct {
	Account      *models.SavingsAccount      `json:"account"`
	Transactions []models.SavingsTransaction `json:"transactions"`
}

// OpenSavingsAccount opens a savings account for a client, optionally with an
// initial deposit that becomes the first ledger entry.
func (s *Service) OpenSavingsAccount(ctx context.Context, input OpenSavingsInput) (*models.SavingsAccount, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if input.InitialDeposit < 0 {
		return nil, validationf("initial deposit must not be negative")
	}

	client, err := s.repo.FindClientByID(ctx, input.ClientID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	product, err := s.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	if product.ProductType != models.ProductTypeSavings {
		return nil, validationf("product %q is not a savings product", product.Name)
	}
	if !product.Active {
		return nil, validationf("product %q is not active", product.Name)
	}
	if input.InitialDeposit > 0 && input.InitialDeposit < product.MinAmount {
		return nil, validationf("initial deposit %.2f below product minimum %.2f",
			input.InitialDeposit, product.MinAmount)
	}

	number, err := s.uniqueIdentifier(ctx, utils.SavingsPrefix, s.repo.AccountNumberTaken)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &models.SavingsAccount{
		AccountNumber: number,
		ClientID:      client.ID,
		ProductID:     product.ID,
		Balance:       input.InitialDeposit,
		InterestRate:  product.InterestRate,
		Status:        models.SavingsStatusActive,
		OpeningDate:   now,
	}

	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		if err := r.CreateSavingsAccount(ctx, account); err != nil {
			return err
		}
		if input.InitialDeposit > 0 {
			txn := &models.SavingsTransaction{
				AccountID:       account.ID,
				TransactionType: models.TransactionTypeDeposit,
				Amount:          input.InitialDeposit,
				TransactionDate: now,
				BalanceAfter:    account.Balance,
				Reference:       utils.GenerateReference(),
				Notes:           "opening deposit",
			}
			if err := r.CreateSavingsTransaction(ctx, txn); err != nil {
				return err
			}
		}
		return s.audit(ctx, r, actor, "create", "SavingsAccount", account.ID,
			fmt.Sprintf("opened savings account %s for client %s with balance %.2f",
				account.AccountNumber, client.ClientID, account.Balance))
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"account_number": account.AccountNumber,
		"client_id":      client.ClientID,
	}).Info("savings account opened")
	return account, nil
}

// SavingsMovement carries the fields of a deposit or withdrawal request
type SavingsMovement struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

// Deposit credits an active savings account
func (s *Service) Deposit(ctx context.Context, accountID int64, input SavingsMovement) (*models.SavingsAccount, error) {
	return s.moveSavings(ctx, accountID, models.TransactionTypeDeposit, input)
}

// Withdraw debits an active savings account. The balance must cover the full
// amount; overdrafts are rejected.
func (s *Service) Withdraw(ctx context.Context, accountID int64, input SavingsMovement) (*models.SavingsAccount, error) {
	return s.moveSavings(ctx, accountID, models.TransactionTypeWithdrawal, input)
}

func (s *Service) moveSavings(ctx context.Context, accountID int64, txnType string, input SavingsMovement) (*models.SavingsAccount, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, validationf("amount must be positive")
	}

	var account *models.SavingsAccount
	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		var err error
		account, err = r.FindSavingsAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account.Status != models.SavingsStatusActive {
			return transitionf("account %s is %s", account.AccountNumber, account.Status)
		}

		switch txnType {
		case models.TransactionTypeDeposit:
			account.Balance = finance.Round2(account.Balance + input.Amount)
		case models.TransactionTypeWithdrawal:
			if input.Amount > account.Balance {
				return fmt.Errorf("%w: withdrawal of %.2f exceeds balance %.2f",
					ErrInsufficientBalance, input.Amount, account.Balance)
			}
			account.Balance = finance.Round2(account.Balance - input.Amount)
		}
		if err := r.UpdateSavingsAccount(ctx, account); err != nil {
			return err
		}

		now := s.now()
		txn := &models.SavingsTransaction{
			AccountID:       account.ID,
			TransactionType: txnType,
			Amount:          input.Amount,
			TransactionDate: now,
			BalanceAfter:    account.Balance,
			PaymentMethod:   input.PaymentMethod,
			Reference:       utils.GenerateReference(),
			Notes:           input.Notes,
		}
		if err := r.CreateSavingsTransaction(ctx, txn); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, txnType, "SavingsAccount", account.ID,
			fmt.Sprintf("%s of %.2f on account %s, balance %.2f",
				txnType, input.Amount, account.AccountNumber, account.Balance))
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.log.WithFields(map[string]any{
		"account_number": account.AccountNumber,
		"type":           txnType,
		"amount":         input.Amount,
	}).Info("savings transaction recorded")
	return account, nil
}

// ApplySavingsInterest posts accrued simple interest to one account. Interest
// accrues per whole month elapsed since the last interest posting (or the
// opening date), at the account's annual rate divided by twelve. Within the
// same month the operation is a no-op, so repeated runs never double-post.
func (s *Service) ApplySavingsInterest(ctx context.Context, accountID int64) (float64, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return 0, err
	}
	if !CanManageLifecycle(actor.Role) {
		return 0, fmt.Errorf("%w: insufficient role to post interest", ErrForbidden)
	}

	var posted float64
	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		var err error
		posted, err = s.postInterest(ctx, r, actor, accountID)
		return err
	})
	if err != nil {
		return 0, s.mapRepoErr(err)
	}
	return posted, nil
}

// postInterest applies accrued interest to one account inside an existing
// transaction. Returns 0 when no whole month has elapsed or the balance is
// zero.
func (s *Service) postInterest(ctx context.Context, r *repository.Repository, actor Actor, accountID int64) (float64, error) {
	account, err := r.FindSavingsAccountByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if account.Status != models.SavingsStatusActive {
		return 0, transitionf("account %s is %s", account.AccountNumber, account.Status)
	}

	anchor := account.OpeningDate
	last, err := r.FindLastInterestTransaction(ctx, account.ID)
	if err == nil {
		anchor = last.TransactionDate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	now := s.now()
	months := finance.WholeMonthsBetween(anchor, now)
	if months < 1 || account.Balance <= 0 {
		return 0, nil
	}

	interest := finance.MonthlyInterest(account.Balance, account.InterestRate, months)
	if interest <= 0 {
		return 0, nil
	}

	account.Balance += interest
	if err := r.UpdateSavingsAccount(ctx, account); err != nil {
		return 0, err
	}
	txn := &models.SavingsTransaction{
		AccountID:       account.ID,
		TransactionType: models.TransactionTypeInterest,
		Amount:          interest,
		TransactionDate: now,
		BalanceAfter:    account.Balance,
		Reference:       utils.GenerateReference(),
		Notes:           fmt.Sprintf("interest for %d month(s)", months),
	}
	if err := r.CreateSavingsTransaction(ctx, txn); err != nil {
		return 0, err
	}
	if err := s.audit(ctx, r, actor, "interest", "SavingsAccount", account.ID,
		fmt.Sprintf("posted %.4f interest to account %s for %d month(s)",
			interest, account.AccountNumber, months)); err != nil {
		return 0, err
	}
	return interest, nil
}

// ApplyAllSavingsInterest posts accrued interest across every active account.
// Each account is processed in its own transaction so one failure does not
// roll back the rest. Returns the number of accounts that received interest.
func (s *Service) ApplyAllSavingsInterest(ctx context.Context, actor Actor) (int, error) {
	accounts, err := s.repo.ListSavingsAccounts(ctx)
	if err != nil {
		return 0, err
	}

	posted := 0
	for i := range accounts {
		account := &accounts[i]
		if account.Status != models.SavingsStatusActive {
			continue
		}
		err := s.repo.WithTx(ctx, func(r *repository.Repository) error {
			interest, err := s.postInterest(ctx, r, actor, account.ID)
			if err != nil {
				return err
			}
			if interest > 0 {
				posted++
			}
			return nil
		})
		if err != nil {
			s.log.WithError(err).WithField("account_number", account.AccountNumber).
				Error("interest posting failed")
		}
	}

	if posted > 0 {
		s.log.WithField("accounts", posted).Info("savings interest posted")
	}
	return posted, nil
}

// CloseSavingsAccount closes an empty active savings account. A non-zero
// balance must be withdrawn first.
func (s *Service) CloseSavingsAccount(ctx context.Context, accountID int64) (*models.SavingsAccount, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !CanManageLifecycle(actor.Role) {
		return nil, fmt.Errorf("%w: insufficient role to close accounts", ErrForbidden)
	}

	var account *models.SavingsAccount
	err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
		var err error
		account, err = r.FindSavingsAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account.Status != models.SavingsStatusActive {
			return transitionf("account %s is already %s", account.AccountNumber, account.Status)
		}
		if account.Balance != 0 {
			return fmt.Errorf("%w: account %s still holds %.2f, withdraw before closing",
				ErrInsufficientBalance, account.AccountNumber, account.Balance)
		}

		now := s.now()
		account.Status = models.SavingsStatusClosed
		account.ClosingDate = &now
		if err := r.UpdateSavingsAccount(ctx, account); err != nil {
			return err
		}
		return s.audit(ctx, r, actor, "close", "SavingsAccount", account.ID,
			fmt.Sprintf("closed savings account %s", account.AccountNumber))
	})
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.log.WithField("account_number", account.AccountNumber).Info("savings account closed")
	return account, nil
}

// GetSavingsAccount retrieves an account with its transaction ledger
func (s *Service) GetSavingsAccount(ctx context.Context, accountID int64) (*SavingsDetail, error) {
	account, err := s.repo.FindSavingsAccountByID(ctx, accountID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	txns, err := s.repo.ListSavingsTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &SavingsDetail{Account: account, Transactions: txns}, nil
}

// ListSavingsAccounts retrieves all savings accounts
func (s *Service) ListSavingsAccounts(ctx context.Context) ([]models.SavingsAccount, error) {
	return s.repo.ListSavingsAccounts(ctx)
}

package service

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dibasaye/finance-manager/internal/models"
)

func TestOpenSavingsAccountWithInitialDeposit(t *testing.T) {
	svc, _ := newTestService(t)
	client := seedClient(t, svc)
	product := seedSavingsProduct(t, svc, 3.5)
	ctx := managerContext()

	account, err := svc.OpenSavingsAccount(ctx, OpenSavingsInput{
		ClientID:       client.ID,
		ProductID:      product.ID,
		InitialDeposit: 25_000,
	})
	if err != nil {
		t.Fatalf("OpenSavingsAccount: %v", err)
	}
	if !strings.HasPrefix(account.AccountNumber, "SAV") || len(account.AccountNumber) != 11 {
		t.Errorf("account number = %q, want SAV + 8 digits", account.AccountNumber)
	}
	if account.Balance != 25_000 || account.Status != models.SavingsStatusActive {
		t.Errorf("account = %+v, want active with balance 25000", account)
	}
	if account.InterestRate != 3.5 {
		t.Errorf("interest rate = %v, want product snapshot 3.5", account.InterestRate)
	}

	detail, err := svc.GetSavingsAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetSavingsAccount: %v", err)
	}
	if len(detail.Transactions) != 1 || detail.Transactions[0].TransactionType != models.TransactionTypeDeposit {
		t.Fatalf("transactions = %+v, want one opening deposit", detail.Transactions)
	}
	if detail.Transactions[0].BalanceAfter != 25_000 {
		t.Errorf("opening deposit balance_after = %v, want 25000", detail.Transactions[0].BalanceAfter)
	}
}

func TestSavingsDepositAndWithdrawal(t *testing.T) {
	svc, _ := newTestService(t)
	client := seedClient(t, svc)
	product := seedSavingsProduct(t, svc, 3)
	ctx := managerContext()

	account, err := svc.OpenSavingsAccount(ctx, OpenSavingsInput{ClientID: client.ID, ProductID: product.ID})
	if err != nil {
		t.Fatalf("OpenSavingsAccount: %v", err)
	}

	account, err = svc.Deposit(ctx, account.ID, SavingsMovement{Amount: 10_000, PaymentMethod: "cash"})
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if account.Balance != 10_000 {
		t.Errorf("balance after deposit = %v, want 10000", account.Balance)
	}

	account, err = svc.Withdraw(ctx, account.ID, SavingsMovement{Amount: 4000})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if account.Balance != 6000 {
		t.Errorf("balance after withdrawal = %v, want 6000", account.Balance)
	}

	// Overdraft is refused and leaves the balance untouched.
	if _, err := svc.Withdraw(ctx, account.ID, SavingsMovement{Amount: 6000.01}); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("overdraft: err = %v, want ErrInsufficientBalance", err)
	}
	detail, err := svc.GetSavingsAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetSavingsAccount: %v", err)
	}
	if detail.Account.Balance != 6000 {
		t.Errorf("balance after refused overdraft = %v, want 6000", detail.Account.Balance)
	}
	if len(detail.Transactions) != 2 {
		t.Errorf("ledger has %d entries, want 2 (no entry for refused overdraft)", len(detail.Transactions))
	}

	// Invalid amounts.
	if _, err := svc.Deposit(ctx, account.ID, SavingsMovement{Amount: 0}); !errors.Is(err, ErrValidation) {
		t.Errorf("zero deposit: err = %v, want ErrValidation", err)
	}
	if _, err := svc.Withdraw(ctx, account.ID, SavingsMovement{Amount: -5}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative withdrawal: err = %v, want ErrValidation", err)
	}
}

func TestSavingsInterestAccrual(t *testing.T) {
	svc, setClock := newTestService(t)
	client := seedClient(t, svc)
	product := seedSavingsProduct(t, svc, 6) // 0.5% per month
	ctx := managerContext()

	account, err := svc.OpenSavingsAccount(ctx, OpenSavingsInput{
		ClientID: client.ID, ProductID: product.ID, InitialDeposit: 10_000,
	})
	if err != nil {
		t.Fatalf("OpenSavingsAccount: %v", err)
	}

	// Same month: nothing accrues yet.
	interest, err := svc.ApplySavingsInterest(ctx, account.ID)
	if err != nil {
		t.Fatalf("ApplySavingsInterest: %v", err)
	}
	if interest != 0 {
		t.Errorf("interest in opening month = %v, want 0", interest)
	}

	// One whole month later: 10000 * 6%/12 = 50.
	setClock(time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC))
	interest, err = svc.ApplySavingsInterest(ctx, account.ID)
	if err != nil {
		t.Fatalf("ApplySavingsInterest: %v", err)
	}
	if math.Abs(interest-50) > 1e-9 {
		t.Errorf("interest after one month = %v, want 50", interest)
	}

	// A second run the same day is a no-op.
	interest, err = svc.ApplySavingsInterest(ctx, account.ID)
	if err != nil {
		t.Fatalf("ApplySavingsInterest (rerun): %v", err)
	}
	if interest != 0 {
		t.Errorf("interest on rerun = %v, want 0", interest)
	}

	detail, err := svc.GetSavingsAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetSavingsAccount: %v", err)
	}
	if math.Abs(detail.Account.Balance-10_050) > 1e-9 {
		t.Errorf("balance = %v, want 10050", detail.Account.Balance)
	}

	// balance_after is monotonic for deposits and interest.
	var prev float64
	txns := detail.Transactions
	for i := len(txns) - 1; i >= 0; i-- {
		if txns[i].BalanceAfter < prev {
			t.Errorf("balance_after decreased at entry %d: %v < %v", i, txns[i].BalanceAfter, prev)
		}
		prev = txns[i].BalanceAfter
	}
}

func TestSavingsInterestCatchesUpMissedMonths(t *testing.T) {
	svc, setClock := newTestService(t)
	client := seedClient(t, svc)
	product := seedSavingsProduct(t, svc, 12) // 1% per month
	ctx := managerContext()

	account, err := svc.OpenSavingsAccount(ctx, OpenSavingsInput{
		ClientID: client.ID, ProductID: product.ID, InitialDeposit: 10_000,
	})
	if err != nil {
		t.Fatalf("OpenSavingsAccount: %v", err)
	}

	// Three months without a run: a single posting covers all of them.
	setClock(time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC))
	interest, err := svc.ApplySavingsInterest(ctx, account.ID)
	if err != nil {
		t.Fatalf("ApplySavingsInterest: %v", err)
	}
	if math.Abs(interest-300) > 1e-9 {
		t.Errorf("interest for three months = %v, want 300", interest)
	}
}

func TestSavingsInterestRequiresManagerRole(t *testing.T) {
	svc, _ := newTestService(t)
	client := seedClient(t, svc)
	product := seedSavingsProduct(t, svc, 6)

	account, err := svc.OpenSavingsAccount(managerContext(), OpenSavingsInput{
		ClientID: client.ID, ProductID: product.ID, InitialDeposit: 1000,
	})
	if err != nil {
		t.Fatalf("OpenSavingsAccount: %v", err)
	}
	if _, err := svc.ApplySavingsInterest(agentContext(), account.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("agent posting interest: err = %v, want ErrForbidden", err)
	}
}

func TestCloseSavingsAccount(t *testing.T) {
	svc, _ := newTestService(t)
	client := seedClient(t, svc)
	product := seedSavingsProduct(t, svc, 3)
	ctx := managerContext()

	account, err := svc.OpenSavingsAccount(ctx, OpenSavingsInput{
		ClientID: client.ID, ProductID: product.ID, InitialDeposit: 500,
	})
	if err != nil {
		t.Fatalf("OpenSavingsAccount: %v", err)
	}

	// A non-zero balance blocks closure.
	if _, err := svc.CloseSavingsAccount(ctx, account.ID); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("closing funded account: err = %v, want ErrInsufficientBalance", err)
	}

	if _, err := svc.Withdraw(ctx, account.ID, SavingsMovement{Amount: 500}); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	account, err = svc.CloseSavingsAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("CloseSavingsAccount: %v", err)
	}
	if account.Status != models.SavingsStatusClosed || account.ClosingDate == nil {
		t.Errorf("after closure: status = %q, closing date = %v", account.Status, account.ClosingDate)
	}

	// A closed account accepts no further operations.
	if _, err := svc.Deposit(ctx, account.ID, SavingsMovement{Amount: 100}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("deposit on closed account: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.CloseSavingsAccount(ctx, account.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("closing twice: err = %v, want ErrInvalidTransition", err)
	}
}

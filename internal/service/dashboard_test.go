package service

import (
	"testing"
)

func TestDashboardAggregates(t *testing.T) {
	svc, _ := newTestService(t)
	client := seedClient(t, svc)
	creditProduct := seedCreditProduct(t, svc, 0)
	savingsProduct := seedSavingsProduct(t, svc, 3)
	ctx := managerContext()

	credit := seedActiveCredit(t, svc, client.ID, creditProduct.ID, 12_000, 12)
	if _, err := svc.RecordPayment(ctx, credit.ID, PaymentInput{Amount: 2000}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := svc.ApplyForCredit(ctx, CreditApplication{
		ClientID: client.ID, ProductID: creditProduct.ID, Amount: 5000, DurationMonths: 6,
	}); err != nil {
		t.Fatalf("ApplyForCredit: %v", err)
	}
	if _, err := svc.OpenSavingsAccount(ctx, OpenSavingsInput{
		ClientID: client.ID, ProductID: savingsProduct.ID, InitialDeposit: 3000,
	}); err != nil {
		t.Fatalf("OpenSavingsAccount: %v", err)
	}

	stats, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.TotalClients != 1 {
		t.Errorf("total clients = %d, want 1", stats.TotalClients)
	}
	if stats.TotalCredits != 2 || stats.ActiveCredits != 1 || stats.PendingCredits != 1 {
		t.Errorf("credit counts = %d total / %d active / %d pending, want 2/1/1",
			stats.TotalCredits, stats.ActiveCredits, stats.PendingCredits)
	}
	if stats.TotalSavings != 1 || stats.TotalSavingsBalance != 3000 {
		t.Errorf("savings = %d accounts / %v balance, want 1 / 3000",
			stats.TotalSavings, stats.TotalSavingsBalance)
	}
	if stats.TotalCreditPaid != 2000 {
		t.Errorf("total paid = %v, want 2000", stats.TotalCreditPaid)
	}
}

func TestAuditTrailRecordsLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	client := seedClient(t, svc)
	product := seedCreditProduct(t, svc, 0)
	ctx := managerContext()

	credit := seedActiveCredit(t, svc, client.ID, product.ID, 6000, 6)
	if _, err := svc.RecordPayment(ctx, credit.ID, PaymentInput{Amount: 1000}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	entries, err := svc.ListAuditLogs(ctx, 50)
	if err != nil {
		t.Fatalf("ListAuditLogs: %v", err)
	}

	actions := map[string]bool{}
	for _, e := range entries {
		actions[e.Action+"/"+e.EntityType] = true
		if e.UserID != 1 && e.EntityType == "Credit" {
			t.Errorf("credit audit entry attributed to user %d, want acting manager", e.UserID)
		}
	}
	for _, want := range []string{"create/Client", "create/Credit", "approve/Credit", "disburse/Credit", "payment/Credit"} {
		if !actions[want] {
			t.Errorf("audit trail missing %s", want)
		}
	}
}

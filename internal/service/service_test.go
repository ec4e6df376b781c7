package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/dibasaye/finance-manager/internal/config"
	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
)

// newTestService builds a service on an in-memory SQLite database with a
// controllable clock. Tests advance time through the returned setter.
func newTestService(t *testing.T) (*Service, func(time.Time)) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := repository.Migrate(db, "sqlite"); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	cfg := &config.Config{
		JWTSecret: "test-secret",
		Settings:  config.DefaultSettings(),
	}

	svc := NewService(repository.NewRepository(db), log, cfg)
	clock := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	setClock := func(at time.Time) { clock = at }
	return svc, setClock
}

// managerContext returns a context carrying a manager-level actor.
func managerContext() context.Context {
	return ContextWithActor(context.Background(), Actor{
		UserID:   1,
		Username: "manager",
		Role:     models.RoleGestionnaire,
		IP:       "127.0.0.1",
	})
}

// agentContext returns a context carrying an agent-level actor.
func agentContext() context.Context {
	return ContextWithActor(context.Background(), Actor{
		UserID:   2,
		Username: "agent",
		Role:     models.RoleAgent,
		IP:       "127.0.0.1",
	})
}

// noActorContext returns a bare context without an authenticated user.
func noActorContext() context.Context {
	return context.Background()
}

// adminContext returns a context carrying an administrator actor.
func adminContext() context.Context {
	return ContextWithActor(context.Background(), Actor{
		UserID:   3,
		Username: "admin",
		Role:     models.RoleAdministrateur,
		IP:       "127.0.0.1",
	})
}

// seedClient inserts a client for tests that need one.
func seedClient(t *testing.T, svc *Service) *models.Client {
	t.Helper()
	client, err := svc.CreateClient(managerContext(), ClientInput{
		FirstName: "Awa",
		LastName:  "Diop",
		Email:     "awa.diop@example.com",
		Phone:     "+221770000000",
	})
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
	return client
}

// seedCreditProduct inserts an active credit product with wide bounds.
func seedCreditProduct(t *testing.T, svc *Service, annualRate float64) *models.Product {
	t.Helper()
	product, err := svc.CreateProduct(managerContext(), ProductInput{
		Name:         "Micro Credit",
		ProductType:  models.ProductTypeCredit,
		InterestRate: annualRate,
		MinAmount:    1000,
		MaxAmount:    10_000_000,
		MinDuration:  1,
		MaxDuration:  60,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("failed to seed credit product: %v", err)
	}
	return product
}

// seedSavingsProduct inserts an active savings product.
func seedSavingsProduct(t *testing.T, svc *Service, annualRate float64) *models.Product {
	t.Helper()
	product, err := svc.CreateProduct(managerContext(), ProductInput{
		Name:         "Savings Plan",
		ProductType:  models.ProductTypeSavings,
		InterestRate: annualRate,
		MinAmount:    0,
		MaxAmount:    100_000_000,
		MinDuration:  0,
		MaxDuration:  0,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("failed to seed savings product: %v", err)
	}
	return product
}

// seedActiveCredit walks a fresh credit through approval and disbursement.
func seedActiveCredit(t *testing.T, svc *Service, clientID, productID int64, amount float64, months int) *models.Credit {
	t.Helper()
	ctx := managerContext()
	credit, err := svc.ApplyForCredit(ctx, CreditApplication{
		ClientID:       clientID,
		ProductID:      productID,
		Amount:         amount,
		DurationMonths: months,
	})
	if err != nil {
		t.Fatalf("failed to apply for credit: %v", err)
	}
	if _, err := svc.ApproveCredit(ctx, credit.ID); err != nil {
		t.Fatalf("failed to approve credit: %v", err)
	}
	credit, err = svc.DisburseCredit(ctx, credit.ID)
	if err != nil {
		t.Fatalf("failed to disburse credit: %v", err)
	}
	return credit
}

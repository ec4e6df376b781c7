package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/dibasaye/finance-manager/internal/config"
	"github.com/dibasaye/finance-manager/internal/middleware"
	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
	"github.com/dibasaye/finance-manager/internal/service"
)

// newTestServer wires the full HTTP stack against an in-memory SQLite
// database and returns the server, the underlying service for seeding, and a
// bearer token for a manager account.
func newTestServer(t *testing.T) (*httptest.Server, *service.Service, string) {
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
	cfg := &config.Config{JWTSecret: "test-secret", Settings: config.DefaultSettings()}
	svc := service.NewService(repository.NewRepository(db), log, cfg)

	router := mux.NewRouter()
	auth := middleware.NewAuth(cfg.JWTSecret, log)
	NewHandler(svc, log).RegisterRoutes(router, auth.Handler)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	token := seedAndLogin(t, srv, svc, "manager", models.RoleGestionnaire)
	return srv, svc, token
}

// seedAndLogin creates a user directly through the service, since user
// creation over HTTP requires an administrator, then logs in over HTTP.
func seedAndLogin(t *testing.T, srv *httptest.Server, svc *service.Service, username, role string) string {
	t.Helper()
	seedCtx := service.ContextWithActor(context.Background(), service.Actor{
		UserID:   1,
		Username: "seed-admin",
		Role:     models.RoleAdministrateur,
		IP:       "127.0.0.1",
	})
	_, err := svc.Register(seedCtx, service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}

	resp := postJSON(t, srv, "", "/api/auth/login", map[string]any{
		"username": username,
		"password": "secret123",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return body.Token
}

func postJSON(t *testing.T, srv *httptest.Server, token, path string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, srv *httptest.Server, token, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestAuthRequired(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := getJSON(t, srv, "", "/api/clients")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	resp = getJSON(t, srv, "not-a-token", "/api/clients")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", resp.StatusCode)
	}

	resp = getJSON(t, srv, "", "/health")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health check: status = %d, want 200", resp.StatusCode)
	}
}

func TestRegisterEndpointRequiresAdministrator(t *testing.T) {
	srv, svc, managerToken := newTestServer(t)

	payload := map[string]any{
		"username": "intruder",
		"email":    "intruder@example.com",
		"password": "secret123",
		"role":     models.RoleAdministrateur,
	}

	// Anonymous callers never reach the handler.
	resp := postJSON(t, srv, "", "/api/auth/register", payload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous register: status = %d, want 401", resp.StatusCode)
	}

	// Non-administrators are refused.
	resp = postJSON(t, srv, managerToken, "/api/auth/register", payload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("manager register: status = %d, want 403", resp.StatusCode)
	}

	// Administrators may create users.
	adminToken := seedAndLogin(t, srv, svc, "chief", models.RoleAdministrateur)
	resp = postJSON(t, srv, adminToken, "/api/auth/register", map[string]any{
		"username": "teller",
		"email":    "teller@example.com",
		"password": "secret123",
		"role":     models.RoleAgent,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("admin register: status = %d, want 201", resp.StatusCode)
	}
}

func TestClientEndpoints(t *testing.T) {
	srv, _, token := newTestServer(t)

	resp := postJSON(t, srv, token, "/api/clients", map[string]any{
		"first_name": "Awa",
		"last_name":  "Diop",
		"phone":      "+221770000000",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create client: status = %d, want 201", resp.StatusCode)
	}
	client := decodeBody[models.Client](t, resp)
	if client.ClientID == "" {
		t.Errorf("created client has no external identifier")
	}

	resp = getJSON(t, srv, token, fmt.Sprintf("/api/clients/%d", client.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get client: status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = getJSON(t, srv, token, "/api/clients/9999")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown client: status = %d, want 404", resp.StatusCode)
	}

	// Validation failures map to 400.
	resp = postJSON(t, srv, token, "/api/clients", map[string]any{"first_name": "only"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid client: status = %d, want 400", resp.StatusCode)
	}
}

func TestCreditEndpointsLifecycle(t *testing.T) {
	srv, _, token := newTestServer(t)

	resp := postJSON(t, srv, token, "/api/products", map[string]any{
		"name":          "Micro Credit",
		"product_type":  "credit",
		"interest_rate": 12.0,
		"min_amount":    1000.0,
		"max_amount":    1000000.0,
		"min_duration":  1,
		"max_duration":  36,
		"active":        true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status = %d, want 201", resp.StatusCode)
	}
	product := decodeBody[models.Product](t, resp)

	resp = postJSON(t, srv, token, "/api/clients", map[string]any{
		"first_name": "Moussa", "last_name": "Fall",
	})
	client := decodeBody[models.Client](t, resp)

	resp = postJSON(t, srv, token, "/api/credits", map[string]any{
		"client_id":       client.ID,
		"product_id":      product.ID,
		"amount":          100000.0,
		"duration_months": 12,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("apply for credit: status = %d, want 201", resp.StatusCode)
	}
	credit := decodeBody[models.Credit](t, resp)
	if credit.Status != models.CreditStatusPending {
		t.Errorf("new credit status = %q, want pending", credit.Status)
	}

	// Wrong-state transition maps to 409.
	resp = postJSON(t, srv, token, fmt.Sprintf("/api/credits/%d/disburse", credit.ID), nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("disburse pending credit: status = %d, want 409", resp.StatusCode)
	}

	resp = postJSON(t, srv, token, fmt.Sprintf("/api/credits/%d/approve", credit.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv, token, fmt.Sprintf("/api/credits/%d/disburse", credit.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("disburse: status = %d, want 200", resp.StatusCode)
	}
	credit = decodeBody[models.Credit](t, resp)
	if credit.Status != models.CreditStatusActive {
		t.Errorf("disbursed credit status = %q, want active", credit.Status)
	}

	resp = postJSON(t, srv, token, fmt.Sprintf("/api/credits/%d/payments", credit.ID), map[string]any{
		"amount":         5000.0,
		"payment_method": "cash",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record payment: status = %d, want 200", resp.StatusCode)
	}
	credit = decodeBody[models.Credit](t, resp)
	if credit.AmountPaid != 5000 {
		t.Errorf("amount paid = %v, want 5000", credit.AmountPaid)
	}
}

func TestRoleEnforcement(t *testing.T) {
	srv, svc, managerToken := newTestServer(t)
	agentToken := seedAndLogin(t, srv, svc, "agent", models.RoleAgent)

	resp := postJSON(t, srv, managerToken, "/api/products", map[string]any{
		"name": "Savings Plan", "product_type": "savings", "interest_rate": 3.0,
		"max_amount": 1000000.0, "active": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	// Agents may not define products.
	resp = postJSON(t, srv, agentToken, "/api/products", map[string]any{
		"name": "Rogue", "product_type": "credit", "max_amount": 10.0, "active": true,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("agent creating product: status = %d, want 403", resp.StatusCode)
	}

	// Agents may not delete clients either.
	resp = postJSON(t, srv, managerToken, "/api/clients", map[string]any{
		"first_name": "Awa", "last_name": "Diop",
	})
	client := decodeBody[models.Client](t, resp)
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+fmt.Sprintf("/api/clients/%d", client.ID), nil)
	req.Header.Set("Authorization", "Bearer "+agentToken)
	delResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusForbidden {
		t.Errorf("agent deleting client: status = %d, want 403", delResp.StatusCode)
	}
}

func TestSavingsEndpoints(t *testing.T) {
	srv, _, token := newTestServer(t)

	resp := postJSON(t, srv, token, "/api/products", map[string]any{
		"name": "Savings Plan", "product_type": "savings", "interest_rate": 3.0,
		"max_amount": 1000000.0, "active": true,
	})
	product := decodeBody[models.Product](t, resp)
	resp = postJSON(t, srv, token, "/api/clients", map[string]any{
		"first_name": "Awa", "last_name": "Diop",
	})
	client := decodeBody[models.Client](t, resp)

	resp = postJSON(t, srv, token, "/api/savings", map[string]any{
		"client_id":       client.ID,
		"product_id":      product.ID,
		"initial_deposit": 5000.0,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open account: status = %d, want 201", resp.StatusCode)
	}
	account := decodeBody[models.SavingsAccount](t, resp)

	// Overdraft maps to 422.
	resp = postJSON(t, srv, token, fmt.Sprintf("/api/savings/%d/withdraw", account.ID), map[string]any{
		"amount": 9999.0,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("overdraft: status = %d, want 422", resp.StatusCode)
	}

	resp = postJSON(t, srv, token, fmt.Sprintf("/api/savings/%d/deposit", account.ID), map[string]any{
		"amount": 1000.0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deposit: status = %d, want 200", resp.StatusCode)
	}
	account = decodeBody[models.SavingsAccount](t, resp)
	if account.Balance != 6000 {
		t.Errorf("balance = %v, want 6000", account.Balance)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv, _, token := newTestServer(t)

	resp := getJSON(t, srv, token, "/api/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: status = %d, want 200", resp.StatusCode)
	}
	stats := decodeBody[models.DashboardStats](t, resp)
	if stats.TotalClients != 0 || stats.TotalCredits != 0 {
		t.Errorf("empty portfolio stats = %+v", stats)
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/dibasaye/finance-manager/internal/models"
)

// seedStaff registers one user per role and returns them by role.
func seedStaff(t *testing.T, svc *Service) map[string]*models.User {
	t.Helper()
	users := map[string]*models.User{}
	for _, role := range []string{models.RoleAdministrateur, models.RoleGestionnaire, models.RoleAgent} {
		user, err := svc.Register(adminContext(), RegisterInput{
			Username: "staff-" + role,
			Email:    role + "@example.com",
			Password: "secret123",
			Role:     role,
		})
		if err != nil {
			t.Fatalf("failed to register %s: %v", role, err)
		}
		users[role] = user
	}
	return users
}

func userContext(user *models.User) context.Context {
	return ContextWithActor(context.Background(), Actor{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		IP:       "127.0.0.1",
	})
}

func TestGeneratePaymentAlerts(t *testing.T) {
	svc, setClock := newTestService(t)
	staff := seedStaff(t, svc)
	client := seedClient(t, svc)
	product := seedCreditProduct(t, svc, 0)

	seedActiveCredit(t, svc, client.ID, product.ID, 12_000, 12)

	// Two days before the first due date (2025-04-10): inside the 7-day
	// reminder window, nothing overdue yet.
	setClock(time.Date(2025, time.April, 8, 9, 0, 0, 0, time.UTC))

	created, err := svc.GeneratePaymentAlerts(context.Background())
	if err != nil {
		t.Fatalf("GeneratePaymentAlerts: %v", err)
	}
	// One installment, fanned out to administrator and manager but not agent.
	if created != 2 {
		t.Fatalf("created %d notifications, want 2", created)
	}

	for _, role := range []string{models.RoleAdministrateur, models.RoleGestionnaire} {
		feed, err := svc.ListNotifications(userContext(staff[role]))
		if err != nil {
			t.Fatalf("ListNotifications(%s): %v", role, err)
		}
		if len(feed) != 1 || feed[0].NotificationType != models.NotificationPaymentReminder {
			t.Errorf("%s feed = %+v, want one payment reminder", role, feed)
		}
	}
	feed, err := svc.ListNotifications(userContext(staff[models.RoleAgent]))
	if err != nil {
		t.Fatalf("ListNotifications(agent): %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("agent feed has %d notifications, want 0", len(feed))
	}
}

func TestPaymentAlertsDeduplicateWhileUnread(t *testing.T) {
	svc, setClock := newTestService(t)
	staff := seedStaff(t, svc)
	client := seedClient(t, svc)
	product := seedCreditProduct(t, svc, 0)

	seedActiveCredit(t, svc, client.ID, product.ID, 12_000, 12)
	setClock(time.Date(2025, time.April, 8, 9, 0, 0, 0, time.UTC))

	if _, err := svc.GeneratePaymentAlerts(context.Background()); err != nil {
		t.Fatalf("GeneratePaymentAlerts: %v", err)
	}

	// A rerun while the alerts are unread creates nothing.
	created, err := svc.GeneratePaymentAlerts(context.Background())
	if err != nil {
		t.Fatalf("GeneratePaymentAlerts (rerun): %v", err)
	}
	if created != 0 {
		t.Errorf("rerun created %d notifications, want 0", created)
	}

	// Once every copy is read the next scan may alert again.
	for _, role := range []string{models.RoleAdministrateur, models.RoleGestionnaire} {
		if err := svc.MarkAllNotificationsRead(userContext(staff[role])); err != nil {
			t.Fatalf("MarkAllNotificationsRead(%s): %v", role, err)
		}
	}
	created, err = svc.GeneratePaymentAlerts(context.Background())
	if err != nil {
		t.Fatalf("GeneratePaymentAlerts (after read): %v", err)
	}
	if created != 2 {
		t.Errorf("scan after read created %d notifications, want 2", created)
	}
}

func TestPaymentAlertsOverdue(t *testing.T) {
	svc, setClock := newTestService(t)
	staff := seedStaff(t, svc)
	client := seedClient(t, svc)
	product := seedCreditProduct(t, svc, 0)

	seedActiveCredit(t, svc, client.ID, product.ID, 12_000, 12)

	// Five days past the first due date: one overdue alert, plus the second
	// installment (due 2025-05-10) is not yet inside the window.
	setClock(time.Date(2025, time.April, 15, 9, 0, 0, 0, time.UTC))

	if _, err := svc.GeneratePaymentAlerts(context.Background()); err != nil {
		t.Fatalf("GeneratePaymentAlerts: %v", err)
	}

	feed, err := svc.ListNotifications(userContext(staff[models.RoleGestionnaire]))
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(feed) != 1 || feed[0].NotificationType != models.NotificationPaymentOverdue {
		t.Fatalf("feed = %+v, want one overdue alert", feed)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	svc, setClock := newTestService(t)
	staff := seedStaff(t, svc)
	client := seedClient(t, svc)
	product := seedCreditProduct(t, svc, 0)

	seedActiveCredit(t, svc, client.ID, product.ID, 12_000, 12)
	setClock(time.Date(2025, time.April, 8, 9, 0, 0, 0, time.UTC))
	if _, err := svc.GeneratePaymentAlerts(context.Background()); err != nil {
		t.Fatalf("GeneratePaymentAlerts: %v", err)
	}

	manager := userContext(staff[models.RoleGestionnaire])
	feed, err := svc.ListNotifications(manager)
	if err != nil || len(feed) != 1 {
		t.Fatalf("feed = %+v, err = %v", feed, err)
	}

	// A user cannot read someone else's notification.
	admin := userContext(staff[models.RoleAdministrateur])
	adminFeed, err := svc.ListNotifications(admin)
	if err != nil || len(adminFeed) != 1 {
		t.Fatalf("admin feed = %+v, err = %v", adminFeed, err)
	}
	if err := svc.MarkNotificationRead(manager, adminFeed[0].ID); err == nil {
		t.Errorf("marking another user's notification succeeded")
	}

	if err := svc.MarkNotificationRead(manager, feed[0].ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	feed, err = svc.ListNotifications(manager)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if !feed[0].IsRead {
		t.Errorf("notification still unread after marking")
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dibasaye/finance-manager/internal/finance"
	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
)

// GeneratePaymentAlerts scans the payment schedule and creates notifications
// for administrators and managers: reminders for unpaid installments due
// within the alert window and overdue alerts for installments past their due
// date. An installment produces no new alerts of a type while an unread one
// exists, so the scan can run as often as needed. Returns the number of
// notifications created.
func (s *Service) GeneratePaymentAlerts(ctx context.Context) (int, error) {
	recipients, err := s.repo.ListUsersByRoles(ctx, models.RoleAdministrateur, models.RoleGestionnaire)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	today := finance.DateOnly(s.now())
	windowEnd := today.AddDate(0, 0, s.config.Settings.AlertWindowDays)

	upcoming, err := s.repo.ListUnpaidInstallmentsDueBetween(ctx, today, windowEnd)
	if err != nil {
		return 0, err
	}
	overdue, err := s.repo.ListUnpaidInstallmentsDueBefore(ctx, today)
	if err != nil {
		return 0, err
	}

	created := 0
	n, err := s.fanOutAlerts(ctx, upcoming, models.NotificationPaymentReminder, recipients, today)
	created += n
	if err != nil {
		return created, err
	}
	n, err = s.fanOutAlerts(ctx, overdue, models.NotificationPaymentOverdue, recipients, today)
	created += n
	if err != nil {
		return created, err
	}

	if created > 0 {
		s.log.WithField("notifications", created).Info("payment alerts generated")
	}
	return created, nil
}

func (s *Service) fanOutAlerts(ctx context.Context, installments []models.PaymentSchedule, alertType string, recipients []models.User, today time.Time) (int, error) {
	created := 0
	credits := map[int64]*models.Credit{}
	for i := range installments {
		inst := &installments[i]

		exists, err := s.repo.UnreadNotificationExists(ctx, alertType, "PaymentSchedule", inst.ID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		credit, ok := credits[inst.CreditID]
		if !ok {
			credit, err = s.repo.FindCreditByID(ctx, inst.CreditID)
			if err != nil {
				return created, err
			}
			credits[inst.CreditID] = credit
		}

		title, message := alertText(alertType, credit, inst, today)
		err = s.repo.WithTx(ctx, func(r *repository.Repository) error {
			for _, user := range recipients {
				n := &models.Notification{
					UserID:            user.ID,
					Title:             title,
					Message:           message,
					NotificationType:  alertType,
					RelatedEntityType: "PaymentSchedule",
					RelatedEntityID:   inst.ID,
					CreatedAt:         s.now(),
				}
				if err := r.CreateNotification(ctx, n); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return created, err
		}
		created += len(recipients)

		if s.mailer != nil {
			overdue := alertType == models.NotificationPaymentOverdue
			for _, user := range recipients {
				if err := s.mailer.SendPaymentAlert(user.Email, user.Username,
					credit.CreditNumber, inst.DueDate, inst.ExpectedAmount, overdue); err != nil {
					s.log.WithError(err).WithField("user", user.Username).
						Warn("alert email delivery failed")
				}
			}
		}
	}
	return created, nil
}

func alertText(alertType string, credit *models.Credit, inst *models.PaymentSchedule, today time.Time) (string, string) {
	due := inst.DueDate.Format("2006-01-02")
	switch alertType {
	case models.NotificationPaymentOverdue:
		daysLate := int(finance.DateOnly(today).Sub(finance.DateOnly(inst.DueDate)).Hours() / 24)
		return "Overdue installment",
			fmt.Sprintf("Installment %d of credit %s (%.2f) was due on %s, %d day(s) late",
				inst.InstallmentNumber, credit.CreditNumber, inst.ExpectedAmount, due, daysLate)
	default:
		return "Upcoming installment",
			fmt.Sprintf("Installment %d of credit %s (%.2f) is due on %s",
				inst.InstallmentNumber, credit.CreditNumber, inst.ExpectedAmount, due)
	}
}

// ListNotifications retrieves the acting user's notifications, newest first
func (s *Service) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListNotificationsForUser(ctx, actor.UserID)
}

// MarkNotificationRead marks one of the acting user's notifications as read
func (s *Service) MarkNotificationRead(ctx context.Context, id int64) error {
	actor, err := s.actor(ctx)
	if err != nil {
		return err
	}
	return s.mapRepoErr(s.repo.MarkNotificationRead(ctx, id, actor.UserID))
}

// MarkAllNotificationsRead marks every notification of the acting user as read
func (s *Service) MarkAllNotificationsRead(ctx context.Context) error {
	actor, err := s.actor(ctx)
	if err != nil {
		return err
	}
	return s.repo.MarkAllNotificationsRead(ctx, actor.UserID)
}

package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/dibasaye/finance-manager/internal/config"
)

// Sender delivers payment alert emails to staff via SMTP
type Sender struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

// SendPaymentAlert mirrors an in-app payment alert to a staff mailbox.
func (s *Sender) SendPaymentAlert(to, username, creditNumber string, dueDate time.Time, amount float64, overdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if overdue {
		e.Subject = fmt.Sprintf("Overdue installment on credit %s", creditNumber)
	} else {
		e.Subject = fmt.Sprintf("Upcoming installment on credit %s", creditNumber)
	}

	body := fmt.Sprintf("Dear %s,\n\n", username)
	if overdue {
		body += fmt.Sprintf(
			"The installment of %.2f %s on credit %s was due on %s and is still unpaid.\n"+
				"Late penalties accrue until it is settled.\n",
			amount, s.cfg.Settings.Currency, creditNumber, dueDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"The installment of %.2f %s on credit %s is due on %s.\n"+
				"Please follow up with the client.\n",
			amount, s.cfg.Settings.Currency, creditNumber, dueDate.Format("2006-01-02"),
		)
	}
	body += "\nFinance Manager"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.log.Errorf("failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Infof("email sent to %s: %s", to, e.Subject)
	return nil
}

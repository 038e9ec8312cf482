package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/cardkeeper/cardkeeper/internal/config"
	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendDueReminder sends a payment due date reminder for a card
func (s *Sender) SendDueReminder(card models.DueCard) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{card.OwnerEmail}
	e.Subject = fmt.Sprintf("Payment due soon: %s", card.CardName)

	body := fmt.Sprintf(
		"Dear %s,\n\n", card.OwnerName,
	)
	body += fmt.Sprintf(
		"The payment for your card %q is due on %s.\n"+
			"Current balance: %.2f\n",
		card.CardName, card.DueDate.Format("2006-01-02"), card.Balance,
	)
	if card.MinimumPayment > 0 {
		body += fmt.Sprintf("Minimum payment: %.2f\n", card.MinimumPayment)
	}
	body += "\nBest regards,\nCardkeeper"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send reminder to %s: %v", card.OwnerEmail, err)
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	s.logger.Infof("Reminder sent to %s for card %q (due %s)",
		card.OwnerEmail, card.CardName, card.DueDate.Format(time.DateOnly))
	return nil
}

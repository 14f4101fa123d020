// Package notifier is the best-effort post-commit messaging boundary. Nothing
// in here can fail a committed transfer: delivery errors are logged and
// discarded, and each recipient is handled independently.
package notifier

import (
	"fmt"
	"go-bank-ledger/config"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// TransferAlertSubject is the subject line used for both transfer alerts.
const TransferAlertSubject = "Transaction Notification"

// SupportQuerySubject is the subject line for admin alerts about newly
// submitted support queries.
const SupportQuerySubject = "New customer query received"

// Notifier attempts to deliver one message to one recipient. Implementations
// never return an error; they log and discard delivery failures.
type Notifier interface {
	Notify(recipientEmail, subject, body string)
}

// SMTPNotifier delivers mail over SMTP. Credentials come in explicitly at
// construction via the application config, never from a filesystem path.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(cfg config.Config) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:   cfg.SMTP.From,
	}
}

func (n *SMTPNotifier) Notify(recipientEmail, subject, body string) {
	if recipientEmail == "" {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipientEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"recipient": recipientEmail,
			"subject":   subject,
		}).Warn("Email notification failed")
		return
	}

	logger.Log.WithField("recipient", recipientEmail).Info("Email notification sent")
}

// ComposeDebitAlert builds the message for the party whose account was
// debited.
func ComposeDebitAlert(contact *model.Contact, receiverAccountNumber string, amount decimal.Decimal) string {
	return fmt.Sprintf("Hi %s,\n\n"+
		"You have successfully sent ₹%s to account %s.\n\n"+
		"Thank you for banking with %s!\n\n"+
		"Best regards,\n%s Team",
		contact.HolderName, amount.StringFixed(2), receiverAccountNumber,
		contact.BankName, contact.BankName)
}

// ComposeSupportQueryAlert builds the admin-facing message for a submitted
// support query.
func ComposeSupportQueryAlert(q *model.SupportQuery) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\nQuery:\n%s\n\nRegards,\n%s",
		q.Name, q.Email, q.Message, q.Name)
}

// ComposeCreditAlert builds the message for the party whose account was
// credited.
func ComposeCreditAlert(contact *model.Contact, senderAccountNumber string, amount decimal.Decimal) string {
	return fmt.Sprintf("Hi %s,\n\n"+
		"You have received ₹%s from account %s.\n\n"+
		"Thank you for banking with %s!\n\n"+
		"Best regards,\n%s Team",
		contact.HolderName, amount.StringFixed(2), senderAccountNumber,
		contact.BankName, contact.BankName)
}

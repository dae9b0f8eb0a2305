package notifier

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/fuelstock/fuelstock-backend/pkg/config"
)

// Mailer sends plain-text notification emails
type Mailer interface {
	Send(to []string, subject, body string) error
}

// SMTPMailer delivers through an SMTP relay
type SMTPMailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

// NewSMTPMailer creates a mailer from SMTP configuration
func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		host:     cfg.Host,
		user:     cfg.User,
		password: cfg.Password,
		from:     from,
		addr:     cfg.Addr(),
	}
}

// Send sends one plain-text email
func (m *SMTPMailer) Send(to []string, subject, body string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send to %v: %w", to, err)
	}
	return nil
}

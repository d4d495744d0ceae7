// Package mailer wraps SMTP delivery of confirmation codes.
package mailer

import (
	"time"

	mail "github.com/go-mail/mail/v2"
)

// Mailer is the send capability the auth service depends on.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	dialer *mail.Dialer
	sender string
}

func New(host string, port int, username, password, sender string) Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return &smtpMailer{
		dialer: dialer,
		sender: sender,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

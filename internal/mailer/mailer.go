// Package mailer sends transactional mail (password resets) over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
)

// Mailer is what the auth handler depends on; tests substitute a stub.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTP sends through a plain-auth SMTP relay.
type SMTP struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	FromName string
}

func New(host, port, user, password, from, fromName string) *SMTP {
	return &SMTP{Host: host, Port: port, User: user, Password: password, From: from, FromName: fromName}
}

func (m *SMTP) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.FromName, m.From, to, subject, body)

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Password, m.Host)
	}

	addr := m.Host + ":" + m.Port
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

// Package mailer sends transactional mail (password reset links) over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// sendMail is a seam for testing smtp.SendMail.
var sendMail = smtp.SendMail

// Mailer delivers a plain-text message to a single recipient.
type Mailer interface {
	Send(to string, subject string, body string) error
}

// SMTPMailer implements Mailer over net/smtp with plain auth.
type SMTPMailer struct {
	addr     string
	user     string
	password string
	from     string
}

func NewSMTPMailer(addr, user, password, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, user: user, password: password, from: from}
}

func (m *SMTPMailer) Send(to string, subject string, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)

	host := m.addr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, host)
	}
	return sendMail(m.addr, auth, m.from, []string{to}, []byte(msg))
}

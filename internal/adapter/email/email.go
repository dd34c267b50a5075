// Package email delivers invitation and password-reset mail over SMTP, with
// a log-only fallback for environments without a configured relay.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
)

// SMTPMailer sends plain-text mail through an SMTP relay.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailer constructs a mailer from config.
func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.EmailFrom,
	}
}

// Send delivers a single plain-text message.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("op=email.send: %w", err)
	}
	return nil
}

// LogMailer logs mail instead of sending it. Used when SMTP_HOST is unset so
// invitation and reset flows keep working in dev.
type LogMailer struct{}

// Send logs the message that would have been sent.
func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	slog.Info("email (log only)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("body_len", len(body)))
	return nil
}

// FromConfig picks the SMTP mailer when a host is configured, otherwise the
// log-only mailer.
func FromConfig(cfg config.Config) domain.Mailer {
	if cfg.SMTPHost == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

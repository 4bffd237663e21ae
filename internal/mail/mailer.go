// Package mail dispatches transactional email. The SMTP mailer talks to a
// real relay; the log mailer is used when no credentials are configured so
// local development still surfaces verification links.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/stavrogyn/illumate-api/internal/config"
)

// Mailer sends transactional email.
type Mailer interface {
	SendVerification(ctx context.Context, to, token, tenantName string) error
}

// New returns an SMTP mailer when credentials are configured, otherwise a
// mailer that logs the verification link.
func New(cfg config.SMTPConfig, baseURL string) Mailer {
	if cfg.MailEnabled() {
		return &SMTPMailer{cfg: cfg, baseURL: baseURL}
	}
	return &LogMailer{baseURL: baseURL}
}

// SMTPMailer sends mail through a STARTTLS SMTP relay.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	baseURL string
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, token, tenantName string) error {
	subject := fmt.Sprintf("Confirm your registration with %s", tenantName)
	body := verificationBody(m.baseURL, token, tenantName)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.FromEmail, to, subject, body))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	a := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	// smtp.SendMail negotiates STARTTLS when the server advertises it.
	if err := smtp.SendMail(addr, a, m.cfg.FromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// LogMailer logs the verification link instead of sending mail.
type LogMailer struct {
	baseURL string
}

func (m *LogMailer) SendVerification(_ context.Context, to, token, tenantName string) error {
	slog.Info("verification email suppressed, SMTP not configured",
		"to", to,
		"tenant", tenantName,
		"verify_url", verificationURL(m.baseURL, token),
	)
	return nil
}

func verificationURL(baseURL, token string) string {
	return fmt.Sprintf("%s/auth/verify?token=%s", baseURL, token)
}

func verificationBody(baseURL, token, tenantName string) string {
	return fmt.Sprintf(`Hello!

Thank you for registering with %s. To confirm your email, follow the link:

%s

If you did not register with our service, please ignore this message.

Best regards,
The %s team
`, tenantName, verificationURL(baseURL, token), tenantName)
}

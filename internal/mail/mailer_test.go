package mail

import (
	"context"
	"testing"

	"github.com/stavrogyn/illumate-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNew_PicksMailerByConfig(t *testing.T) {
	full := config.SMTPConfig{
		Host: "smtp.example.com", Port: 587,
		Username: "u", Password: "p", FromEmail: "noreply@example.com",
	}
	m := New(full, "https://app.example.com")
	assert.IsType(t, &SMTPMailer{}, m)

	m = New(config.SMTPConfig{}, "https://app.example.com")
	assert.IsType(t, &LogMailer{}, m)
}

func TestLogMailer_NeverFails(t *testing.T) {
	m := &LogMailer{baseURL: "https://app.example.com"}
	err := m.SendVerification(context.Background(), "anna@example.com", "tok", "Practice")
	assert.NoError(t, err)
}

func TestVerificationURL(t *testing.T) {
	url := verificationURL("https://app.example.com", "tok-123")
	assert.Equal(t, "https://app.example.com/auth/verify?token=tok-123", url)
}

func TestVerificationBody(t *testing.T) {
	body := verificationBody("https://app.example.com", "tok-123", "Anna's Practice")
	assert.Contains(t, body, "Anna's Practice")
	assert.Contains(t, body, "https://app.example.com/auth/verify?token=tok-123")
	assert.Contains(t, body, "ignore this message")
}

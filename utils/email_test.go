package utils

import (
	"testing"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailer_DisabledWithoutKey(t *testing.T) {
	m := NewMailer("", "no-reply@example.com")
	assert.IsType(t, NopMailer{}, m)
	assert.NoError(t, m.SendWelcomeEmail("a@example.com", "A"))
	assert.NoError(t, m.SendDonationRequestEmail("a@example.com", "id"))
}

func TestNewMailer_SendGrid(t *testing.T) {
	m := NewMailer("SG.key", "no-reply@example.com")
	assert.IsType(t, &EmailService{}, m)
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage(mail.NewEmail("BloodLink", "no-reply@example.com"), "donor@example.com", "Hello", "<b>hi</b>")

	assert.Equal(t, "Hello", msg.Subject)
	assert.Equal(t, "no-reply@example.com", msg.From.Address)
	require.Len(t, msg.Personalizations, 1)
	require.Len(t, msg.Personalizations[0].To, 1)
	assert.Equal(t, "donor@example.com", msg.Personalizations[0].To[0].Address)
}

func TestContent(t *testing.T) {
	assert.Contains(t, welcomeContent("Rahim"), "Hi Rahim")
	assert.Contains(t, welcomeContent(""), "Hi there")
	assert.Contains(t, donationRequestContent("abc123"), "abc123")
}

package utils

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional notifications
type Mailer interface {
	SendWelcomeEmail(toEmail, name string) error
	SendDonationRequestEmail(toEmail, requestID string) error
}

// NopMailer is used when no mail provider is configured
type NopMailer struct{}

func (NopMailer) SendWelcomeEmail(string, string) error         { return nil }
func (NopMailer) SendDonationRequestEmail(string, string) error { return nil }

// EmailService handles sending emails using SendGrid
type EmailService struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewMailer returns a SendGrid-backed Mailer, or NopMailer when apiKey is empty
func NewMailer(apiKey, sender string) Mailer {
	if apiKey == "" {
		return NopMailer{}
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("BloodLink", sender),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	resp, err := es.client.Send(buildMessage(es.from, toEmail, subject, htmlContent))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcomeEmail greets a newly registered user
func (es *EmailService) SendWelcomeEmail(toEmail, name string) error {
	return es.SendEmail(toEmail, "Welcome to BloodLink", welcomeContent(name))
}

// SendDonationRequestEmail confirms a submitted donation request to its requester
func (es *EmailService) SendDonationRequestEmail(toEmail, requestID string) error {
	return es.SendEmail(toEmail, "Donation Request Received", donationRequestContent(requestID))
}

func buildMessage(from *mail.Email, toEmail, subject, htmlContent string) *mail.SGMailV3 {
	return mail.NewSingleEmail(from, subject, mail.NewEmail("", toEmail), htmlContent, htmlContent)
}

func welcomeContent(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(
		"<strong>Hi %s,</strong><br><br>Thank you for joining BloodLink. Your account is ready and you can now search for donors or create donation requests.",
		name,
	)
}

func donationRequestContent(requestID string) string {
	return fmt.Sprintf(
		"<strong>Your donation request has been received.</strong><br><br>Request ID: <strong>%s</strong><br>Donors in your area can now see it.",
		requestID,
	)
}

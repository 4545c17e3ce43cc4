// utils/email.go
package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/keighl/postmark"

	"kafs-api/models"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
}

// NewEmailService initializes and returns a new EmailService instance.
// Returns nil when POSTMARK_API_TOKEN is not configured; callers treat a nil
// service as "mail disabled".
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		log.Println("POSTMARK_API_TOKEN not set. Email delivery disabled.")
		return nil
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("http://localhost:%s/verify?token=%s", os.Getenv("PORT"), token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your order (ID: %s)! It has been placed successfully and is being prepared.<br><br>Total: <strong>$%.2f</strong><br>Payment Method: <strong>%s</strong><br>Delivery Address: <strong>%s</strong><br><br>Enjoy your coffee!",
		order.ID,
		order.TotalPrice,
		order.PaymentMethod,
		order.Address,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

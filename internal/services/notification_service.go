// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/config"
	"github.com/tradeforge/tradeforge-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	data := map[string]interface{}{
		"Name":         user.Name,
		"DashboardURL": s.config.Frontend.BaseURL,
	}

	tmpl := s.getEmailTemplate("welcome")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendAccountStatusEmail(user *models.User) error {
	data := map[string]interface{}{
		"Name":   user.Name,
		"Status": string(user.Status),
	}

	tmpl := s.getEmailTemplate("account_status")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendPaymentReceiptEmail(transaction *models.Transaction) error {
	data := map[string]interface{}{
		"Amount":   fmt.Sprintf("%.2f", transaction.Amount),
		"Currency": transaction.Currency,
		"Artifact": transaction.Artifact.Name,
	}

	tmpl := s.getEmailTemplate("payment_receipt")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(transaction.BuyerEmail, tmpl.Subject, body)
}

func (s *NotificationService) getEmailTemplate(name string) EmailTemplate {
	switch name {
	case "welcome":
		return EmailTemplate{
			Subject: "Welcome to TradeForge",
			Body: `<h2>Welcome, {{.Name}}!</h2>
<p>Your TradeForge account is ready. Describe a strategy and we will generate
your first Expert Advisor.</p>
<p><a href="{{.DashboardURL}}">Open your dashboard</a></p>`,
		}
	case "account_status":
		return EmailTemplate{
			Subject: "Your TradeForge account status changed",
			Body: `<h2>Hello, {{.Name}}</h2>
<p>Your account status is now: <strong>{{.Status}}</strong>.</p>`,
		}
	case "payment_receipt":
		return EmailTemplate{
			Subject: "TradeForge payment receipt",
			Body: `<h2>Payment received</h2>
<p>We received {{.Amount}} {{.Currency}} for a license of
<strong>{{.Artifact}}</strong>.</p>`,
		}
	default:
		return EmailTemplate{
			Subject: "TradeForge notification",
			Body:    "<p>{{.Message}}</p>",
		}
	}
}

func (s *NotificationService) renderTemplate(body string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(body)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		// Email delivery not configured; skip silently in development.
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body)

	addr := s.config.Email.SMTPHost + ":" + s.config.Email.SMTPPort
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, []byte(msg))
}

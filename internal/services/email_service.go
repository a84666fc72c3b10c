package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"github.com/dentalis/clinica-api/internal/config"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// EmailService sends clinic notifications through Resend
type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// SendStockAlert mails the inventory alert digest to the clinic alert address
func (s *EmailService) SendStockAlert(ctx context.Context, alerts *models.StockAlerts) error {
	if s.config.AlertEmail == "" {
		return nil
	}

	data := struct {
		LowStock     []models.InventoryItemResponse
		OutOfStock   []models.InventoryItemResponse
		Expired      []models.InventoryItemResponse
		ExpiringSoon []models.InventoryItemResponse
	}{
		LowStock:     alerts.LowStock,
		OutOfStock:   alerts.OutOfStock,
		Expired:      alerts.Expired,
		ExpiringSoon: alerts.ExpiringSoon,
	}

	body, err := s.renderTemplate("stock_alert.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{s.config.AlertEmail},
		Subject: "Alertas de inventario",
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send stock alert to %s: %v", s.config.AlertEmail, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Alertas de inventario", s.config.AlertEmail))
	return nil
}

// SendAppointmentReminder mails a reminder to a patient with an email address
func (s *EmailService) SendAppointmentReminder(ctx context.Context, appointment *models.Appointment) error {
	if appointment.Patient.Email == nil || *appointment.Patient.Email == "" {
		return nil
	}

	data := struct {
		Name      string
		Title     string
		StartTime string
	}{
		Name:      appointment.Patient.FullName,
		Title:     appointment.Title,
		StartTime: appointment.StartTime.Format("02/01/2006 15:04"),
	}

	body, err := s.renderTemplate("appointment_reminder.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{*appointment.Patient.Email},
		Subject: "Recordatorio de cita",
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send reminder to %s: %v", *appointment.Patient.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Recordatorio de cita", *appointment.Patient.Email))
	return nil
}

// SendAccountCreated mails a welcome message to a new staff member
func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name string
	}{
		Name: user.FullName,
	}

	body, err := s.renderTemplate("account_created.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{user.Email},
		Subject: "Bienvenido al equipo",
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", user.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Bienvenido al equipo", user.Email))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

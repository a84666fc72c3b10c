package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dentalis/clinica-api/internal/config"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/services"
	"github.com/dentalis/clinica-api/pkg/logger"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.Setup("development")

	if cfg.ResendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is not set")
	}

	// Initialize email service
	emailService := services.NewEmailService(cfg)

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Emails might mock or fail if domain not verified.")
	}

	user := &models.User{
		FullName: "Usuario de Prueba",
		Email:    toEmail,
	}

	// Send Account Created email
	log.Printf("Sending Account Created email to %s...", toEmail)
	if err := emailService.SendAccountCreated(context.Background(), user); err != nil {
		log.Fatalf("Failed to send Account Created email: %v", err)
	}
	log.Println("Account Created email sent successfully!")

	// Send Appointment Reminder email
	start := time.Now().Add(24 * time.Hour)
	appointment := &models.Appointment{
		Title:     "Limpieza dental",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Patient: models.Patient{
			FullName: "Paciente de Prueba",
			Email:    &toEmail,
		},
	}

	log.Printf("Sending Appointment Reminder email to %s...", toEmail)
	if err := emailService.SendAppointmentReminder(context.Background(), appointment); err != nil {
		log.Fatalf("Failed to send Appointment Reminder email: %v", err)
	}
	log.Println("Appointment Reminder email sent successfully!")
}

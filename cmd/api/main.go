package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dentalis/clinica-api/docs" // Swagger docs
	"github.com/dentalis/clinica-api/internal/config"
	"github.com/dentalis/clinica-api/internal/database"
	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/handlers"
	"github.com/dentalis/clinica-api/internal/jobs"
	"github.com/dentalis/clinica-api/internal/middleware"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/dentalis/clinica-api/internal/services"
	"github.com/dentalis/clinica-api/internal/storage"
	"github.com/dentalis/clinica-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Clínica Dental API
// @version 1.0
// @description REST API for dental clinic management: patients, appointments, payments, inventory and financial reports

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize receipt storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories and the in-process event bus
	repos := repository.NewRepositories(db)
	bus := events.NewBus()

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, cfg, store, bus)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Check)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// Staff management
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.PUT("/users/:user_id", h.User.Update)
				admin.DELETE("/users/:user_id", h.User.Delete)

				// Financial reports
				admin.GET("/reports/financial", h.Report.Financial)
				admin.GET("/reports/verify", h.Report.Verify)

				// Destructive payment operations
				admin.DELETE("/payments/:payment_id", h.Payment.Delete)
				admin.POST("/payments/:payment_id/refund", h.Payment.Refund)

				// Patient deletion cascades to appointments, payments and treatments
				admin.DELETE("/patients/:patient_id", h.Patient.Delete)
			}

			// Current user
			protected.GET("/users/me", h.User.Me)
			protected.POST("/users/change_password", h.User.ChangePassword)
			protected.GET("/users/:user_id", h.User.Show)

			// Patients
			patients := protected.Group("/patients")
			{
				patients.GET("", h.Patient.Index)
				patients.POST("", h.Patient.Create)
				patients.GET("/:patient_id", h.Patient.Show)
				patients.PUT("/:patient_id", h.Patient.Update)
				patients.GET("/:patient_id/payment_summary", h.Patient.PaymentSummary)
				patients.GET("/:patient_id/treatment_summary", h.Patient.TreatmentSummary)
				patients.GET("/:patient_id/appointments", h.Patient.Appointments)
				patients.GET("/:patient_id/treatments", h.Patient.Treatments)
			}

			// Appointments (static route before :appointment_id)
			appointments := protected.Group("/appointments")
			{
				appointments.GET("", h.Appointment.Index)
				appointments.GET("/agenda", h.Appointment.Agenda)
				appointments.POST("", h.Appointment.Create)
				appointments.GET("/:appointment_id", h.Appointment.Show)
				appointments.PUT("/:appointment_id", h.Appointment.Update)
				appointments.DELETE("/:appointment_id", h.Appointment.Delete)
			}

			// Tooth treatments (static route before :treatment_id)
			treatments := protected.Group("/treatments")
			{
				treatments.GET("", h.Treatment.Index)
				treatments.GET("/summary", h.Treatment.Summary)
				treatments.POST("", h.Treatment.Create)
				treatments.GET("/:treatment_id", h.Treatment.Show)
				treatments.PUT("/:treatment_id", h.Treatment.Update)
				treatments.DELETE("/:treatment_id", h.Treatment.Delete)
			}

			// Payments
			payments := protected.Group("/payments")
			{
				payments.GET("", h.Payment.Index)
				payments.POST("", h.Payment.Create)
				payments.GET("/:payment_id", h.Payment.Show)
				payments.PUT("/:payment_id", h.Payment.Update)
				payments.POST("/:payment_id/fail", h.Payment.Fail)
				payments.POST("/:payment_id/receipt", h.Payment.UploadReceipt)
				payments.GET("/:payment_id/receipt", h.Payment.DownloadReceipt)
			}

			// Inventory (static route before :item_id)
			inventory := protected.Group("/inventory")
			{
				inventory.GET("", h.Inventory.Index)
				inventory.GET("/alerts", h.Inventory.Alerts)
				inventory.POST("", h.Inventory.Create)
				inventory.GET("/:item_id", h.Inventory.Show)
				inventory.PUT("/:item_id", h.Inventory.Update)
				inventory.POST("/:item_id/adjust", h.Inventory.AdjustStock)
				inventory.DELETE("/:item_id", h.Inventory.Delete)
			}

			// Clinic needs
			needs := protected.Group("/clinic_needs")
			{
				needs.GET("", h.Inventory.IndexNeeds)
				needs.POST("", h.Inventory.CreateNeed)
				needs.PUT("/:need_id", h.Inventory.UpdateNeed)
				needs.DELETE("/:need_id", h.Inventory.DeleteNeed)
			}

			// Lab orders
			labOrders := protected.Group("/lab_orders")
			{
				labOrders.GET("", h.LabOrder.Index)
				labOrders.POST("", h.LabOrder.Create)
				labOrders.GET("/:order_id", h.LabOrder.Show)
				labOrders.PUT("/:order_id", h.LabOrder.Update)
				labOrders.POST("/:order_id/payments", h.LabOrder.RegisterPayment)
				labOrders.POST("/:order_id/deliver", h.LabOrder.MarkDelivered)
				labOrders.DELETE("/:order_id", h.LabOrder.Delete)
			}

			// Clinic expenses
			expenses := protected.Group("/expenses")
			{
				expenses.GET("", h.Expense.Index)
				expenses.POST("", h.Expense.Create)
				expenses.GET("/:expense_id", h.Expense.Show)
				expenses.PUT("/:expense_id", h.Expense.Update)
				expenses.POST("/:expense_id/pay", h.Expense.MarkPaid)
				expenses.DELETE("/:expense_id", h.Expense.Delete)
			}

			// Dashboard
			protected.GET("/dashboard", h.Report.Dashboard)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Hourly inventory alert scan; findings are emailed asynchronously
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Scanning inventory alerts...")
		alerts, err := svcs.Inventory.ScanAlerts(ctx)
		if err != nil {
			return err
		}
		if !alerts.HasAlerts() {
			return nil
		}
		worker.EnqueueAsync(func(ctx context.Context) error {
			return svcs.Email.SendStockAlert(ctx, alerts)
		})
		return nil
	})

	// Daily appointment reminder emails for the next day; the batch send
	// runs on the pooled queue, not on the scheduler tick
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		worker.Enqueue(func(ctx context.Context) error {
			logger.Info("[Job] Sending appointment reminders...")
			return svcs.Appointment.SendUpcomingReminders(ctx, svcs.Email, 24*time.Hour)
		})
		return nil
	})

	// Keep the dashboard summary warm
	worker.ScheduleEvery(15*time.Minute, func(ctx context.Context) error {
		svcs.Dashboard.Invalidate()
		_, err := svcs.Dashboard.GetSummary(ctx)
		return err
	})

	// Purge expired refresh tokens
	worker.ScheduleEvery(12*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Cleaning up expired refresh tokens...")
		return svcs.Auth.CleanupExpiredTokens(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}

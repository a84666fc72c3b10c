package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/repository"
)

// DashboardSummary is the aggregate view shown on the clinic dashboard
type DashboardSummary struct {
	TotalPatients     int64   `json:"total_patients"`
	AppointmentsToday int     `json:"appointments_today"`
	MonthRevenue      float64 `json:"month_revenue"`
	MonthExpenses     float64 `json:"month_expenses"`
	OutstandingTotal  float64 `json:"outstanding_total"`
	StockAlertCount   int     `json:"stock_alert_count"`

	GeneratedAt time.Time `json:"generated_at"`
}

// DashboardService aggregates dashboard facts across stores. It depends only
// on repositories and the event bus; mutations elsewhere invalidate its
// cache through change events rather than direct calls.
type DashboardService struct {
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	paymentRepo     repository.PaymentRepository
	reportSvc       *ReportService
	inventorySvc    *InventoryService

	mu     sync.Mutex
	cached *DashboardSummary
}

// NewDashboardService creates the dashboard service and subscribes it to
// every change event for cache invalidation
func NewDashboardService(
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	paymentRepo repository.PaymentRepository,
	reportSvc *ReportService,
	inventorySvc *InventoryService,
	bus *events.Bus,
) *DashboardService {
	s := &DashboardService{
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		paymentRepo:     paymentRepo,
		reportSvc:       reportSvc,
		inventorySvc:    inventorySvc,
	}

	// Invalidation is idempotent, so duplicate delivery is harmless
	bus.SubscribeAll(func(ctx context.Context, e events.Event) {
		s.Invalidate()
	})

	return s
}

// Invalidate drops the cached summary
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// GetSummary returns the dashboard summary, recomputing it from the full
// collections when any store changed since the last call
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	s.mu.Lock()
	if s.cached != nil {
		summary := *s.cached
		s.mu.Unlock()
		return &summary, nil
	}
	s.mu.Unlock()

	summary, err := s.computeSummary(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = summary
	s.mu.Unlock()

	result := *summary
	return &result, nil
}

func (s *DashboardService) computeSummary(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{GeneratedAt: time.Now()}

	totalPatients, err := s.patientRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	summary.TotalPatients = totalPatients

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todays, err := s.appointmentRepo.FindBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load today's appointments: %w", err)
	}
	summary.AppointmentsToday = len(todays)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	report, err := s.reportSvc.GenerateFinancialReport(ctx, &ReportFilter{From: &monthStart, To: &monthEnd})
	if err != nil {
		return nil, err
	}
	summary.MonthRevenue = report.Revenue
	summary.MonthExpenses = report.Expenses

	payments, err := s.paymentRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	summary.OutstandingTotal = OutstandingBalance(payments)

	alerts, err := s.inventorySvc.ScanAlerts(ctx)
	if err != nil {
		return nil, err
	}
	summary.StockAlertCount = len(alerts.LowStock) + len(alerts.OutOfStock) +
		len(alerts.Expired) + len(alerts.ExpiringSoon)

	return summary, nil
}

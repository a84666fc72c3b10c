package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
)

// ReconciliationEpsilon is the tolerance for breakdown-vs-total mismatches
const ReconciliationEpsilon = 0.01

// ReportFilter restricts a report to an optional date range. Nil bounds are
// open-ended.
type ReportFilter struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether a date falls inside the filter range
func (f *ReportFilter) Contains(date time.Time) bool {
	if f == nil {
		return true
	}
	if f.From != nil && date.Before(*f.From) {
		return false
	}
	if f.To != nil && date.After(*f.To) {
		return false
	}
	return true
}

// ExpenseBreakdown splits the expense side of the report by source
type ExpenseBreakdown struct {
	LabOrdersTotal      float64 `json:"lab_orders_total"`
	ClinicNeedsTotal    float64 `json:"clinic_needs_total"`
	InventoryValuation  float64 `json:"inventory_valuation"`
	ClinicExpensesTotal float64 `json:"clinic_expenses_total"`
}

// Total returns the sum of all expense sources
func (e *ExpenseBreakdown) Total() float64 {
	return e.LabOrdersTotal + e.ClinicNeedsTotal + e.InventoryValuation + e.ClinicExpensesTotal
}

// FinancialReport is the profit/loss summary over a period. Exactly one of
// NetProfit/LossAmount is meaningful, selected by IsProfit.
type FinancialReport struct {
	Revenue      float64          `json:"revenue"`
	Expenses     float64          `json:"expenses"`
	Breakdown    ExpenseBreakdown `json:"expense_breakdown"`
	NetProfit    float64          `json:"net_profit"`
	LossAmount   float64          `json:"loss_amount"`
	IsProfit     bool             `json:"is_profit"`
	ProfitMargin float64          `json:"profit_margin"`

	RevenueByMethod map[string]float64 `json:"revenue_by_method"`
	RevenueByStatus map[string]float64 `json:"revenue_by_status"`
	RevenueByMonth  map[string]float64 `json:"revenue_by_month"`

	GeneratedAt time.Time  `json:"generated_at"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
}

// monthKey truncates a date to its calendar year-month bucket. Buckets key on
// the Gregorian calendar, never on formatted month labels.
func monthKey(date time.Time) string {
	return date.Format("2006-01")
}

// ComputeFinancialReport combines the payment collection with the
// expense-side collections into a period-scoped profit/loss report. Pure:
// all inputs are explicit, nothing is loaded or stored.
//
// Each revenue breakdown independently re-derives its subtotal from the same
// filtered input; VerifyReportAccuracy checks that they reconcile with the
// top-level total.
func ComputeFinancialReport(
	payments []models.Payment,
	labOrders []models.LabOrder,
	needs []models.ClinicNeed,
	items []models.InventoryItem,
	expenses []models.ClinicExpense,
	filter *ReportFilter,
) FinancialReport {
	report := FinancialReport{
		RevenueByMethod: make(map[string]float64),
		RevenueByStatus: make(map[string]float64),
		RevenueByMonth:  make(map[string]float64),
		GeneratedAt:     time.Now(),
	}
	if filter != nil {
		report.From = filter.From
		report.To = filter.To
	}

	// Revenue side: partial and completed payments only
	for i := range payments {
		p := &payments[i]
		if !p.CountsAsRevenue() || !filter.Contains(p.PaymentDate) {
			continue
		}
		amount := SanitizeAmount(p.Amount)
		report.Revenue += amount
		report.RevenueByMethod[p.PaymentMethod] += amount
		report.RevenueByStatus[p.Status] += amount
		report.RevenueByMonth[monthKey(p.PaymentDate)] += amount
	}

	// Expense side
	for i := range labOrders {
		o := &labOrders[i]
		if !filter.Contains(o.OrderDate) {
			continue
		}
		report.Breakdown.LabOrdersTotal += SanitizeAmount(o.PaidAmount)
	}

	for i := range needs {
		n := &needs[i]
		if !n.CountsAsExpense() || !filter.Contains(n.CreatedAt) {
			continue
		}
		report.Breakdown.ClinicNeedsTotal += SanitizeAmount(n.Total())
	}

	// Inventory contributes its current stock valuation, not consumption;
	// it is never date-filtered.
	for i := range items {
		report.Breakdown.InventoryValuation += SanitizeAmount(items[i].StockValue())
	}

	for i := range expenses {
		e := &expenses[i]
		if !e.IsPaid() || !filter.Contains(e.ExpenseDate) {
			continue
		}
		report.Breakdown.ClinicExpensesTotal += SanitizeAmount(e.Amount)
	}

	report.Expenses = report.Breakdown.Total()

	if report.Revenue >= report.Expenses {
		report.IsProfit = true
		report.NetProfit = report.Revenue - report.Expenses
	} else {
		report.LossAmount = report.Expenses - report.Revenue
	}

	if report.Revenue > 0 {
		report.ProfitMargin = (report.Revenue - report.Expenses) / report.Revenue * 100
	}

	return report
}

// VerifyReportAccuracy checks that every revenue breakdown and the expense
// breakdown reconcile with their top-level totals within
// ReconciliationEpsilon. Mismatches come back as warnings; the report itself
// stays valid.
func VerifyReportAccuracy(report *FinancialReport) []string {
	var warnings []string

	check := func(label string, subtotals map[string]float64, total float64) {
		var sum float64
		for _, v := range subtotals {
			sum += v
		}
		if math.Abs(sum-total) > ReconciliationEpsilon {
			warnings = append(warnings,
				fmt.Sprintf("desajuste en %s: subtotales %.2f vs total %.2f", label, sum, total))
		}
	}

	check("ingresos por método de pago", report.RevenueByMethod, report.Revenue)
	check("ingresos por estado", report.RevenueByStatus, report.Revenue)
	check("ingresos por mes", report.RevenueByMonth, report.Revenue)

	if math.Abs(report.Breakdown.Total()-report.Expenses) > ReconciliationEpsilon {
		warnings = append(warnings,
			fmt.Sprintf("desajuste en gastos: desglose %.2f vs total %.2f",
				report.Breakdown.Total(), report.Expenses))
	}

	return warnings
}

// ReportService loads the full collections and produces financial reports
type ReportService struct {
	paymentRepo   repository.PaymentRepository
	labOrderRepo  repository.LabOrderRepository
	needRepo      repository.ClinicNeedRepository
	inventoryRepo repository.InventoryRepository
	expenseRepo   repository.ExpenseRepository
}

// NewReportService creates a new report service
func NewReportService(
	paymentRepo repository.PaymentRepository,
	labOrderRepo repository.LabOrderRepository,
	needRepo repository.ClinicNeedRepository,
	inventoryRepo repository.InventoryRepository,
	expenseRepo repository.ExpenseRepository,
) *ReportService {
	return &ReportService{
		paymentRepo:   paymentRepo,
		labOrderRepo:  labOrderRepo,
		needRepo:      needRepo,
		inventoryRepo: inventoryRepo,
		expenseRepo:   expenseRepo,
	}
}

// GenerateFinancialReport loads every contributing collection and computes
// the report. Recomputation is always a full pass over the current data;
// nothing is cached or updated incrementally.
func (s *ReportService) GenerateFinancialReport(ctx context.Context, filter *ReportFilter) (*FinancialReport, error) {
	payments, err := s.paymentRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	labOrders, err := s.labOrderRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lab orders: %w", err)
	}

	needs, err := s.needRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load clinic needs: %w", err)
	}

	items, err := s.inventoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	expenses, err := s.expenseRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	report := ComputeFinancialReport(payments, labOrders, needs, items, expenses, filter)
	return &report, nil
}

// VerifyFinancialReport generates a report and runs the reconciliation check
// over it
func (s *ReportService) VerifyFinancialReport(ctx context.Context, filter *ReportFilter) (*FinancialReport, []string, error) {
	report, err := s.GenerateFinancialReport(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return report, VerifyReportAccuracy(report), nil
}

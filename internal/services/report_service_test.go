package services

import (
	"context"
	"testing"
	"time"

	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestComputeFinancialReportRevenue(t *testing.T) {
	payments := []models.Payment{
		{Amount: 100, Status: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodCash, PaymentDate: date(2026, 3, 5)},
		{Amount: 50, Status: models.PaymentStatusPartial, PaymentMethod: models.PaymentMethodCard, PaymentDate: date(2026, 3, 10)},
		{Amount: 999, Status: models.PaymentStatusPending, PaymentMethod: models.PaymentMethodCash, PaymentDate: date(2026, 3, 12)},
		{Amount: 999, Status: models.PaymentStatusFailed, PaymentMethod: models.PaymentMethodCash, PaymentDate: date(2026, 3, 13)},
		{Amount: 999, Status: models.PaymentStatusRefunded, PaymentMethod: models.PaymentMethodCash, PaymentDate: date(2026, 3, 14)},
	}

	report := ComputeFinancialReport(payments, nil, nil, nil, nil, nil)

	assert.Equal(t, 150.0, report.Revenue)
	assert.Equal(t, 100.0, report.RevenueByMethod[models.PaymentMethodCash])
	assert.Equal(t, 50.0, report.RevenueByMethod[models.PaymentMethodCard])
	assert.Equal(t, 100.0, report.RevenueByStatus[models.PaymentStatusCompleted])
	assert.Equal(t, 50.0, report.RevenueByStatus[models.PaymentStatusPartial])
	assert.Equal(t, 150.0, report.RevenueByMonth["2026-03"])
}

func TestComputeFinancialReportDateFilter(t *testing.T) {
	payments := []models.Payment{
		{Amount: 100, Status: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodCash, PaymentDate: date(2026, 2, 20)},
		{Amount: 70, Status: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodCash, PaymentDate: date(2026, 3, 5)},
	}
	from := date(2026, 3, 1)
	to := date(2026, 3, 31)

	report := ComputeFinancialReport(payments, nil, nil, nil, nil, &ReportFilter{From: &from, To: &to})

	assert.Equal(t, 70.0, report.Revenue)
	assert.Zero(t, report.RevenueByMonth["2026-02"])
}

func TestComputeFinancialReportMonthBucketing(t *testing.T) {
	payments := []models.Payment{
		{Amount: 10, Status: models.PaymentStatusCompleted, PaymentDate: date(2026, 1, 31)},
		{Amount: 20, Status: models.PaymentStatusCompleted, PaymentDate: date(2026, 2, 1)},
		{Amount: 30, Status: models.PaymentStatusCompleted, PaymentDate: date(2025, 12, 15)},
	}

	report := ComputeFinancialReport(payments, nil, nil, nil, nil, nil)

	assert.Equal(t, 10.0, report.RevenueByMonth["2026-01"])
	assert.Equal(t, 20.0, report.RevenueByMonth["2026-02"])
	assert.Equal(t, 30.0, report.RevenueByMonth["2025-12"])
}

func TestComputeFinancialReportExpenses(t *testing.T) {
	labOrders := []models.LabOrder{
		{Cost: 500, PaidAmount: 200, OrderDate: date(2026, 3, 2)},
	}
	needs := []models.ClinicNeed{
		{NeedName: "Guantes", Quantity: 10, Price: 5, Status: models.NeedStatusOrdered, CreatedAt: date(2026, 3, 3)},
		{NeedName: "Resina", Quantity: 4, Price: 25, Status: models.NeedStatusPending, CreatedAt: date(2026, 3, 3)},
	}
	items := []models.InventoryItem{
		{Name: "Anestesia", Quantity: 20, CostPerUnit: 3},
	}
	expenses := []models.ClinicExpense{
		{ExpenseName: "Renta", Amount: 1000, Status: models.ExpenseStatusPaid, ExpenseDate: date(2026, 3, 1)},
		{ExpenseName: "Luz", Amount: 300, Status: models.ExpenseStatusPending, ExpenseDate: date(2026, 3, 1)},
	}

	report := ComputeFinancialReport(nil, labOrders, needs, items, expenses, nil)

	assert.Equal(t, 200.0, report.Breakdown.LabOrdersTotal)
	// Pending needs never contribute
	assert.Equal(t, 50.0, report.Breakdown.ClinicNeedsTotal)
	assert.Equal(t, 60.0, report.Breakdown.InventoryValuation)
	// Unpaid expenses never contribute
	assert.Equal(t, 1000.0, report.Breakdown.ClinicExpensesTotal)
	assert.Equal(t, 1310.0, report.Expenses)
}

func TestComputeFinancialReportProfitAndLoss(t *testing.T) {
	payments := []models.Payment{
		{Amount: 2000, Status: models.PaymentStatusCompleted, PaymentDate: date(2026, 3, 5)},
	}
	expenses := []models.ClinicExpense{
		{Amount: 500, Status: models.ExpenseStatusPaid, ExpenseDate: date(2026, 3, 1)},
	}

	report := ComputeFinancialReport(payments, nil, nil, nil, expenses, nil)

	assert.True(t, report.IsProfit)
	assert.Equal(t, 1500.0, report.NetProfit)
	assert.Zero(t, report.LossAmount)
	assert.Equal(t, 75.0, report.ProfitMargin)

	// Flip to a loss
	expenses[0].Amount = 3000
	report = ComputeFinancialReport(payments, nil, nil, nil, expenses, nil)

	assert.False(t, report.IsProfit)
	assert.Equal(t, 1000.0, report.LossAmount)
	assert.Zero(t, report.NetProfit)
	assert.Equal(t, -50.0, report.ProfitMargin)
}

func TestComputeFinancialReportZeroRevenueMargin(t *testing.T) {
	report := ComputeFinancialReport(nil, nil, nil, nil, nil, nil)

	assert.Zero(t, report.Revenue)
	assert.Zero(t, report.ProfitMargin)
	assert.True(t, report.IsProfit)
}

func TestVerifyReportAccuracyReconciles(t *testing.T) {
	payments := []models.Payment{
		{Amount: 33.33, Status: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodCash, PaymentDate: date(2026, 3, 1)},
		{Amount: 66.67, Status: models.PaymentStatusPartial, PaymentMethod: models.PaymentMethodCard, PaymentDate: date(2026, 4, 2)},
	}

	report := ComputeFinancialReport(payments, nil, nil, nil, nil, nil)
	warnings := VerifyReportAccuracy(&report)

	assert.Empty(t, warnings)
}

func TestVerifyReportAccuracyDetectsMismatch(t *testing.T) {
	report := FinancialReport{
		Revenue: 100,
		RevenueByMethod: map[string]float64{
			models.PaymentMethodCash: 50,
		},
		RevenueByStatus: map[string]float64{
			models.PaymentStatusCompleted: 100,
		},
		RevenueByMonth: map[string]float64{
			"2026-03": 100,
		},
	}

	warnings := VerifyReportAccuracy(&report)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "método de pago")
}

type mockPaymentRepo struct {
	repository.PaymentRepository
	payments []models.Payment
}

func (m *mockPaymentRepo) FindAll(ctx context.Context) ([]models.Payment, error) {
	return m.payments, nil
}

type mockLabOrderRepo struct {
	repository.LabOrderRepository
	orders []models.LabOrder
}

func (m *mockLabOrderRepo) FindAll(ctx context.Context) ([]models.LabOrder, error) {
	return m.orders, nil
}

type mockNeedRepo struct {
	repository.ClinicNeedRepository
	needs []models.ClinicNeed
}

func (m *mockNeedRepo) FindAll(ctx context.Context) ([]models.ClinicNeed, error) {
	return m.needs, nil
}

type mockInventoryRepo struct {
	repository.InventoryRepository
	items []models.InventoryItem
}

func (m *mockInventoryRepo) FindAll(ctx context.Context) ([]models.InventoryItem, error) {
	return m.items, nil
}

type mockExpenseRepo struct {
	repository.ExpenseRepository
	expenses []models.ClinicExpense
}

func (m *mockExpenseRepo) FindAll(ctx context.Context) ([]models.ClinicExpense, error) {
	return m.expenses, nil
}

func TestGenerateFinancialReport(t *testing.T) {
	svc := NewReportService(
		&mockPaymentRepo{payments: []models.Payment{
			{Amount: 400, Status: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodCash, PaymentDate: date(2026, 3, 5)},
		}},
		&mockLabOrderRepo{},
		&mockNeedRepo{},
		&mockInventoryRepo{},
		&mockExpenseRepo{expenses: []models.ClinicExpense{
			{Amount: 100, Status: models.ExpenseStatusPaid, ExpenseDate: date(2026, 3, 1)},
		}},
	)

	report, warnings, err := svc.VerifyFinancialReport(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 400.0, report.Revenue)
	assert.Equal(t, 100.0, report.Expenses)
	assert.Equal(t, 300.0, report.NetProfit)
	assert.Empty(t, warnings)
}

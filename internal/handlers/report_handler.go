package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentalis/clinica-api/internal/services"
)

type ReportHandler struct {
	reportService    *services.ReportService
	dashboardService *services.DashboardService
}

func NewReportHandler(reportService *services.ReportService, dashboardService *services.DashboardService) *ReportHandler {
	return &ReportHandler{reportService: reportService, dashboardService: dashboardService}
}

// reportFilterFromQuery builds the date filter from start_date/end_date query
// params. Missing bounds leave the filter open on that side.
func reportFilterFromQuery(c *gin.Context) *services.ReportFilter {
	filter := &services.ReportFilter{}
	if from, ok := parseDateParam(c.Query("start_date")); ok {
		filter.From = &from
	}
	if to, ok := parseDateParam(c.Query("end_date")); ok {
		filter.To = &to
	}
	return filter
}

// @Summary Financial Report
// @Description Generate the revenue vs expenses report for an optional date window
// @Tags Reports
// @Accept json
// @Produce json
// @Param start_date query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param end_date query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} services.FinancialReport
// @Security BearerAuth
// @Router /reports/financial [get]
func (h *ReportHandler) Financial(c *gin.Context) {
	report, err := h.reportService.GenerateFinancialReport(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Verify Financial Report
// @Description Generate the financial report and cross-check its totals against the breakdown. Mismatches come back as warnings, never as errors.
// @Tags Reports
// @Accept json
// @Produce json
// @Param start_date query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param end_date query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reports/verify [get]
func (h *ReportHandler) Verify(c *gin.Context) {
	report, warnings, err := h.reportService.VerifyFinancialReport(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":   report,
		"warnings": warnings,
		"is_clean": len(warnings) == 0,
	})
}

// @Summary Dashboard Summary
// @Description Get the cached clinic dashboard summary
// @Tags Reports
// @Accept json
// @Produce json
// @Success 200 {object} services.DashboardSummary
// @Security BearerAuth
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboardService.GetSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

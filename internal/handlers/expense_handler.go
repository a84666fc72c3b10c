package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/dentalis/clinica-api/internal/services"
)

type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// @Summary List Expenses
// @Description Get a paginated list of clinic expenses
// @Tags Expenses
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param expense_type query string false "Filter by type"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /expenses [get]
func (h *ExpenseHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")
	query.Filters["expense_type"] = c.Query("expense_type")
	query.Search = c.Query("search")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses": expenses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Expense
// @Description Get a clinic expense by ID
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Success 200 {object} models.ClinicExpense
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /expenses/{expense_id} [get]
func (h *ExpenseHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)
	expense, err := h.expenseService.GetExpense(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gasto no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// @Summary Create Expense
// @Description Register a new clinic expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense body models.ClinicExpense true "Expense"
// @Success 201 {object} models.ClinicExpense
// @Security BearerAuth
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var expense models.ClinicExpense
	if err := BindNestedOrFlat(c, "expense", &expense); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de gasto inválidos"})
		return
	}

	if err := h.expenseService.CreateExpense(c.Request.Context(), &expense); err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Monto de gasto inválido"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"expense": expense, "message": "Gasto registrado"})
}

// @Summary Update Expense
// @Description Update expense fields
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Param expense body models.ClinicExpense true "Expense"
// @Success 200 {object} models.ClinicExpense
// @Security BearerAuth
// @Router /expenses/{expense_id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)
	expense, err := h.expenseService.GetExpense(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gasto no encontrado"})
		return
	}

	if err := BindNestedOrFlat(c, "expense", expense); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de gasto inválidos"})
		return
	}
	expense.ID = uint(id)

	if err := h.expenseService.UpdateExpense(c.Request.Context(), expense); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense, "message": "Gasto actualizado"})
}

// @Summary Mark Expense Paid
// @Description Transition an expense to paid
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Success 200 {object} models.ClinicExpense
// @Security BearerAuth
// @Router /expenses/{expense_id}/pay [post]
func (h *ExpenseHandler) MarkPaid(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)
	expense, err := h.expenseService.MarkPaid(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gasto no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense, "message": "Gasto pagado"})
}

// @Summary Delete Expense
// @Description Delete a clinic expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /expenses/{expense_id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("expense_id"), 10, 32)
	if err := h.expenseService.DeleteExpense(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gasto no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gasto eliminado"})
}

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

type LabOrderHandler struct {
	labOrderService *services.LabOrderService
}

func NewLabOrderHandler(labOrderService *services.LabOrderService) *LabOrderHandler {
	return &LabOrderHandler{labOrderService: labOrderService}
}

// @Summary List Lab Orders
// @Description Get a paginated list of lab orders
// @Tags LabOrders
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /lab_orders [get]
func (h *LabOrderHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")
	query.Search = c.Query("search")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	orders, total, err := h.labOrderService.ListOrders(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, o := range orders {
		responses = append(responses, o.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"lab_orders": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Lab Order
// @Description Get a lab order by ID
// @Tags LabOrders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.LabOrderResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /lab_orders/{order_id} [get]
func (h *LabOrderHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.labOrderService.GetOrder(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Orden de laboratorio no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lab_order": order.ToResponse()})
}

// @Summary Create Lab Order
// @Description Register a new lab order
// @Tags LabOrders
// @Accept json
// @Produce json
// @Param lab_order body models.LabOrder true "Lab Order"
// @Success 201 {object} models.LabOrderResponse
// @Security BearerAuth
// @Router /lab_orders [post]
func (h *LabOrderHandler) Create(c *gin.Context) {
	var order models.LabOrder
	if err := BindNestedOrFlat(c, "lab_order", &order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de orden inválidos"})
		return
	}

	if err := h.labOrderService.CreateOrder(c.Request.Context(), &order); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lab_order": order.ToResponse(), "message": "Orden registrada"})
}

// @Summary Update Lab Order
// @Description Update lab order fields
// @Tags LabOrders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param lab_order body models.LabOrder true "Lab Order"
// @Success 200 {object} models.LabOrderResponse
// @Security BearerAuth
// @Router /lab_orders/{order_id} [put]
func (h *LabOrderHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.labOrderService.GetOrder(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Orden de laboratorio no encontrada"})
		return
	}

	if err := BindNestedOrFlat(c, "lab_order", order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de orden inválidos"})
		return
	}
	order.ID = uint(id)

	if err := h.labOrderService.UpdateOrder(c.Request.Context(), order); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lab_order": order.ToResponse(), "message": "Orden actualizada"})
}

type LabOrderPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// @Summary Register Lab Order Payment
// @Description Add an amount to the order's paid total. The paid amount never exceeds the order cost.
// @Tags LabOrders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param request body LabOrderPaymentRequest true "Amount"
// @Success 200 {object} models.LabOrderResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /lab_orders/{order_id}/payments [post]
func (h *LabOrderHandler) RegisterPayment(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	var req LabOrderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Monto requerido"})
		return
	}

	order, err := h.labOrderService.RegisterPayment(c.Request.Context(), uint(id), req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Orden de laboratorio no encontrada"})
			return
		}
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Monto de pago inválido"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lab_order": order.ToResponse(), "message": "Pago registrado"})
}

// @Summary Mark Lab Order Delivered
// @Description Transition the order to delivered and stamp the delivery time
// @Tags LabOrders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} models.LabOrderResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /lab_orders/{order_id}/deliver [post]
func (h *LabOrderHandler) MarkDelivered(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	order, err := h.labOrderService.MarkDelivered(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Orden de laboratorio no encontrada"})
			return
		}
		if errors.Is(err, services.ErrInvalidState) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Una orden cancelada no puede ser entregada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lab_order": order.ToResponse(), "message": "Orden entregada"})
}

// @Summary Delete Lab Order
// @Description Delete a lab order
// @Tags LabOrders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /lab_orders/{order_id} [delete]
func (h *LabOrderHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err := h.labOrderService.DeleteOrder(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Orden de laboratorio no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Orden eliminada"})
}

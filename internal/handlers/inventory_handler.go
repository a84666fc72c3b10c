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

type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// @Summary List Inventory
// @Description Get a paginated list of inventory items
// @Tags Inventory
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param category query string false "Filter by category"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /inventory [get]
func (h *InventoryHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["category"] = c.Query("category")
	query.Search = c.Query("search")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	items, total, err := h.inventoryService.ListItems(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, item := range items {
		responses = append(responses, item.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"items": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Inventory Alerts
// @Description Get derived stock and expiry alert buckets over the full inventory
// @Tags Inventory
// @Accept json
// @Produce json
// @Success 200 {object} models.StockAlerts
// @Security BearerAuth
// @Router /inventory/alerts [get]
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.inventoryService.ScanAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// @Summary Get Inventory Item
// @Description Get an inventory item by ID
// @Tags Inventory
// @Accept json
// @Produce json
// @Param item_id path int true "Item ID"
// @Success 200 {object} models.InventoryItemResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /inventory/{item_id} [get]
func (h *InventoryHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("item_id"), 10, 32)
	item, err := h.inventoryService.GetItem(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artículo no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.ToResponse()})
}

// @Summary Create Inventory Item
// @Description Register a new inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param item body models.InventoryItem true "Item"
// @Success 201 {object} models.InventoryItemResponse
// @Security BearerAuth
// @Router /inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var item models.InventoryItem
	if err := BindNestedOrFlat(c, "item", &item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de artículo inválidos"})
		return
	}

	if err := h.inventoryService.CreateItem(c.Request.Context(), &item); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item.ToResponse(), "message": "Artículo registrado"})
}

// @Summary Update Inventory Item
// @Description Update inventory item fields
// @Tags Inventory
// @Accept json
// @Produce json
// @Param item_id path int true "Item ID"
// @Param item body models.InventoryItem true "Item"
// @Success 200 {object} models.InventoryItemResponse
// @Security BearerAuth
// @Router /inventory/{item_id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("item_id"), 10, 32)
	item, err := h.inventoryService.GetItem(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artículo no encontrado"})
		return
	}

	if err := BindNestedOrFlat(c, "item", item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de artículo inválidos"})
		return
	}
	item.ID = uint(id)

	if err := h.inventoryService.UpdateItem(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.ToResponse(), "message": "Artículo actualizado"})
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// @Summary Adjust Stock
// @Description Apply a stock delta (negative for consumption, positive for restock). Stock never goes below zero.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param item_id path int true "Item ID"
// @Param request body AdjustStockRequest true "Delta"
// @Success 200 {object} models.InventoryItemResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /inventory/{item_id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("item_id"), 10, 32)
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delta requerido"})
		return
	}

	item, err := h.inventoryService.AdjustStock(c.Request.Context(), uint(id), req.Delta)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item.ToResponse(), "message": "Inventario ajustado"})
}

// @Summary Delete Inventory Item
// @Description Delete an inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param item_id path int true "Item ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /inventory/{item_id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("item_id"), 10, 32)
	if err := h.inventoryService.DeleteItem(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Artículo no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Artículo eliminado"})
}

// Clinic needs

// @Summary List Clinic Needs
// @Description Get all clinic needs
// @Tags Inventory
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /clinic_needs [get]
func (h *InventoryHandler) IndexNeeds(c *gin.Context) {
	needs, err := h.inventoryService.ListNeeds(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clinic_needs": needs})
}

// @Summary Create Clinic Need
// @Description Register a new clinic need
// @Tags Inventory
// @Accept json
// @Produce json
// @Param clinic_need body models.ClinicNeed true "Clinic Need"
// @Success 201 {object} models.ClinicNeed
// @Security BearerAuth
// @Router /clinic_needs [post]
func (h *InventoryHandler) CreateNeed(c *gin.Context) {
	var need models.ClinicNeed
	if err := BindNestedOrFlat(c, "clinic_need", &need); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de necesidad inválidos"})
		return
	}

	if err := h.inventoryService.CreateNeed(c.Request.Context(), &need); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"clinic_need": need, "message": "Necesidad registrada"})
}

// @Summary Update Clinic Need
// @Description Update clinic need fields
// @Tags Inventory
// @Accept json
// @Produce json
// @Param need_id path int true "Need ID"
// @Param clinic_need body models.ClinicNeed true "Clinic Need"
// @Success 200 {object} models.ClinicNeed
// @Security BearerAuth
// @Router /clinic_needs/{need_id} [put]
func (h *InventoryHandler) UpdateNeed(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("need_id"), 10, 32)
	need, err := h.inventoryService.GetNeed(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Necesidad no encontrada"})
		return
	}

	if err := BindNestedOrFlat(c, "clinic_need", need); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de necesidad inválidos"})
		return
	}
	need.ID = uint(id)

	if err := h.inventoryService.UpdateNeed(c.Request.Context(), need); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clinic_need": need, "message": "Necesidad actualizada"})
}

// @Summary Delete Clinic Need
// @Description Delete a clinic need
// @Tags Inventory
// @Accept json
// @Produce json
// @Param need_id path int true "Need ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /clinic_needs/{need_id} [delete]
func (h *InventoryHandler) DeleteNeed(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("need_id"), 10, 32)
	if err := h.inventoryService.DeleteNeed(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Necesidad no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Necesidad eliminada"})
}

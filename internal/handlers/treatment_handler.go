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

type TreatmentHandler struct {
	treatmentService *services.TreatmentService
}

func NewTreatmentHandler(treatmentService *services.TreatmentService) *TreatmentHandler {
	return &TreatmentHandler{treatmentService: treatmentService}
}

// @Summary List Treatments
// @Description Get a paginated list of tooth treatments
// @Tags Treatments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param patient_id query int false "Filter by patient"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /treatments [get]
func (h *TreatmentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")
	query.Filters["treatment_category"] = c.Query("treatment_category")
	query.Filters["patient_id"] = c.Query("patient_id")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	treatments, total, err := h.treatmentService.ListTreatments(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, t := range treatments {
		responses = append(responses, t.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"treatments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Treatment Summary
// @Description Get a patient's aggregated treatment totals and statuses
// @Tags Treatments
// @Accept json
// @Produce json
// @Param patient_id query int true "Patient ID"
// @Success 200 {object} models.ToothTreatmentSummary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /treatments/summary [get]
func (h *TreatmentHandler) Summary(c *gin.Context) {
	patientID, _ := strconv.ParseUint(c.Query("patient_id"), 10, 32)
	summary, err := h.treatmentService.GetPatientTreatmentSummary(c.Request.Context(), uint(patientID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Paciente no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Get Treatment
// @Description Get a tooth treatment by ID with its derived payment facts
// @Tags Treatments
// @Accept json
// @Produce json
// @Param treatment_id path int true "Treatment ID"
// @Success 200 {object} models.ToothTreatmentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /treatments/{treatment_id} [get]
func (h *TreatmentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("treatment_id"), 10, 32)
	resp, err := h.treatmentService.TreatmentWithPayments(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tratamiento no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"treatment": resp})
}

// @Summary Create Treatment
// @Description Register a new tooth treatment
// @Tags Treatments
// @Accept json
// @Produce json
// @Param treatment body models.ToothTreatment true "Treatment"
// @Success 201 {object} models.ToothTreatmentResponse
// @Security BearerAuth
// @Router /treatments [post]
func (h *TreatmentHandler) Create(c *gin.Context) {
	var treatment models.ToothTreatment
	if err := BindNestedOrFlat(c, "treatment", &treatment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de tratamiento inválidos"})
		return
	}

	if err := h.treatmentService.CreateTreatment(c.Request.Context(), &treatment); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Paciente no encontrado"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"treatment": treatment.ToResponse(), "message": "Tratamiento registrado"})
}

// @Summary Update Treatment
// @Description Update treatment fields. A cost change replays the treatment's payments against the new cost.
// @Tags Treatments
// @Accept json
// @Produce json
// @Param treatment_id path int true "Treatment ID"
// @Param treatment body models.ToothTreatment true "Treatment"
// @Success 200 {object} models.ToothTreatmentResponse
// @Security BearerAuth
// @Router /treatments/{treatment_id} [put]
func (h *TreatmentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("treatment_id"), 10, 32)
	treatment, err := h.treatmentService.GetTreatment(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tratamiento no encontrado"})
		return
	}

	if err := BindNestedOrFlat(c, "treatment", treatment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de tratamiento inválidos"})
		return
	}
	treatment.ID = uint(id)

	if err := h.treatmentService.UpdateTreatment(c.Request.Context(), treatment); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"treatment": treatment.ToResponse(), "message": "Tratamiento actualizado"})
}

// @Summary Delete Treatment
// @Description Delete a treatment. Its payments are kept.
// @Tags Treatments
// @Accept json
// @Produce json
// @Param treatment_id path int true "Treatment ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /treatments/{treatment_id} [delete]
func (h *TreatmentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("treatment_id"), 10, 32)
	if err := h.treatmentService.DeleteTreatment(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tratamiento no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tratamiento eliminado"})
}

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

type PatientHandler struct {
	patientService     *services.PatientService
	paymentService     *services.PaymentService
	appointmentService *services.AppointmentService
	treatmentService   *services.TreatmentService
}

func NewPatientHandler(
	patientService *services.PatientService,
	paymentService *services.PaymentService,
	appointmentService *services.AppointmentService,
	treatmentService *services.TreatmentService,
) *PatientHandler {
	return &PatientHandler{
		patientService:     patientService,
		paymentService:     paymentService,
		appointmentService: appointmentService,
		treatmentService:   treatmentService,
	}
}

// @Summary List Patients
// @Description Get a paginated list of patients
// @Tags Patients
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by name, phone or email"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /patients [get]
func (h *PatientHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	patients, total, err := h.patientService.ListPatients(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range patients {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"patients": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Patient
// @Description Get a patient by ID
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient_id path int true "Patient ID"
// @Success 200 {object} models.PatientResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /patients/{patient_id} [get]
func (h *PatientHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	patient, err := h.patientService.GetPatient(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Paciente no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patient": patient.ToResponse()})
}

// @Summary Create Patient
// @Description Register a new patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient body models.Patient true "Patient"
// @Success 201 {object} models.PatientResponse
// @Security BearerAuth
// @Router /patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	var patient models.Patient
	if err := BindNestedOrFlat(c, "patient", &patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de paciente inválidos"})
		return
	}

	if err := h.patientService.CreatePatient(c.Request.Context(), &patient); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"patient": patient.ToResponse(), "message": "Paciente registrado"})
}

// @Summary Update Patient
// @Description Update patient fields
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient_id path int true "Patient ID"
// @Param patient body models.Patient true "Patient"
// @Success 200 {object} models.PatientResponse
// @Security BearerAuth
// @Router /patients/{patient_id} [put]
func (h *PatientHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	patient, err := h.patientService.GetPatient(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Paciente no encontrado"})
		return
	}

	if err := BindNestedOrFlat(c, "patient", patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de paciente inválidos"})
		return
	}
	patient.ID = uint(id)

	if err := h.patientService.UpdatePatient(c.Request.Context(), patient); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patient": patient.ToResponse(), "message": "Paciente actualizado"})
}

// @Summary Delete Patient
// @Description Delete a patient. Appointments, payments and treatments of the patient are removed by the cascade.
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient_id path int true "Patient ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /patients/{patient_id} [delete]
func (h *PatientHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	if err := h.patientService.DeletePatient(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Paciente no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Paciente eliminado"})
}

// @Summary Patient Payment Summary
// @Description Aggregate payment facts across all appointments and general payments of a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient_id path int true "Patient ID"
// @Success 200 {object} services.PatientPaymentSummary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /patients/{patient_id}/payment_summary [get]
func (h *PatientHandler) PaymentSummary(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	summary, err := h.paymentService.GetPatientPaymentSummary(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Paciente no encontrado"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Patient Appointments
// @Description Get all appointments of a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient_id path int true "Patient ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /patients/{patient_id}/appointments [get]
func (h *PatientHandler) Appointments(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	appointments, err := h.appointmentService.GetPatientAppointments(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, a := range appointments {
		responses = append(responses, a.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"appointments": responses})
}

// @Summary Patient Treatments
// @Description Get all tooth treatments of a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient_id path int true "Patient ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /patients/{patient_id}/treatments [get]
func (h *PatientHandler) Treatments(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	treatments, err := h.treatmentService.GetPatientTreatments(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, t := range treatments {
		responses = append(responses, t.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"treatments": responses})
}

// @Summary Patient Treatment Summary
// @Description Aggregate a patient's treatments with their cumulative payment facts
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient_id path int true "Patient ID"
// @Success 200 {object} models.ToothTreatmentSummary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /patients/{patient_id}/treatment_summary [get]
func (h *PatientHandler) TreatmentSummary(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("patient_id"), 10, 32)
	summary, err := h.treatmentService.GetPatientTreatmentSummary(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Paciente no encontrado"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

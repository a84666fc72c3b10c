package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/dentalis/clinica-api/internal/services"
)

type AppointmentHandler struct {
	appointmentService *services.AppointmentService
}

func NewAppointmentHandler(appointmentService *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// @Summary List Appointments
// @Description Get a paginated list of appointments
// @Tags Appointments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param patient_id query int false "Filter by patient"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /appointments [get]
func (h *AppointmentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")
	query.Filters["patient_id"] = c.Query("patient_id")
	query.Search = c.Query("search")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	appointments, total, err := h.appointmentService.ListAppointments(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, a := range appointments {
		responses = append(responses, a.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"appointments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Appointment Agenda
// @Description Get appointments starting inside a date window
// @Tags Appointments
// @Accept json
// @Produce json
// @Param from query string true "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string true "Window end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /appointments/agenda [get]
func (h *AppointmentHandler) Agenda(c *gin.Context) {
	from, okFrom := parseDateParam(c.Query("from"))
	to, okTo := parseDateParam(c.Query("to"))
	if !okFrom || !okTo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rango de fechas inválido"})
		return
	}

	appointments, err := h.appointmentService.GetAppointmentsBetween(c.Request.Context(), from, to)
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

// @Summary Get Appointment
// @Description Get an appointment by ID with its derived payment facts
// @Tags Appointments
// @Accept json
// @Produce json
// @Param appointment_id path int true "Appointment ID"
// @Success 200 {object} models.AppointmentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /appointments/{appointment_id} [get]
func (h *AppointmentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("appointment_id"), 10, 32)
	resp, err := h.appointmentService.AppointmentWithPayments(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cita no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": resp})
}

// @Summary Create Appointment
// @Description Schedule a new appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param appointment body models.Appointment true "Appointment"
// @Success 201 {object} models.AppointmentResponse
// @Security BearerAuth
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var appointment models.Appointment
	if err := BindNestedOrFlat(c, "appointment", &appointment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de cita inválidos"})
		return
	}

	if err := h.appointmentService.CreateAppointment(c.Request.Context(), &appointment); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Paciente no encontrado"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appointment.ToResponse(), "message": "Cita registrada"})
}

// @Summary Update Appointment
// @Description Update appointment fields. A cost change replays the appointment's payments against the new cost.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param appointment_id path int true "Appointment ID"
// @Param appointment body models.Appointment true "Appointment"
// @Success 200 {object} models.AppointmentResponse
// @Security BearerAuth
// @Router /appointments/{appointment_id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("appointment_id"), 10, 32)
	appointment, err := h.appointmentService.GetAppointment(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cita no encontrada"})
		return
	}

	if err := BindNestedOrFlat(c, "appointment", appointment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos de cita inválidos"})
		return
	}
	appointment.ID = uint(id)

	if err := h.appointmentService.UpdateAppointment(c.Request.Context(), appointment); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appointment.ToResponse(), "message": "Cita actualizada"})
}

// @Summary Delete Appointment
// @Description Delete an appointment. Its payments are kept.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param appointment_id path int true "Appointment ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /appointments/{appointment_id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("appointment_id"), 10, 32)
	if err := h.appointmentService.DeleteAppointment(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cita no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cita eliminada"})
}

// parseDateParam accepts RFC3339 timestamps or plain dates
func parseDateParam(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

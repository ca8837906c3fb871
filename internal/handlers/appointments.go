package handlers

import (
	"counseling-app-server/internal/services"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Service *services.AppointmentService
	Log     *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc *services.AppointmentService, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Service: svc, Log: log}
}

// CreateAppointment handles a student's booking request.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req services.CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	appointment, err := h.Service.CreateAppointment(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Created(c, "Appointment requested successfully", appointment)
}

// GetAppointmentsForUser lists the caller's appointments. Admins get all of them.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req services.ListAppointmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	appointments, err := h.Service.ListAppointments(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID returns one appointment to a participant or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointment, err := h.Service.GetAppointment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatus handles confirm, cancel, complete and no-show.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req services.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	appointment, err := h.Service.UpdateAppointmentStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appointment)
}

// RescheduleAppointment moves an appointment to a new date and time.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req services.RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	appointment, err := h.Service.RescheduleAppointment(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

package handlers

import (
	"counseling-app-server/internal/services"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// CreateSessionNotes lets the appointment's counselor document the session.
func (h *AppointmentHandler) CreateSessionNotes(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req services.SessionNotesRequest
	if !bindJSON(c, &req) {
		return
	}

	notes, err := h.Service.CreateSessionNotes(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Created(c, "Session notes added successfully", notes)
}

// GetSessionNotes returns the notes of an appointment.
func (h *AppointmentHandler) GetSessionNotes(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	notes, err := h.Service.GetSessionNotes(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Session notes fetched successfully", notes)
}

package handlers

import (
	"counseling-app-server/internal/services"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CounselorHandler serves the counselor directory.
type CounselorHandler struct {
	Service *services.CounselorService
	Log     *zap.Logger
}

func NewCounselorHandler(svc *services.CounselorService, log *zap.Logger) *CounselorHandler {
	return &CounselorHandler{Service: svc, Log: log}
}

// GetCounselors lists all counselors with their availability.
func (h *CounselorHandler) GetCounselors(c *gin.Context) {
	counselors, err := h.Service.ListCounselors(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Counselors fetched successfully", counselors)
}

func (h *CounselorHandler) GetCounselor(c *gin.Context) {
	counselor, err := h.Service.GetCounselor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Counselor fetched successfully", counselor)
}

// SetAvailability replaces a counselor's weekly slots.
func (h *CounselorHandler) SetAvailability(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req services.SetAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	counselor, err := h.Service.SetAvailability(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Availability updated successfully", counselor)
}

package handlers

import (
	"counseling-app-server/internal/middleware"
	"counseling-app-server/internal/services"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// actorFromContext builds the service Actor from the claims AuthMiddleware stored.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return services.Actor{}, false
	}
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User role not found in token")
		return services.Actor{}, false
	}
	return services.Actor{ID: userID, Role: role}, true
}

// bindJSON decodes the body; validation is left to the service.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

// respondError maps a service error kind onto the response envelope.
// Transaction failures are logged and reported without their cause.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	kind, ok := services.Kind(err)
	if !ok {
		kind = services.ErrTransactionFailure
	}

	switch kind {
	case services.ErrValidation:
		utils.BadRequest(c, err.Error())
	case services.ErrPermissionDenied:
		utils.Forbidden(c, err.Error())
	case services.ErrNotFound:
		utils.NotFound(c, err.Error())
	case services.ErrSlotConflict, services.ErrCounselorUnavailable:
		utils.Conflict(c, err.Error())
	default:
		log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
		utils.InternalServerError(c, string(services.ErrTransactionFailure))
	}
}

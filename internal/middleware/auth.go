package middleware

import (
	"slices"
	"strings"

	"counseling-app-server/internal/config"
	"counseling-app-server/internal/models"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthMiddleware authenticates the request with a Bearer access token and
// stores the caller's id and role in the context. Refresh tokens are rejected.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, reason := bearerToken(c.GetHeader("Authorization"))
		if reason != "" {
			utils.Unauthorized(c, reason)
			return
		}

		claims, err := utils.ValidateToken(token, cfg.JWTSecret, utils.TokenTypeAccess)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value. The
// returned reason is empty on success.
func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "Authorization header required"
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.ContainsRune(token, ' ') {
		return "", "Invalid authorization header format"
	}
	return token, ""
}

// RoleAuthMiddleware lets the request through only for the given roles.
// It must run after AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.InternalServerError(c, "User role not found in context. AuthMiddleware might be missing.")
			return
		}
		if !slices.Contains(allowedRoles, role) {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

// GetUserRoleFromContext returns the authenticated user's role.
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	v, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := v.(models.Role)
	return role, ok
}

package handlers

import (
	"errors"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles user-related requests (admin operations).
type UserHandler struct {
	Store store.Store
	Log   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(st store.Store, log *zap.Logger) *UserHandler {
	return &UserHandler{Store: st, Log: log}
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	FirstName        string                   `json:"firstName" validate:"required,max=100"`
	LastName         string                   `json:"lastName" validate:"required,max=100"`
	Email            string                   `json:"email" validate:"required,email"`
	Password         string                   `json:"password" validate:"required,min=8"`
	Role             string                   `json:"role" validate:"required,oneof=student counselor admin"`
	StudentProfile   *models.StudentProfile   `json:"studentProfile"`
	CounselorProfile *models.CounselorProfile `json:"counselorProfile"`
}

// CreateUser handles creating a new user (admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := newUser(req.FirstName, req.LastName, req.Email, req.Password, models.Role(req.Role),
		req.StudentProfile, req.CounselorProfile)
	if err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}

	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.Conflict(c, "User with this email already exists")
			return
		}
		h.Log.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		utils.InternalServerError(c, "Failed to create user")
		return
	}

	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles fetching all users (admin). ?role= narrows the list.
func (h *UserHandler) GetUsers(c *gin.Context) {
	role := models.Role(c.Query("role"))
	switch role {
	case "", models.RoleStudent, models.RoleCounselor, models.RoleAdmin:
	default:
		utils.BadRequest(c, "role must be one of [student counselor admin]")
		return
	}

	users, err := h.Store.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.Log.Error("Failed to fetch users", zap.Error(err))
		utils.InternalServerError(c, "Failed to fetch users")
		return
	}

	sanitizedUsers := make([]models.UserSanitized, len(users))
	for i := range users {
		sanitizedUsers[i] = users[i].Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitizedUsers)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.Store.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			h.Log.Error("Failed to fetch user", zap.Error(err))
			utils.InternalServerError(c, "Database error")
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

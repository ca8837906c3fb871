package handlers

import (
	"errors"
	"time"

	"counseling-app-server/internal/config"
	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const refreshTokenCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Store store.Store
	Cfg   *config.Config
	Log   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(st store.Store, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Store: st, Cfg: cfg, Log: log}
}

// RegisterRequest represents the request body for self-registration.
// Admin accounts are created through the users endpoints.
type RegisterRequest struct {
	FirstName        string                   `json:"firstName" validate:"required,max=100"`
	LastName         string                   `json:"lastName" validate:"required,max=100"`
	Email            string                   `json:"email" validate:"required,email"`
	Password         string                   `json:"password" validate:"required,min=8"`
	Role             string                   `json:"role" validate:"required,oneof=student counselor"`
	StudentProfile   *models.StudentProfile   `json:"studentProfile"`
	CounselorProfile *models.CounselorProfile `json:"counselorProfile"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return // Error response handled by BindAndValidate
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

	h.Log.Info("User registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	utils.Created(c, "User registered successfully", user.Sanitize())
}

// newUser prepares a user for insertion. Only the profile matching the role is kept.
func newUser(firstName, lastName, email, password string, role models.Role,
	student *models.StudentProfile, counselor *models.CounselorProfile) (*models.User, error) {
	now := models.Timestamp(time.Now())
	user := &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
	}
	user.ID = models.NewID()
	user.CreatedAt = now
	user.UpdatedAt = now

	switch role {
	case models.RoleStudent:
		user.StudentProfile = student
	case models.RoleCounselor:
		if counselor == nil {
			counselor = &models.CounselorProfile{}
		}
		if counselor.Specializations == nil {
			counselor.Specializations = []string{}
		}
		if counselor.Availability == nil {
			counselor.Availability = []models.AvailabilitySlot{}
		}
		user.CounselorProfile = counselor
	}

	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Store.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			h.Log.Error("Login lookup failed", zap.Error(err))
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}
	h.setRefreshCookie(c, refreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken, // Also in the cookie; kept for non-browser clients
		User:         user.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken issues a new token pair from a valid refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// First try to get the refresh token from HTTP-only cookie
	token, err := c.Cookie(refreshTokenCookie)

	// If no cookie, fall back to request body
	if err != nil || token == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	claims, err := utils.ValidateToken(token, h.Cfg.JWTRefreshSecret, utils.TokenTypeRefresh)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	// The account must still exist; role changes are picked up here.
	user, err := h.Store.FindUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Unauthorized(c, "User associated with token no longer exists")
		} else {
			h.Log.Error("Refresh lookup failed", zap.Error(err))
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}
	h.setRefreshCookie(c, refreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Logout clears the refresh token cookie. Tokens are not stored server-side,
// so an access token stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setRefreshCookie(c, "", -1)
	utils.Success(c, "Logout successful", nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetCookie(
		refreshTokenCookie,
		value,
		maxAge,
		"/",
		"",                     // Domain (empty means current domain)
		!h.Cfg.IsDevelopment(), // Secure (true in prod, false in dev)
		true,                   // HTTP only
	)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	user, err := h.Store.FindUserByID(c.Request.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "User profile not found")
		} else {
			h.Log.Error("Profile lookup failed", zap.Error(err))
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating user profile.
// Empty fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

// UpdateProfile handles updating the currently authenticated user's name.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.FindUserByID(ctx, actor.ID)
	if err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}

	if err := h.Store.UpdateUserProfile(ctx, user.ID, user.FirstName, user.LastName); err != nil {
		h.Log.Error("Failed to update profile", zap.String("user_id", user.ID), zap.Error(err))
		utils.InternalServerError(c, "Failed to update profile")
		return
	}

	updated, err := h.Store.FindUserByID(ctx, user.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to reload profile")
		return
	}
	utils.Success(c, "Profile updated successfully", updated.Sanitize())
}

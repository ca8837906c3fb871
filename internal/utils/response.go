package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseData is the envelope of every JSON response. Data is set on
// success, Error on failure.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

const errorMessage = "An error occurred"

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{Status: http.StatusOK, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{Status: http.StatusCreated, Message: message, Data: data})
}

// Error writes an error envelope and aborts the remaining handlers.
func Error(c *gin.Context, statusCode int, reason string) {
	c.AbortWithStatusJSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: errorMessage,
		Error:   reason,
	})
}

func BadRequest(c *gin.Context, reason string)   { Error(c, http.StatusBadRequest, reason) }
func Unauthorized(c *gin.Context, reason string) { Error(c, http.StatusUnauthorized, reason) }
func Forbidden(c *gin.Context, reason string)    { Error(c, http.StatusForbidden, reason) }
func NotFound(c *gin.Context, reason string)     { Error(c, http.StatusNotFound, reason) }

// Conflict is used for taken slots, unavailable counselors and duplicate emails.
func Conflict(c *gin.Context, reason string) { Error(c, http.StatusConflict, reason) }

func InternalServerError(c *gin.Context, reason string) {
	Error(c, http.StatusInternalServerError, reason)
}

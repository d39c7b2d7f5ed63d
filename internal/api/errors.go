package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/confessly/confessly/internal/moderation"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// respondError maps a service error onto an HTTP response. Missing targets
// come back as 404, everything else is a 500 with a generic message.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, moderation.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "target not found"})
		return
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// respondBadRequest reports a malformed or invalid request body.
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

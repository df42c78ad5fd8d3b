package handler

import (
	"errors"
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// currentUserID pulls the authenticated user's id set by the auth
// middleware. A missing or malformed value writes the response itself.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a uuid path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError translates a service error into an HTTP response.
// Errors outside the taxonomy become a generic 500 so internals never
// leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrLabelNotOnCard):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrCrossBoardMove),
		errors.Is(err, service.ErrDuplicateLabel),
		errors.Is(err, service.ErrOwnerProtected),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

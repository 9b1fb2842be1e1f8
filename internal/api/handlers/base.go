package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/application/service"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
	"github.com/vargak/pennyflow-backend/internal/ingest"
)

// RespondError maps a service error onto the HTTP error envelope
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewAPIError(dto.ErrCodeNotFound, "resource not found"))
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, dto.ConflictError("email is already registered"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.UnauthorizedError("invalid email or password"))
	case errors.Is(err, service.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, dto.ValidationError(err.Error()))
	case errors.Is(err, service.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, service.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, service.ErrNotPending):
		c.JSON(http.StatusConflict, dto.ConflictError(err.Error()))
	case errors.Is(err, service.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, dto.NewAPIError(dto.ErrCodeResolution, err.Error()))
	case errors.Is(err, service.ErrInvalidMapping):
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, service.ErrSessionActive):
		c.JSON(http.StatusConflict, dto.NewAPIError(dto.ErrCodeProcessing, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntQuery parses an integer query parameter with a default
func ParseIntQuery(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

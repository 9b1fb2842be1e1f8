package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/api/middleware"
	"github.com/vargak/pennyflow-backend/internal/application/service"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

// TrainingHandler handles training dataset creation from labeled exports
type TrainingHandler struct {
	training *service.TrainingService
}

// NewTrainingHandler creates a training handler
func NewTrainingHandler(training *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{training: training}
}

// Create learns merchant patterns from a labeled statement export.
// Multipart fields: file (required), name, category_mapping (JSON
// object of raw label to category).
func (h *TrainingHandler) Create(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError("multipart field 'file' is required"))
		return
	}

	opened, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError("could not read uploaded file"))
		return
	}
	defer func() { _ = opened.Close() }()

	content, err := io.ReadAll(opened)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError("could not read uploaded file"))
		return
	}

	var mapping map[string]string
	if raw := c.PostForm("category_mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			c.JSON(http.StatusBadRequest, dto.ValidationError("category_mapping must be a JSON object"))
			return
		}
	}

	result, err := h.training.CreateFromFile(
		middleware.UserID(c),
		c.PostForm("name"),
		header.Filename,
		content,
		mapping,
	)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// CreateFromUpload learns merchant patterns from a file that was already
// uploaded through the files endpoint
func (h *TrainingHandler) CreateFromUpload(c *gin.Context) {
	var req dto.TrainingFromFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	result, err := h.training.CreateFromRawFile(middleware.UserID(c), c.Param("id"), req.Name, req.CategoryMapping)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List returns the user's training datasets
func (h *TrainingHandler) List(c *gin.Context) {
	datasets, err := h.training.List(middleware.UserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	if datasets == nil {
		datasets = []*storage.TrainingDataset{}
	}

	c.JSON(http.StatusOK, datasets)
}

// Get returns one dataset with its learned patterns
func (h *TrainingHandler) Get(c *gin.Context) {
	dataset, patterns, err := h.training.Get(middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TrainingDatasetResponse{
		Dataset:  dataset,
		Patterns: patterns,
	})
}

// Delete removes a dataset and its patterns
func (h *TrainingHandler) Delete(c *gin.Context) {
	if err := h.training.Delete(middleware.UserID(c), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

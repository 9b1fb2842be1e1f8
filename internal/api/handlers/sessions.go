package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/api/middleware"
	"github.com/vargak/pennyflow-backend/internal/application/service"
)

// SessionsHandler starts processing runs and reports their progress
type SessionsHandler struct {
	processing *service.ProcessingService
}

// NewSessionsHandler creates a sessions handler
func NewSessionsHandler(processing *service.ProcessingService) *SessionsHandler {
	return &SessionsHandler{processing: processing}
}

// Start queues a processing session over an uploaded file. The work runs
// in the background; poll Get for progress.
func (h *SessionsHandler) Start(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	datasetIDs := req.TrainingDatasetIDs
	if req.TrainingDatasetID != "" {
		datasetIDs = append(datasetIDs, req.TrainingDatasetID)
	}

	session, err := h.processing.StartProcessing(middleware.UserID(c), req.FileID, service.ProcessingOptions{
		TrainingDatasetIDs: datasetIDs,
		ColumnMapping:      req.ColumnMapping,
		ProcessingRules:    req.ProcessingRules,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, session)
}

// Get returns one session with its current progress counters
func (h *SessionsHandler) Get(c *gin.Context) {
	session, err := h.processing.GetSession(middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// List returns the user's sessions, newest first
func (h *SessionsHandler) List(c *gin.Context) {
	limit := ParseIntQuery(c, "limit", 50)

	sessions, err := h.processing.ListSessions(middleware.UserID(c), limit)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

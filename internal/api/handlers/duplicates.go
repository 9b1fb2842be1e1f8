package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/api/middleware"
	"github.com/vargak/pennyflow-backend/internal/application/service"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

// DuplicatesHandler handles duplicate scanning and resolution
type DuplicatesHandler struct {
	duplicates *service.DuplicateService
}

// NewDuplicatesHandler creates a duplicates handler
func NewDuplicatesHandler(duplicates *service.DuplicateService) *DuplicatesHandler {
	return &DuplicatesHandler{duplicates: duplicates}
}

// Scan rebuilds pending duplicate groups from committed transactions.
// Resolved and ignored groups survive rescans.
func (h *DuplicatesHandler) Scan(c *gin.Context) {
	groups, err := h.duplicates.Scan(middleware.UserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	if groups == nil {
		groups = []*storage.DuplicateGroup{}
	}

	totalDuplicates := 0
	for _, g := range groups {
		totalDuplicates += len(g.Transactions)
	}

	c.JSON(http.StatusOK, dto.ScanResponse{
		GroupsFound:     len(groups),
		TotalDuplicates: totalDuplicates,
		Groups:          groups,
	})
}

// List returns duplicate groups, filterable by status
func (h *DuplicatesHandler) List(c *gin.Context) {
	groups, err := h.duplicates.List(middleware.UserID(c), c.Query("status"))
	if err != nil {
		RespondError(c, err)
		return
	}

	if groups == nil {
		groups = []*storage.DuplicateGroup{}
	}

	c.JSON(http.StatusOK, groups)
}

// Get returns one group with its member transactions
func (h *DuplicatesHandler) Get(c *gin.Context) {
	group, err := h.duplicates.Get(middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// Resolve applies a merge/keep_first/delete_all/ignore decision
func (h *DuplicatesHandler) Resolve(c *gin.Context) {
	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	group, err := h.duplicates.Resolve(middleware.UserID(c), c.Param("id"), req.Action, req.Notes)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// Stats returns group counts by status
func (h *DuplicatesHandler) Stats(c *gin.Context) {
	stats, err := h.duplicates.Stats(middleware.UserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/api/middleware"
	"github.com/vargak/pennyflow-backend/internal/application/service"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

// defaultAutoApproveConfidence is used when the request omits a threshold
const defaultAutoApproveConfidence = 0.9

// StagedHandler handles the review workflow over staged transactions
type StagedHandler struct {
	staging *service.StagingService
}

// NewStagedHandler creates a staged transactions handler
func NewStagedHandler(staging *service.StagingService) *StagedHandler {
	return &StagedHandler{staging: staging}
}

// List returns staged rows, filterable by session and status
func (h *StagedHandler) List(c *gin.Context) {
	filters := storage.StagedFilters{
		SessionID: c.Query("session_id"),
		Status:    c.Query("status"),
		Limit:     ParseIntQuery(c, "limit", 100),
		Offset:    ParseIntQuery(c, "offset", 0),
	}

	rows, total, err := h.staging.List(middleware.UserID(c), filters)
	if err != nil {
		RespondError(c, err)
		return
	}

	if rows == nil {
		rows = []*storage.StagedTransaction{}
	}

	c.JSON(http.StatusOK, dto.ListResponse[*storage.StagedTransaction]{
		Items:  rows,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// Update edits a pending staged row before approval
func (h *StagedHandler) Update(c *gin.Context) {
	var req dto.StagedEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	edit := service.StagedEdit{
		Beneficiary: req.Beneficiary,
		Description: req.Description,
		Category:    req.Category,
	}

	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ValidationError("date must be YYYY-MM-DD"))
			return
		}
		edit.Date = &date
	}

	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ValidationError("amount must be a decimal number"))
			return
		}
		edit.Amount = &amount
	}

	row, err := h.staging.Update(middleware.UserID(c), c.Param("id"), edit)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

// Approve commits one staged row into the transaction table
func (h *StagedHandler) Approve(c *gin.Context) {
	tx, err := h.staging.Approve(middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// Reject discards one staged row
func (h *StagedHandler) Reject(c *gin.Context) {
	if err := h.staging.Reject(middleware.UserID(c), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkReview approves or rejects a batch. The response carries a
// per-item outcome; bad IDs do not abort the rest.
func (h *StagedHandler) BulkReview(c *gin.Context) {
	var req dto.BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	outcomes := h.staging.BulkReview(middleware.UserID(c), req.IDs, req.Action == "approve")

	resp := dto.BulkReviewResponse{Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case storage.StagedStatusApproved:
			resp.ApprovedCount++
		case storage.StagedStatusRejected:
			resp.RejectedCount++
		default:
			resp.ErrorCount++
		}
	}

	c.JSON(http.StatusOK, resp)
}

// AutoApprove commits every pending row of a session at or above the
// confidence threshold
func (h *StagedHandler) AutoApprove(c *gin.Context) {
	var req dto.AutoApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	threshold := defaultAutoApproveConfidence
	if req.MinConfidence != nil {
		threshold = *req.MinConfidence
	}

	approved, err := h.staging.AutoApprove(middleware.UserID(c), req.SessionID, threshold)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: approved})
}

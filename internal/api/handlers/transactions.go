package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/api/middleware"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

var (
	errInvalidDate   = errors.New("date must be YYYY-MM-DD")
	errInvalidAmount = errors.New("amount must be a valid decimal")
)

// TransactionsHandler serves the committed transaction ledger
type TransactionsHandler struct {
	repo storage.Repository
}

// NewTransactionsHandler creates a transactions handler
func NewTransactionsHandler(repo storage.Repository) *TransactionsHandler {
	return &TransactionsHandler{repo: repo}
}

// List returns committed transactions with optional category and date
// range filters
func (h *TransactionsHandler) List(c *gin.Context) {
	filters := storage.TransactionFilters{
		Category: c.Query("category"),
		Limit:    ParseIntQuery(c, "limit", 100),
		Offset:   ParseIntQuery(c, "offset", 0),
	}

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ValidationError("from must be YYYY-MM-DD"))
			return
		}
		filters.From = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ValidationError("to must be YYYY-MM-DD"))
			return
		}
		filters.To = &parsed
	}

	txs, total, err := h.repo.ListTransactions(middleware.UserID(c), filters)
	if err != nil {
		RespondError(c, err)
		return
	}

	if txs == nil {
		txs = []*storage.Transaction{}
	}

	c.JSON(http.StatusOK, dto.ListResponse[*storage.Transaction]{
		Items:  txs,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// Create records a transaction entered by hand
func (h *TransactionsHandler) Create(c *gin.Context) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	tx, err := transactionFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	tx.ID = uuid.NewString()
	tx.UserID = middleware.UserID(c)
	tx.CreatedAt = time.Now().UTC()

	if err := h.repo.SaveTransaction(tx); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// Update replaces the editable fields of a transaction
func (h *TransactionsHandler) Update(c *gin.Context) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	tx, err := transactionFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	tx.ID = c.Param("id")
	tx.UserID = middleware.UserID(c)

	if err := h.repo.UpdateTransaction(tx); err != nil {
		RespondError(c, err)
		return
	}

	updated, err := h.repo.GetTransaction(tx.UserID, tx.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Get returns one committed transaction
func (h *TransactionsHandler) Get(c *gin.Context) {
	tx, err := h.repo.GetTransaction(middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// UpdateCategory recategorizes one transaction. An empty category clears
// it.
func (h *TransactionsHandler) UpdateCategory(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.repo.UpdateTransactionCategory(userID, id, req.Category); err != nil {
		RespondError(c, err)
		return
	}

	tx, err := h.repo.GetTransaction(userID, id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// DeleteOne removes a single transaction
func (h *TransactionsHandler) DeleteOne(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if _, err := h.repo.GetTransaction(userID, id); err != nil {
		RespondError(c, err)
		return
	}

	if err := h.repo.DeleteTransactions(userID, []string{id}); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkUpdate recategorizes a batch of transactions in one call
func (h *TransactionsHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	updated, err := h.repo.BulkUpdateCategory(middleware.UserID(c), req.IDs, req.Category)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: updated})
}

// Delete removes a batch of transactions
func (h *TransactionsHandler) Delete(c *gin.Context) {
	var req dto.DeleteTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	if err := h.repo.DeleteTransactions(middleware.UserID(c), req.IDs); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func transactionFromRequest(req *dto.TransactionRequest) (*storage.Transaction, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, errInvalidDate
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, errInvalidAmount
	}

	currency := req.Currency
	if currency == "" {
		currency = "HUF"
	}

	return &storage.Transaction{
		Date:        date,
		Amount:      amount,
		Currency:    currency,
		Beneficiary: req.Beneficiary,
		Description: req.Description,
		Category:    req.Category,
	}, nil
}

// Stats returns ledger totals and category breakdown
func (h *TransactionsHandler) Stats(c *gin.Context) {
	stats, err := h.repo.GetTransactionStats(middleware.UserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

// StagingService handles the review workflow over staged transactions
type StagingService struct {
	storage storage.Repository
	logger  *slog.Logger
}

// NewStagingService creates a staging service
func NewStagingService(store storage.Repository, logger *slog.Logger) *StagingService {
	return &StagingService{
		storage: store,
		logger:  logger,
	}
}

// StagedEdit carries the fields a reviewer may change before approval
type StagedEdit struct {
	Date        *time.Time
	Amount      *decimal.Decimal
	Beneficiary *string
	Description *string
	Category    *string
}

// ReviewOutcome is the per-item result of a bulk review
type ReviewOutcome struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// List returns staged transactions matching the filters
func (s *StagingService) List(userID string, filters storage.StagedFilters) ([]*storage.StagedTransaction, int, error) {
	return s.storage.ListStagedTransactions(userID, filters)
}

// Update edits a staged transaction. Only pending rows are editable.
func (s *StagingService) Update(userID, id string, edit StagedEdit) (*storage.StagedTransaction, error) {
	row, err := s.storage.GetStagedTransaction(userID, id)
	if err != nil {
		return nil, err
	}
	if row.Status != storage.StagedStatusPending {
		return nil, ErrNotPending
	}

	if edit.Date != nil {
		row.Date = *edit.Date
	}
	if edit.Amount != nil {
		row.Amount = *edit.Amount
	}
	if edit.Beneficiary != nil {
		row.Beneficiary = *edit.Beneficiary
	}
	if edit.Description != nil {
		row.Description = *edit.Description
	}
	if edit.Category != nil {
		// A reviewer-set category is definitive
		row.SuggestedCategory = *edit.Category
		row.Confidence = 1.0
		row.ConfidenceLevel = "very_high"
	}

	if err := s.storage.UpdateStagedTransaction(row); err != nil {
		return nil, err
	}

	return row, nil
}

// Approve commits one staged transaction into the transaction table
func (s *StagingService) Approve(userID, id string) (*storage.Transaction, error) {
	row, err := s.storage.GetStagedTransaction(userID, id)
	if err != nil {
		return nil, err
	}
	if row.Status != storage.StagedStatusPending {
		return nil, ErrNotPending
	}

	tx := &storage.Transaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Date:            row.Date,
		Amount:          row.Amount,
		Currency:        row.Currency,
		Beneficiary:     row.Beneficiary,
		Description:     row.Description,
		Category:        row.SuggestedCategory,
		SourceSessionID: row.SessionID,
		CreatedAt:       time.Now().UTC(),
	}
	// One DB transaction: a failure commits neither the insert nor the
	// status flip, so a retry can never book the money twice
	if err := s.storage.ApproveStaged(tx, id); err != nil {
		return nil, err
	}

	return tx, nil
}

// Reject discards one staged transaction
func (s *StagingService) Reject(userID, id string) error {
	row, err := s.storage.GetStagedTransaction(userID, id)
	if err != nil {
		return err
	}
	if row.Status != storage.StagedStatusPending {
		return ErrNotPending
	}

	return s.storage.UpdateStagedStatus(userID, id, storage.StagedStatusRejected)
}

// BulkReview approves or rejects a batch of staged rows. Items fail
// individually; one bad ID does not abort the rest.
func (s *StagingService) BulkReview(userID string, ids []string, approve bool) []ReviewOutcome {
	outcomes := make([]ReviewOutcome, 0, len(ids))

	for _, id := range ids {
		var err error
		status := storage.StagedStatusRejected
		if approve {
			status = storage.StagedStatusApproved
			_, err = s.Approve(userID, id)
		} else {
			err = s.Reject(userID, id)
		}

		outcome := ReviewOutcome{ID: id, Status: status}
		if err != nil {
			outcome.Status = "error"
			outcome.Error = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// AutoApprove commits every pending row of a session whose suggestion
// confidence is at or above the threshold. Returns the approved count.
func (s *StagingService) AutoApprove(userID, sessionID string, minConfidence float64) (int, error) {
	rows, _, err := s.storage.ListStagedTransactions(userID, storage.StagedFilters{
		SessionID: sessionID,
		Status:    storage.StagedStatusPending,
		Limit:     1 << 30,
	})
	if err != nil {
		return 0, err
	}

	approved := 0
	for _, row := range rows {
		if row.SuggestedCategory == "" || row.Confidence < minConfidence {
			continue
		}
		if _, err := s.Approve(userID, row.ID); err != nil {
			s.logger.Warn("auto-approve skipped row",
				"staged_id", row.ID,
				"error", err,
			)
			continue
		}
		approved++
	}

	s.logger.Info("auto-approve finished",
		"session_id", sessionID,
		"approved", approved,
		"threshold", minConfidence,
	)

	return approved, nil
}

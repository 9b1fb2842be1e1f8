package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

func newStagingService(repo *storage.MockRepository) *StagingService {
	return NewStagingService(repo, testLogger())
}

func seedStaged(repo *storage.MockRepository, userID, id string, rowIndex int, category string, confidence float64) *storage.StagedTransaction {
	row := &storage.StagedTransaction{
		ID:                id,
		SessionID:         "session-1",
		UserID:            userID,
		RowIndex:          rowIndex,
		Date:              time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Amount:            decimal.NewFromFloat(-12.50),
		Currency:          "EUR",
		Beneficiary:       "SPAR Budapest",
		Description:       "groceries",
		SuggestedCategory: category,
		Confidence:        confidence,
		ConfidenceLevel:   "high",
		Status:            storage.StagedStatusPending,
		CreatedAt:         time.Now().UTC(),
	}
	repo.AddStaged(row)
	return row
}

func TestStagingService_Approve(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.9)

	tx, err := svc.Approve("user-1", "staged-1")
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "user-1", tx.UserID)
	assert.Equal(t, "Groceries", tx.Category)
	assert.Equal(t, "SPAR Budapest", tx.Beneficiary)
	assert.Equal(t, "session-1", tx.SourceSessionID)
	assert.True(t, tx.Amount.Equal(decimal.NewFromFloat(-12.50)))

	// Staged row is now approved and cannot be approved again
	got, err := repo.GetStagedTransaction("user-1", "staged-1")
	require.NoError(t, err)
	assert.Equal(t, storage.StagedStatusApproved, got.Status)

	_, err = svc.Approve("user-1", "staged-1")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestStagingService_ApproveFailureCommitsNothing(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.9)

	repo.ApproveStagedErr = assert.AnError

	_, err := svc.Approve("user-1", "staged-1")
	require.Error(t, err)

	// A failed approve books nothing and leaves the row retryable
	_, total, err := repo.ListTransactions("user-1", storage.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	got, err := repo.GetStagedTransaction("user-1", "staged-1")
	require.NoError(t, err)
	assert.Equal(t, storage.StagedStatusPending, got.Status)

	// The retry succeeds once storage recovers
	repo.ApproveStagedErr = nil
	_, err = svc.Approve("user-1", "staged-1")
	require.NoError(t, err)

	_, total, err = repo.ListTransactions("user-1", storage.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestStagingService_Reject(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "", 0)

	require.NoError(t, svc.Reject("user-1", "staged-1"))

	got, err := repo.GetStagedTransaction("user-1", "staged-1")
	require.NoError(t, err)
	assert.Equal(t, storage.StagedStatusRejected, got.Status)

	// No transaction was created
	_, total, err := repo.ListTransactions("user-1", storage.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	assert.ErrorIs(t, svc.Reject("user-1", "staged-1"), ErrNotPending)
}

func TestStagingService_ApproveScopedToUser(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.9)

	_, err := svc.Approve("user-2", "staged-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStagingService_Update(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.62)

	newAmount := decimal.NewFromFloat(-15.00)
	newBeneficiary := "Spar City Center"
	updated, err := svc.Update("user-1", "staged-1", StagedEdit{
		Amount:      &newAmount,
		Beneficiary: &newBeneficiary,
	})
	require.NoError(t, err)

	assert.True(t, updated.Amount.Equal(newAmount))
	assert.Equal(t, "Spar City Center", updated.Beneficiary)
	// Untouched fields survive
	assert.Equal(t, "Groceries", updated.SuggestedCategory)
	assert.InDelta(t, 0.62, updated.Confidence, 1e-9)
}

func TestStagingService_UpdateCategoryIsDefinitive(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.62)

	category := "Eating Out"
	updated, err := svc.Update("user-1", "staged-1", StagedEdit{Category: &category})
	require.NoError(t, err)

	assert.Equal(t, "Eating Out", updated.SuggestedCategory)
	assert.Equal(t, 1.0, updated.Confidence)
	assert.Equal(t, "very_high", updated.ConfidenceLevel)
}

func TestStagingService_UpdateNonPendingFails(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	row := seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.9)
	row.Status = storage.StagedStatusApproved

	amount := decimal.NewFromInt(-5)
	_, err := svc.Update("user-1", "staged-1", StagedEdit{Amount: &amount})
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestStagingService_BulkReview(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.9)
	seedStaged(repo, "user-1", "staged-2", 1, "", 0)

	outcomes := svc.BulkReview("user-1", []string{"staged-1", "staged-2", "missing"}, true)
	require.Len(t, outcomes, 3)

	assert.Equal(t, storage.StagedStatusApproved, outcomes[0].Status)
	assert.Equal(t, storage.StagedStatusApproved, outcomes[1].Status)
	assert.Equal(t, "error", outcomes[2].Status)
	assert.NotEmpty(t, outcomes[2].Error)

	// The bad ID did not abort the good ones
	_, total, err := repo.ListTransactions("user-1", storage.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestStagingService_BulkReject(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.9)
	seedStaged(repo, "user-1", "staged-2", 1, "", 0)

	outcomes := svc.BulkReview("user-1", []string{"staged-1", "staged-2"}, false)
	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.Equal(t, storage.StagedStatusRejected, outcome.Status)
	}

	_, total, err := repo.ListTransactions("user-1", storage.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestStagingService_AutoApprove(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.95)
	seedStaged(repo, "user-1", "staged-2", 1, "Transportation", 0.75)
	seedStaged(repo, "user-1", "staged-3", 2, "Groceries", 0.40)
	seedStaged(repo, "user-1", "staged-4", 3, "", 0.95) // no suggestion

	approved, err := svc.AutoApprove("user-1", "session-1", 0.7)
	require.NoError(t, err)
	assert.Equal(t, 2, approved)

	// Below-threshold and unsuggested rows stay pending
	for _, id := range []string{"staged-3", "staged-4"} {
		row, err := repo.GetStagedTransaction("user-1", id)
		require.NoError(t, err)
		assert.Equal(t, storage.StagedStatusPending, row.Status)
	}

	_, total, err := repo.ListTransactions("user-1", storage.TransactionFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestStagingService_ListFiltersByStatus(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newStagingService(repo)
	seedStaged(repo, "user-1", "staged-1", 0, "Groceries", 0.9)
	row := seedStaged(repo, "user-1", "staged-2", 1, "", 0)
	row.Status = storage.StagedStatusRejected

	rows, total, err := svc.List("user-1", storage.StagedFilters{Status: storage.StagedStatusPending})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "staged-1", rows[0].ID)
}

package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vargak/pennyflow-backend/internal/domain/dedup"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

// DuplicateService scans committed transactions for likely duplicates
// and applies review decisions.
type DuplicateService struct {
	storage storage.Repository
	scorer  *dedup.Scorer
	logger  *slog.Logger
}

// NewDuplicateService creates a duplicate service
func NewDuplicateService(store storage.Repository, scorer *dedup.Scorer, logger *slog.Logger) *DuplicateService {
	return &DuplicateService{
		storage: store,
		scorer:  scorer,
		logger:  logger,
	}
}

// Scan rebuilds the user's pending duplicate groups from all committed
// transactions. Previously resolved and ignored groups are preserved,
// and members of ignored groups are left out of the candidate pool so a
// pair the user dismissed does not resurface on every rescan.
func (s *DuplicateService) Scan(userID string) ([]*storage.DuplicateGroup, error) {
	txs, _, err := s.storage.ListTransactions(userID, storage.TransactionFilters{Limit: 1 << 30})
	if err != nil {
		return nil, err
	}

	ignored, err := s.ignoredMemberIDs(userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*storage.Transaction, len(txs))
	candidates := make([]dedup.Transaction, 0, len(txs))
	for _, tx := range txs {
		if ignored[tx.ID] {
			continue
		}
		byID[tx.ID] = tx
		candidates = append(candidates, dedup.Transaction{
			ID:          tx.ID,
			Date:        tx.Date,
			Amount:      tx.Amount,
			Beneficiary: tx.Beneficiary,
		})
	}

	found := s.scorer.FindGroups(candidates)

	groups := make([]*storage.DuplicateGroup, 0, len(found))
	for _, g := range found {
		group := &storage.DuplicateGroup{
			ID:        uuid.NewString(),
			UserID:    userID,
			Status:    storage.GroupStatusPending,
			Score:     g.Score,
			CreatedAt: time.Now().UTC(),
		}
		for _, member := range g.Members {
			group.Transactions = append(group.Transactions, byID[member.ID])
		}
		groups = append(groups, group)
	}

	if err := s.storage.SaveDuplicateGroups(userID, groups); err != nil {
		return nil, err
	}

	s.logger.Info("duplicate scan finished",
		"user_id", userID,
		"transactions", len(txs),
		"groups", len(groups),
	)

	return groups, nil
}

// ignoredMemberIDs collects the transaction IDs of every ignored group
func (s *DuplicateService) ignoredMemberIDs(userID string) (map[string]bool, error) {
	groups, err := s.storage.ListDuplicateGroups(userID, storage.GroupStatusIgnored)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool)
	for _, group := range groups {
		for _, tx := range group.Transactions {
			ids[tx.ID] = true
		}
	}
	return ids, nil
}

// List returns duplicate groups filtered by status (empty = all)
func (s *DuplicateService) List(userID, status string) ([]*storage.DuplicateGroup, error) {
	return s.storage.ListDuplicateGroups(userID, status)
}

// Get returns one group with its member transactions
func (s *DuplicateService) Get(userID, groupID string) (*storage.DuplicateGroup, error) {
	return s.storage.GetDuplicateGroup(userID, groupID)
}

// Resolve applies a review decision to a pending group:
//
//	merge, keep_first, keep_original  keep the earliest transaction, delete the rest
//	delete_all                        delete every member
//	ignore                            mark the group ignored, delete nothing
func (s *DuplicateService) Resolve(userID, groupID, action, notes string) (*storage.DuplicateGroup, error) {
	group, err := s.storage.GetDuplicateGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	if group.Status != storage.GroupStatusPending {
		return nil, ErrNotPending
	}

	var deleteIDs []string
	status := storage.GroupStatusResolved

	switch action {
	case storage.ResolutionMerge, storage.ResolutionKeepFirst, storage.ResolutionKeepOriginal:
		// Members are loaded date-ascending; everything after the first goes
		for _, tx := range group.Transactions[1:] {
			deleteIDs = append(deleteIDs, tx.ID)
		}
	case storage.ResolutionDeleteAll:
		for _, tx := range group.Transactions {
			deleteIDs = append(deleteIDs, tx.ID)
		}
	case storage.ResolutionIgnore:
		status = storage.GroupStatusIgnored
	default:
		return nil, ErrInvalidAction
	}

	if err := s.storage.ResolveDuplicateGroup(userID, groupID, status, action, notes, deleteIDs); err != nil {
		return nil, err
	}

	s.logger.Info("duplicate group resolved",
		"group_id", groupID,
		"action", action,
		"deleted", len(deleteIDs),
	)

	return s.storage.GetDuplicateGroup(userID, groupID)
}

// Stats returns group counts by status
func (s *DuplicateService) Stats(userID string) (map[string]int, error) {
	return s.storage.GetDuplicateStats(userID)
}

package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated. All methods
// are safe for concurrent use; background jobs write while tests poll.
type MockRepository struct {
	mu sync.Mutex

	users    map[string]*User
	files    map[string]*RawFile
	sessions map[string]*ProcessingSession
	staged   map[string]*StagedTransaction
	txs      map[string]*Transaction
	groups   map[string]*DuplicateGroup
	datasets map[string]*TrainingDataset
	patterns map[string][]*TrainingPattern // keyed by dataset ID

	// Hooks for test assertions
	SaveStagedCalled    bool
	SaveGroupsCalled    bool
	LastSavedGroups     []*DuplicateGroup
	SaveDatasetCalled   bool
	UpdateProgressCalls int
	LastProgressRows    int

	// Error injection for testing error paths
	CreateUserErr      error
	SaveRawFileErr     error
	FindRawFileErr     error
	CreateSessionErr   error
	SaveStagedErr      error
	SaveTransactionErr error
	ApproveStagedErr   error
	SaveGroupsErr      error
	SaveDatasetErr     error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:    make(map[string]*User),
		files:    make(map[string]*RawFile),
		sessions: make(map[string]*ProcessingSession),
		staged:   make(map[string]*StagedTransaction),
		txs:      make(map[string]*Transaction),
		groups:   make(map[string]*DuplicateGroup),
		datasets: make(map[string]*TrainingDataset),
		patterns: make(map[string][]*TrainingPattern),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// ================================================================
// USERS
// ================================================================

func (m *MockRepository) CreateUser(user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateUserErr != nil {
		return m.CreateUserErr
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockRepository) GetUserByEmail(email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockRepository) GetUser(id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// ================================================================
// RAW FILES
// ================================================================

func (m *MockRepository) SaveRawFile(file *RawFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveRawFileErr != nil {
		return m.SaveRawFileErr
	}
	copied := *file
	m.files[file.ID] = &copied
	return nil
}

func (m *MockRepository) GetRawFile(userID, id string) (*RawFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || f.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (m *MockRepository) FindRawFileByHash(userID, contentHash string) (*RawFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindRawFileErr != nil {
		return nil, m.FindRawFileErr
	}
	for _, f := range m.files {
		if f.UserID == userID && f.ContentHash == contentHash {
			copied := *f
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockRepository) ListRawFiles(userID string, limit int) ([]*RawFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var files []*RawFile
	for _, f := range m.files {
		if f.UserID == userID {
			copied := *f
			files = append(files, &copied)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	if len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// ================================================================
// SESSIONS
// ================================================================

func (m *MockRepository) CreateSession(session *ProcessingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateSessionErr != nil {
		return m.CreateSessionErr
	}
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockRepository) GetSession(userID, id string) (*ProcessingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *MockRepository) ListSessions(userID string, limit int) ([]*ProcessingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var sessions []*ProcessingSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			copied := *s
			sessions = append(sessions, &copied)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (m *MockRepository) UpdateSessionProgress(id string, rowsProcessed, withSuggestions, highConfidence int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProgressCalls++
	m.LastProgressRows = rowsProcessed
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.RowsProcessed = rowsProcessed
	s.RowsWithSuggestions = withSuggestions
	s.HighConfidence = highConfidence
	return nil
}

func (m *MockRepository) UpdateSessionStatus(id, status string, totalRows int, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
	if totalRows > 0 {
		s.TotalRowsFound = totalRows
	}
	if errorMessage != "" {
		s.ErrorMessage = errorMessage
	}
	return nil
}

// ================================================================
// STAGED TRANSACTIONS
// ================================================================

func (m *MockRepository) SaveStagedTransactions(rows []*StagedTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveStagedCalled = true
	if m.SaveStagedErr != nil {
		return m.SaveStagedErr
	}
	for _, row := range rows {
		copied := *row
		m.staged[row.ID] = &copied
	}
	return nil
}

func (m *MockRepository) GetStagedTransaction(userID, id string) (*StagedTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.staged[id]
	if !ok || row.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *MockRepository) ListStagedTransactions(userID string, filters StagedFilters) ([]*StagedTransaction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matching []*StagedTransaction
	for _, row := range m.staged {
		if row.UserID != userID {
			continue
		}
		if filters.SessionID != "" && row.SessionID != filters.SessionID {
			continue
		}
		if filters.Status != "" && row.Status != filters.Status {
			continue
		}
		copied := *row
		matching = append(matching, &copied)
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].RowIndex < matching[j].RowIndex
	})

	total := len(matching)
	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return matching[start:end], total, nil
}

func (m *MockRepository) UpdateStagedTransaction(row *StagedTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.staged[row.ID]
	if !ok || existing.UserID != row.UserID {
		return ErrNotFound
	}
	copied := *row
	copied.Status = existing.Status
	m.staged[row.ID] = &copied
	return nil
}

func (m *MockRepository) ApproveStaged(tx *Transaction, stagedID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Atomic: on any failure neither the status flip nor the insert lands
	if m.ApproveStagedErr != nil {
		return m.ApproveStagedErr
	}
	row, ok := m.staged[stagedID]
	if !ok || row.UserID != tx.UserID || row.Status != StagedStatusPending {
		return ErrNotFound
	}
	row.Status = StagedStatusApproved
	copied := *tx
	m.txs[tx.ID] = &copied
	return nil
}

func (m *MockRepository) UpdateStagedStatus(userID, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.staged[id]
	if !ok || row.UserID != userID {
		return ErrNotFound
	}
	row.Status = status
	return nil
}

func (m *MockRepository) DeleteStagedBySession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range m.staged {
		if row.SessionID == sessionID {
			delete(m.staged, id)
		}
	}
	return nil
}

// ================================================================
// TRANSACTIONS
// ================================================================

func (m *MockRepository) SaveTransaction(tx *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveTransactionErr != nil {
		return m.SaveTransactionErr
	}
	copied := *tx
	m.txs[tx.ID] = &copied
	return nil
}

func (m *MockRepository) GetTransaction(userID, id string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok || tx.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *tx
	return &copied, nil
}

func (m *MockRepository) ListTransactions(userID string, filters TransactionFilters) ([]*Transaction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matching []*Transaction
	for _, tx := range m.txs {
		if tx.UserID != userID {
			continue
		}
		if filters.Category != "" && tx.Category != filters.Category {
			continue
		}
		if filters.From != nil && tx.Date.Before(*filters.From) {
			continue
		}
		if filters.To != nil && tx.Date.After(*filters.To) {
			continue
		}
		copied := *tx
		matching = append(matching, &copied)
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].Date.After(matching[j].Date)
	})

	total := len(matching)
	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return matching[start:end], total, nil
}

func (m *MockRepository) UpdateTransaction(tx *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.txs[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return ErrNotFound
	}
	copied := *tx
	copied.SourceSessionID = existing.SourceSessionID
	copied.CreatedAt = existing.CreatedAt
	m.txs[tx.ID] = &copied
	return nil
}

func (m *MockRepository) BulkUpdateCategory(userID string, ids []string, category string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	updated := 0
	for _, id := range ids {
		if tx, ok := m.txs[id]; ok && tx.UserID == userID {
			tx.Category = category
			updated++
		}
	}
	return updated, nil
}

func (m *MockRepository) UpdateTransactionCategory(userID, id, category string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok || tx.UserID != userID {
		return ErrNotFound
	}
	tx.Category = category
	return nil
}

func (m *MockRepository) DeleteTransactions(userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteTransactionsLocked(userID, ids)
	return nil
}

func (m *MockRepository) deleteTransactionsLocked(userID string, ids []string) {
	for _, id := range ids {
		if tx, ok := m.txs[id]; ok && tx.UserID == userID {
			delete(m.txs, id)
		}
	}
}

func (m *MockRepository) GetTransactionStats(userID string) (*TransactionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &TransactionStats{
		ByCategory: make(map[string]int),
	}
	total := decimal.Zero
	for _, tx := range m.txs {
		if tx.UserID != userID {
			continue
		}
		stats.TotalCount++
		total = total.Add(tx.Amount)
		if tx.Category == "" {
			stats.Uncategorized++
		} else {
			stats.ByCategory[tx.Category]++
		}

		date := tx.Date.Format("2006-01-02")
		if stats.EarliestDate == "" || date < stats.EarliestDate {
			stats.EarliestDate = date
		}
		if stats.LatestDate == "" || date > stats.LatestDate {
			stats.LatestDate = date
		}
	}
	stats.TotalAmount = total.String()
	return stats, nil
}

// ================================================================
// DUPLICATE GROUPS
// ================================================================

func (m *MockRepository) SaveDuplicateGroups(userID string, groups []*DuplicateGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveGroupsCalled = true
	m.LastSavedGroups = groups
	if m.SaveGroupsErr != nil {
		return m.SaveGroupsErr
	}
	for id, g := range m.groups {
		if g.UserID == userID && g.Status == GroupStatusPending {
			delete(m.groups, id)
		}
	}
	for _, g := range groups {
		copied := *g
		copied.UserID = userID
		m.groups[g.ID] = &copied
	}
	return nil
}

func (m *MockRepository) GetDuplicateGroup(userID, id string) (*DuplicateGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok || g.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (m *MockRepository) ListDuplicateGroups(userID, status string) ([]*DuplicateGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var groups []*DuplicateGroup
	for _, g := range m.groups {
		if g.UserID != userID {
			continue
		}
		if status != "" && g.Status != status {
			continue
		}
		copied := *g
		groups = append(groups, &copied)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Score > groups[j].Score
	})
	return groups, nil
}

func (m *MockRepository) ResolveDuplicateGroup(userID, groupID, status, resolution, notes string, deleteTxIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok || g.UserID != userID || g.Status != GroupStatusPending {
		return ErrNotFound
	}
	g.Status = status
	g.Resolution = resolution
	g.Notes = notes
	m.deleteTransactionsLocked(userID, deleteTxIDs)
	return nil
}

func (m *MockRepository) GetDuplicateStats(userID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := map[string]int{
		GroupStatusPending:  0,
		GroupStatusResolved: 0,
		GroupStatusIgnored:  0,
	}
	for _, g := range m.groups {
		if g.UserID == userID {
			stats[g.Status]++
		}
	}
	return stats, nil
}

// ================================================================
// TRAINING
// ================================================================

func (m *MockRepository) SaveTrainingDataset(dataset *TrainingDataset, patterns []*TrainingPattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveDatasetCalled = true
	if m.SaveDatasetErr != nil {
		return m.SaveDatasetErr
	}
	dataset.PatternCount = len(patterns)
	copied := *dataset
	m.datasets[dataset.ID] = &copied
	m.patterns[dataset.ID] = patterns
	return nil
}

func (m *MockRepository) GetTrainingDataset(userID, id string) (*TrainingDataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.datasets[id]
	if !ok || d.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *MockRepository) ListTrainingDatasets(userID string) ([]*TrainingDataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var datasets []*TrainingDataset
	for _, d := range m.datasets {
		if d.UserID == userID {
			copied := *d
			datasets = append(datasets, &copied)
		}
	}
	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].CreatedAt.After(datasets[j].CreatedAt)
	})
	return datasets, nil
}

func (m *MockRepository) GetTrainingPatterns(datasetID string) ([]*TrainingPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.patterns[datasetID], nil
}

func (m *MockRepository) DeleteTrainingDataset(userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.datasets[id]
	if !ok || d.UserID != userID {
		return ErrNotFound
	}
	delete(m.datasets, id)
	delete(m.patterns, id)
	return nil
}

// Helper methods for test setup

// AddTransaction adds a committed transaction directly (for test setup)
func (m *MockRepository) AddTransaction(tx *Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[tx.ID] = tx
}

// AddStaged adds a staged row directly (for test setup)
func (m *MockRepository) AddStaged(row *StagedTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged[row.ID] = row
}

// AddUser adds a user directly (for test setup)
func (m *MockRepository) AddUser(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// FindStagedByBeneficiary returns staged rows whose beneficiary contains
// the given substring (for assertions)
func (m *MockRepository) FindStagedByBeneficiary(substr string) []*StagedTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*StagedTransaction
	for _, row := range m.staged {
		if strings.Contains(strings.ToLower(row.Beneficiary), strings.ToLower(substr)) {
			copied := *row
			result = append(result, &copied)
		}
	}
	return result
}

package storage

import "time"

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	UserRepository
	FileRepository
	SessionRepository
	StagedRepository
	TransactionRepository
	DuplicateRepository
	TrainingRepository
	Close() error
}

// UserRepository handles account operations
type UserRepository interface {
	// CreateUser inserts a new user
	CreateUser(user *User) error

	// GetUserByEmail retrieves a user by email (ErrNotFound if absent)
	GetUserByEmail(email string) (*User, error)

	// GetUser retrieves a user by ID
	GetUser(id string) (*User, error)
}

// FileRepository handles raw uploaded files
type FileRepository interface {
	// SaveRawFile stores an uploaded file
	SaveRawFile(file *RawFile) error

	// GetRawFile retrieves a file by ID, scoped to the owning user
	GetRawFile(userID, id string) (*RawFile, error)

	// FindRawFileByHash looks up a file by content hash for upload dedup
	FindRawFileByHash(userID, contentHash string) (*RawFile, error)

	// ListRawFiles returns the user's uploads, newest first
	ListRawFiles(userID string, limit int) ([]*RawFile, error)
}

// SessionRepository handles processing session tracking
type SessionRepository interface {
	// CreateSession inserts a new processing session
	CreateSession(session *ProcessingSession) error

	// GetSession retrieves a session by ID, scoped to the owning user
	GetSession(userID, id string) (*ProcessingSession, error)

	// ListSessions returns the user's sessions, newest first
	ListSessions(userID string, limit int) ([]*ProcessingSession, error)

	// UpdateSessionProgress persists incremental progress counters
	UpdateSessionProgress(id string, rowsProcessed, withSuggestions, highConfidence int) error

	// UpdateSessionStatus transitions a session and records totals or error
	UpdateSessionStatus(id, status string, totalRows int, errorMessage string) error
}

// StagedFilters narrows staged transaction listings
type StagedFilters struct {
	SessionID string // empty = all sessions
	Status    string // empty = all statuses
	Limit     int    // 0 = default 100
	Offset    int
}

// StagedRepository handles transactions awaiting review
type StagedRepository interface {
	// SaveStagedTransactions inserts a batch of staged rows in one transaction
	SaveStagedTransactions(rows []*StagedTransaction) error

	// GetStagedTransaction retrieves one staged row, scoped to the owning user
	GetStagedTransaction(userID, id string) (*StagedTransaction, error)

	// ListStagedTransactions returns staged rows matching the filters
	ListStagedTransactions(userID string, filters StagedFilters) ([]*StagedTransaction, int, error)

	// UpdateStagedTransaction persists edits to a pending row
	UpdateStagedTransaction(row *StagedTransaction) error

	// UpdateStagedStatus transitions a staged row's review status
	UpdateStagedStatus(userID, id, status string) error

	// ApproveStaged flips a pending row to approved and inserts the
	// confirmed transaction in one database transaction
	ApproveStaged(tx *Transaction, stagedID string) error

	// DeleteStagedBySession removes all staged rows for a session
	DeleteStagedBySession(sessionID string) error
}

// TransactionFilters narrows committed transaction listings
type TransactionFilters struct {
	Category string
	From     *time.Time
	To       *time.Time
	Limit    int // 0 = default 100
	Offset   int
}

// TransactionStats aggregates committed transactions
type TransactionStats struct {
	TotalCount    int            `json:"total_count"`
	TotalAmount   string         `json:"total_amount"`
	ByCategory    map[string]int `json:"by_category"`
	EarliestDate  string         `json:"earliest_date,omitempty"`
	LatestDate    string         `json:"latest_date,omitempty"`
	Uncategorized int            `json:"uncategorized"`
}

// TransactionRepository handles committed transactions
type TransactionRepository interface {
	// SaveTransaction inserts a committed transaction
	SaveTransaction(tx *Transaction) error

	// GetTransaction retrieves a transaction by ID, scoped to the owning user
	GetTransaction(userID, id string) (*Transaction, error)

	// ListTransactions returns transactions matching the filters with total count
	ListTransactions(userID string, filters TransactionFilters) ([]*Transaction, int, error)

	// UpdateTransaction persists edits to a committed transaction
	UpdateTransaction(tx *Transaction) error

	// UpdateTransactionCategory sets the category on a committed transaction
	UpdateTransactionCategory(userID, id, category string) error

	// BulkUpdateCategory sets one category on a batch, returning the
	// updated count
	BulkUpdateCategory(userID string, ids []string, category string) (int, error)

	// DeleteTransactions removes the given transactions for a user
	DeleteTransactions(userID string, ids []string) error

	// GetTransactionStats returns aggregate statistics
	GetTransactionStats(userID string) (*TransactionStats, error)
}

// DuplicateRepository handles duplicate group persistence
type DuplicateRepository interface {
	// SaveDuplicateGroups replaces the user's pending groups with a fresh scan result
	SaveDuplicateGroups(userID string, groups []*DuplicateGroup) error

	// GetDuplicateGroup retrieves a group with its member transactions
	GetDuplicateGroup(userID, id string) (*DuplicateGroup, error)

	// ListDuplicateGroups returns groups filtered by status (empty = all)
	ListDuplicateGroups(userID, status string) ([]*DuplicateGroup, error)

	// ResolveDuplicateGroup marks a group resolved/ignored and deletes the
	// given transactions in the same database transaction
	ResolveDuplicateGroup(userID, groupID, status, resolution, notes string, deleteTxIDs []string) error

	// GetDuplicateStats returns counts of groups by status
	GetDuplicateStats(userID string) (map[string]int, error)
}

// TrainingRepository handles training datasets and learned patterns
type TrainingRepository interface {
	// SaveTrainingDataset stores a dataset and its patterns atomically
	SaveTrainingDataset(dataset *TrainingDataset, patterns []*TrainingPattern) error

	// GetTrainingDataset retrieves a dataset by ID, scoped to the owning user
	GetTrainingDataset(userID, id string) (*TrainingDataset, error)

	// ListTrainingDatasets returns the user's datasets, newest first
	ListTrainingDatasets(userID string) ([]*TrainingDataset, error)

	// GetTrainingPatterns returns all patterns for a dataset
	GetTrainingPatterns(datasetID string) ([]*TrainingPattern, error)

	// DeleteTrainingDataset removes a dataset and its patterns
	DeleteTrainingDataset(userID, id string) error
}

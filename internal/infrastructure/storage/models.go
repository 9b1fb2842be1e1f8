package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session status values
const (
	SessionStatusQueued     = "queued"
	SessionStatusProcessing = "processing"
	SessionStatusProcessed  = "processed"
	SessionStatusFailed     = "failed"
)

// Staged transaction status values
const (
	StagedStatusPending  = "pending"
	StagedStatusApproved = "approved"
	StagedStatusRejected = "rejected"
)

// Duplicate group status values
const (
	GroupStatusPending  = "pending"
	GroupStatusResolved = "resolved"
	GroupStatusIgnored  = "ignored"
)

// Duplicate resolution actions. keep_original is an accepted alias of
// keep_first kept for older clients.
const (
	ResolutionMerge        = "merge"
	ResolutionKeepFirst    = "keep_first"
	ResolutionKeepOriginal = "keep_original"
	ResolutionDeleteAll    = "delete_all"
	ResolutionIgnore       = "ignore"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RawFile represents an uploaded statement file.
// Content is kept in the database so a session can be re-run without
// the original upload.
type RawFile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	SizeBytes   int64     `json:"size_bytes"`
	MimeType    string    `json:"mime_type"`
	Content     []byte    `json:"-"`
	SchemaJSON  string    `json:"-"` // detected schema, serialized
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ProcessingSession tracks one background parse/categorize run over a raw
// file, including how the caller configured that run: which training
// datasets feed suggestions, an explicit column mapping overriding header
// detection, and free-form processing rules.
type ProcessingSession struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"user_id"`
	RawFileID           string            `json:"raw_file_id"`
	TrainingDatasetIDs  []string          `json:"training_dataset_ids,omitempty"`
	ColumnMapping       map[string]string `json:"column_mapping,omitempty"`
	ProcessingRules     map[string]string `json:"processing_rules,omitempty"`
	Status              string            `json:"status"`
	RowsProcessed       int               `json:"rows_processed"`
	TotalRowsFound      int               `json:"total_rows_found"`
	RowsWithSuggestions int               `json:"rows_with_suggestions"`
	HighConfidence      int               `json:"high_confidence_suggestions"`
	ErrorMessage        string            `json:"error_message,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	CompletedAt         *time.Time        `json:"completed_at,omitempty"`
}

// StagedTransaction is a parsed row awaiting review
type StagedTransaction struct {
	ID                string          `json:"id"`
	SessionID         string          `json:"session_id"`
	UserID            string          `json:"user_id"`
	RowIndex          int             `json:"row_index"`
	Date              time.Time       `json:"date"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Beneficiary       string          `json:"beneficiary"`
	Description       string          `json:"description,omitempty"`
	SuggestedCategory string          `json:"suggested_category,omitempty"`
	Confidence        float64         `json:"confidence"`
	ConfidenceLevel   string          `json:"confidence_level,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Transaction is an approved, committed transaction
type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Beneficiary     string          `json:"beneficiary"`
	Description     string          `json:"description,omitempty"`
	Category        string          `json:"category,omitempty"`
	SourceSessionID string          `json:"source_session_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DuplicateGroup is a set of transactions flagged as likely duplicates
type DuplicateGroup struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Status     string     `json:"status"`
	Score      float64    `json:"score"`
	Resolution string     `json:"resolution,omitempty"`
	Notes      string     `json:"resolution_notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// Populated on read
	Transactions []*Transaction `json:"transactions,omitempty"`
}

// TrainingDataset is a set of learned merchant patterns from one upload
type TrainingDataset struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	SourceFilename string    `json:"source_filename,omitempty"`
	PatternCount   int       `json:"pattern_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// TrainingPattern maps a normalized merchant key to its dominant category
type TrainingPattern struct {
	ID          int64   `json:"id"`
	DatasetID   string  `json:"dataset_id"`
	MerchantKey string  `json:"merchant_key"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Occurrences int     `json:"occurrences"`
}

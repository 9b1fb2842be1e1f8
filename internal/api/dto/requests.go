package dto

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProcessRequest starts a processing session over an uploaded file.
// Everything beyond the file is optional: without datasets rows get no
// suggestions, without a column mapping the format is auto-detected.
// TrainingDatasetID is the older single-dataset field and is merged into
// TrainingDatasetIDs.
type ProcessRequest struct {
	FileID             string            `json:"file_id" binding:"required"`
	TrainingDatasetID  string            `json:"training_dataset_id"`
	TrainingDatasetIDs []string          `json:"training_dataset_ids"`
	ColumnMapping      map[string]string `json:"column_mapping"`
	ProcessingRules    map[string]string `json:"processing_rules"`
}

// StagedEditRequest edits a pending staged transaction. All fields are
// optional; only the ones present are applied.
type StagedEditRequest struct {
	Date        *string `json:"date"` // YYYY-MM-DD
	Amount      *string `json:"amount"`
	Beneficiary *string `json:"beneficiary"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// BulkReviewRequest approves or rejects a batch of staged rows
type BulkReviewRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1"`
	Action string   `json:"action" binding:"required,oneof=approve reject"`
}

// AutoApproveRequest commits all high-confidence rows of a session
type AutoApproveRequest struct {
	SessionID     string   `json:"session_id" binding:"required"`
	MinConfidence *float64 `json:"min_confidence"`
}

// ResolveRequest applies a decision to a duplicate group
type ResolveRequest struct {
	Action string `json:"action" binding:"required,oneof=merge keep_first keep_original delete_all ignore"`
	Notes  string `json:"resolution_notes"`
}

// TrainingFromFileRequest learns patterns from an already-uploaded file
type TrainingFromFileRequest struct {
	Name            string            `json:"name"`
	CategoryMapping map[string]string `json:"category_mapping"`
}

// TransactionRequest creates or fully replaces a committed transaction
type TransactionRequest struct {
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency"`
	Beneficiary string `json:"beneficiary" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// UpdateCategoryRequest recategorizes a committed transaction
type UpdateCategoryRequest struct {
	Category string `json:"category"`
}

// BulkCategoryRequest sets one category on a batch of transactions
type BulkCategoryRequest struct {
	IDs      []string `json:"ids" binding:"required,min=1"`
	Category string   `json:"category"`
}

// DeleteTransactionsRequest deletes a batch of committed transactions
type DeleteTransactionsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

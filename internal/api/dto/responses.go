package dto

import (
	"github.com/vargak/pennyflow-backend/internal/application/service"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
	"github.com/vargak/pennyflow-backend/internal/ingest"
)

// AuthResponse is returned after register and login
type AuthResponse struct {
	Token string        `json:"token,omitempty"`
	User  *storage.User `json:"user"`
}

// UploadResponse is returned after a statement upload. Duplicate is true
// when an identical file already existed; File then points at the
// original upload.
type UploadResponse struct {
	File      *storage.RawFile `json:"file"`
	Duplicate bool             `json:"duplicate"`
	Schema    *ingest.Schema   `json:"schema,omitempty"`
}

// ListResponse is the shared pagination envelope
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// CountResponse reports the affected row count of a bulk action
type CountResponse struct {
	Count int `json:"count"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status string `json:"status"`
}

// BulkReviewResponse summarizes a bulk approve/reject call with the
// per-item outcomes
type BulkReviewResponse struct {
	ApprovedCount int                     `json:"approved_count"`
	RejectedCount int                     `json:"rejected_count"`
	ErrorCount    int                     `json:"error_count"`
	Outcomes      []service.ReviewOutcome `json:"outcomes"`
}

// ScanResponse summarizes a duplicate scan run
type ScanResponse struct {
	GroupsFound     int                       `json:"groups_found"`
	TotalDuplicates int                       `json:"total_duplicates"`
	Groups          []*storage.DuplicateGroup `json:"groups"`
}

// TrainingDatasetResponse is one dataset with its learned patterns
type TrainingDatasetResponse struct {
	Dataset  *storage.TrainingDataset   `json:"dataset"`
	Patterns []*storage.TrainingPattern `json:"patterns"`
}

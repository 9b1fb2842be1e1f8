package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vargak/pennyflow-backend/internal/domain/patterns"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
	"github.com/vargak/pennyflow-backend/internal/ingest"
)

// TrainingResult summarizes a pattern extraction run
type TrainingResult struct {
	Dataset           *storage.TrainingDataset `json:"dataset"`
	PatternsExtracted int                      `json:"patterns_extracted"`
	MerchantPatterns  int                      `json:"merchant_patterns"`
	CategoryMappings  int                      `json:"category_mappings"`
	RowsSkipped       int                      `json:"rows_skipped"`
}

// TrainingService learns categorization patterns from labeled exports
type TrainingService struct {
	storage storage.Repository
	logger  *slog.Logger
}

// NewTrainingService creates a training service
func NewTrainingService(store storage.Repository, logger *slog.Logger) *TrainingService {
	return &TrainingService{
		storage: store,
		logger:  logger,
	}
}

// CreateFromFile parses a labeled statement export and learns merchant
// patterns from it. categoryMapping translates raw labels (keys must be
// normalized lowercase) before learning; nil falls back to the built-in
// Hungarian defaults.
func (s *TrainingService) CreateFromFile(userID, name, filename string, content []byte, categoryMapping map[string]string) (*TrainingResult, error) {
	parsed, err := ingest.Parse(content, filename)
	if err != nil {
		return nil, fmt.Errorf("could not parse training file: %w", err)
	}

	format := ingest.DetectFormat(parsed.Columns)

	var examples []patterns.Example
	skipped := 0
	for _, row := range parsed.Rows {
		mapped, err := ingest.MapRow(row, format)
		if err != nil || mapped.Category == "" {
			skipped++
			continue
		}
		examples = append(examples, patterns.Example{
			Beneficiary: mapped.Beneficiary,
			Category:    mapped.Category,
		})
	}

	learned := patterns.Learn(examples, categoryMapping)

	if name == "" {
		name = fmt.Sprintf("Training data from %s", filename)
	}

	dataset := &storage.TrainingDataset{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           name,
		SourceFilename: filename,
		CreatedAt:      time.Now().UTC(),
	}

	stored := make([]*storage.TrainingPattern, 0, len(learned))
	for _, p := range learned {
		stored = append(stored, &storage.TrainingPattern{
			MerchantKey: p.MerchantKey,
			Category:    p.Category,
			Confidence:  p.Confidence,
			Occurrences: p.Occurrences,
		})
	}

	if err := s.storage.SaveTrainingDataset(dataset, stored); err != nil {
		return nil, err
	}

	s.logger.Info("training dataset created",
		"dataset_id", dataset.ID,
		"user_id", userID,
		"patterns", len(learned),
		"rows_skipped", skipped,
	)

	return &TrainingResult{
		Dataset:           dataset,
		PatternsExtracted: len(learned),
		MerchantPatterns:  len(learned),
		CategoryMappings:  patterns.CountCategories(learned),
		RowsSkipped:       skipped,
	}, nil
}

// CreateFromRawFile learns patterns from a previously uploaded file
func (s *TrainingService) CreateFromRawFile(userID, fileID, name string, categoryMapping map[string]string) (*TrainingResult, error) {
	file, err := s.storage.GetRawFile(userID, fileID)
	if err != nil {
		return nil, err
	}

	return s.CreateFromFile(userID, name, file.Filename, file.Content, categoryMapping)
}

// List returns the user's training datasets
func (s *TrainingService) List(userID string) ([]*storage.TrainingDataset, error) {
	return s.storage.ListTrainingDatasets(userID)
}

// Get returns one dataset with its patterns
func (s *TrainingService) Get(userID, datasetID string) (*storage.TrainingDataset, []*storage.TrainingPattern, error) {
	dataset, err := s.storage.GetTrainingDataset(userID, datasetID)
	if err != nil {
		return nil, nil, err
	}

	stored, err := s.storage.GetTrainingPatterns(datasetID)
	if err != nil {
		return nil, nil, err
	}

	return dataset, stored, nil
}

// Delete removes a dataset and its patterns
func (s *TrainingService) Delete(userID, datasetID string) error {
	return s.storage.DeleteTrainingDataset(userID, datasetID)
}

// toDomainPatterns converts stored patterns into the domain representation
func toDomainPatterns(stored []*storage.TrainingPattern) []patterns.Pattern {
	converted := make([]patterns.Pattern, 0, len(stored))
	for _, p := range stored {
		converted = append(converted, patterns.Pattern{
			MerchantKey: p.MerchantKey,
			Category:    p.Category,
			Confidence:  p.Confidence,
			Occurrences: p.Occurrences,
		})
	}
	return converted
}

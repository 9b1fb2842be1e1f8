package storage

import (
	"database/sql"
	"fmt"
)

// SaveTrainingDataset stores a dataset and its patterns atomically
func (s *Storage) SaveTrainingDataset(dataset *TrainingDataset, patterns []*TrainingPattern) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO training_datasets
		(id, user_id, name, source_filename, pattern_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, dataset.ID, dataset.UserID, dataset.Name, dataset.SourceFilename, len(patterns), dataset.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO training_patterns
		(dataset_id, merchant_key, category, confidence, occurrences)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range patterns {
		_, err := stmt.Exec(dataset.ID, p.MerchantKey, p.Category, p.Confidence, p.Occurrences)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert pattern %q: %w", p.MerchantKey, err)
		}
	}

	dataset.PatternCount = len(patterns)
	return tx.Commit()
}

// GetTrainingDataset retrieves a dataset by ID, scoped to the owning user
func (s *Storage) GetTrainingDataset(userID, id string) (*TrainingDataset, error) {
	query := `
		SELECT id, user_id, name, source_filename, pattern_count, created_at
		FROM training_datasets WHERE id = ? AND user_id = ?
	`

	dataset := &TrainingDataset{}
	var sourceFilename sql.NullString
	err := s.db.QueryRow(query, id, userID).Scan(
		&dataset.ID,
		&dataset.UserID,
		&dataset.Name,
		&sourceFilename,
		&dataset.PatternCount,
		&dataset.CreatedAt,
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	dataset.SourceFilename = sourceFilename.String

	return dataset, nil
}

// ListTrainingDatasets returns the user's datasets, newest first
func (s *Storage) ListTrainingDatasets(userID string) ([]*TrainingDataset, error) {
	query := `
		SELECT id, user_id, name, source_filename, pattern_count, created_at
		FROM training_datasets
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var datasets []*TrainingDataset
	for rows.Next() {
		dataset := &TrainingDataset{}
		var sourceFilename sql.NullString
		err := rows.Scan(
			&dataset.ID,
			&dataset.UserID,
			&dataset.Name,
			&sourceFilename,
			&dataset.PatternCount,
			&dataset.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		dataset.SourceFilename = sourceFilename.String
		datasets = append(datasets, dataset)
	}

	return datasets, rows.Err()
}

// GetTrainingPatterns returns all patterns for a dataset
func (s *Storage) GetTrainingPatterns(datasetID string) ([]*TrainingPattern, error) {
	query := `
		SELECT id, dataset_id, merchant_key, category, confidence, occurrences
		FROM training_patterns
		WHERE dataset_id = ?
		ORDER BY merchant_key ASC
	`

	rows, err := s.db.Query(query, datasetID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var patterns []*TrainingPattern
	for rows.Next() {
		p := &TrainingPattern{}
		err := rows.Scan(
			&p.ID,
			&p.DatasetID,
			&p.MerchantKey,
			&p.Category,
			&p.Confidence,
			&p.Occurrences,
		)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

// DeleteTrainingDataset removes a dataset and its patterns
func (s *Storage) DeleteTrainingDataset(userID, id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	// ON DELETE CASCADE covers the patterns, but delete explicitly so the
	// operation works even when foreign keys are off.
	_, err = tx.Exec(`DELETE FROM training_patterns WHERE dataset_id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	result, err := tx.Exec(`DELETE FROM training_datasets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrNotFound
	}

	return tx.Commit()
}

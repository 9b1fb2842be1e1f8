package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// CreateSession inserts a new processing session together with its
// processing configuration. Mapping, rules and dataset list are stored as
// JSON so the columns stay readable with plain sqlite tooling.
func (s *Storage) CreateSession(session *ProcessingSession) error {
	query := `
		INSERT INTO processing_sessions
		(id, user_id, raw_file_id, training_dataset_ids, column_mapping,
		 processing_rules, status, rows_processed, total_rows_found,
		 rows_with_suggestions, high_confidence_suggestions,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	datasetIDs, err := encodeConfig(session.TrainingDatasetIDs)
	if err != nil {
		return fmt.Errorf("failed to encode training dataset ids: %w", err)
	}
	mapping, err := encodeConfig(session.ColumnMapping)
	if err != nil {
		return fmt.Errorf("failed to encode column mapping: %w", err)
	}
	rules, err := encodeConfig(session.ProcessingRules)
	if err != nil {
		return fmt.Errorf("failed to encode processing rules: %w", err)
	}

	_, err = s.db.Exec(query,
		session.ID,
		session.UserID,
		session.RawFileID,
		datasetIDs,
		mapping,
		rules,
		session.Status,
		session.RowsProcessed,
		session.TotalRowsFound,
		session.RowsWithSuggestions,
		session.HighConfidence,
		session.CreatedAt,
		session.UpdatedAt,
	)

	return err
}

// GetSession retrieves a session by ID, scoped to the owning user
func (s *Storage) GetSession(userID, id string) (*ProcessingSession, error) {
	query := sessionSelect + ` WHERE id = ? AND user_id = ?`

	rows, err := s.db.Query(query, id, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	return scanSession(rows)
}

// ListSessions returns the user's sessions, newest first
func (s *Storage) ListSessions(userID string, limit int) ([]*ProcessingSession, error) {
	if limit <= 0 {
		limit = 50
	}

	query := sessionSelect + `
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []*ProcessingSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// UpdateSessionProgress persists incremental progress counters
func (s *Storage) UpdateSessionProgress(id string, rowsProcessed, withSuggestions, highConfidence int) error {
	query := `
		UPDATE processing_sessions
		SET rows_processed = ?,
		    rows_with_suggestions = ?,
		    high_confidence_suggestions = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := s.db.Exec(query, rowsProcessed, withSuggestions, highConfidence, id)
	return err
}

// UpdateSessionStatus transitions a session and records totals or error.
// Terminal statuses also stamp completed_at.
func (s *Storage) UpdateSessionStatus(id, status string, totalRows int, errorMessage string) error {
	query := `
		UPDATE processing_sessions
		SET status = ?,
		    total_rows_found = CASE WHEN ? > 0 THEN ? ELSE total_rows_found END,
		    error_message = CASE WHEN ? != '' THEN ? ELSE error_message END,
		    updated_at = CURRENT_TIMESTAMP,
		    completed_at = CASE WHEN ? IN ('processed', 'failed') THEN CURRENT_TIMESTAMP ELSE completed_at END
		WHERE id = ?
	`

	_, err := s.db.Exec(query, status, totalRows, totalRows, errorMessage, errorMessage, status, id)
	return err
}

const sessionSelect = `
	SELECT id, user_id, raw_file_id, training_dataset_ids, column_mapping,
	       processing_rules, status, rows_processed, total_rows_found,
	       rows_with_suggestions, high_confidence_suggestions, error_message,
	       created_at, updated_at, completed_at
	FROM processing_sessions
`

func scanSession(rows *sql.Rows) (*ProcessingSession, error) {
	session := &ProcessingSession{}
	var datasetIDs, mapping, rules, errorMessage sql.NullString
	var completedAt sql.NullTime

	err := rows.Scan(
		&session.ID,
		&session.UserID,
		&session.RawFileID,
		&datasetIDs,
		&mapping,
		&rules,
		&session.Status,
		&session.RowsProcessed,
		&session.TotalRowsFound,
		&session.RowsWithSuggestions,
		&session.HighConfidence,
		&errorMessage,
		&session.CreatedAt,
		&session.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeConfig(datasetIDs, &session.TrainingDatasetIDs); err != nil {
		return nil, err
	}
	if err := decodeConfig(mapping, &session.ColumnMapping); err != nil {
		return nil, err
	}
	if err := decodeConfig(rules, &session.ProcessingRules); err != nil {
		return nil, err
	}
	session.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}

	return session, nil
}

// encodeConfig serializes a config value, mapping empty maps/slices to NULL
func encodeConfig(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	encoded := string(data)
	if encoded == "null" || encoded == "{}" || encoded == "[]" {
		return nil, nil
	}
	return encoded, nil
}

func decodeConfig(col sql.NullString, dst interface{}) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

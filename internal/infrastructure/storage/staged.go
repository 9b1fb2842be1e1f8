package storage

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// SaveStagedTransactions inserts a batch of staged rows in one transaction
func (s *Storage) SaveStagedTransactions(rows []*StagedTransaction) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO staged_transactions
		(id, session_id, user_id, row_index, date, amount, currency, beneficiary,
		 description, suggested_category, confidence, confidence_level, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		_, err := stmt.Exec(
			row.ID,
			row.SessionID,
			row.UserID,
			row.RowIndex,
			row.Date,
			row.Amount.String(),
			row.Currency,
			row.Beneficiary,
			row.Description,
			row.SuggestedCategory,
			row.Confidence,
			row.ConfidenceLevel,
			row.Status,
			row.CreatedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert staged row %d: %w", row.RowIndex, err)
		}
	}

	return tx.Commit()
}

// GetStagedTransaction retrieves one staged row, scoped to the owning user
func (s *Storage) GetStagedTransaction(userID, id string) (*StagedTransaction, error) {
	query := stagedSelect + ` WHERE id = ? AND user_id = ?`

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

	return scanStaged(rows)
}

// ListStagedTransactions returns staged rows matching the filters along
// with the total count before pagination.
func (s *Storage) ListStagedTransactions(userID string, filters StagedFilters) ([]*StagedTransaction, int, error) {
	where := ` WHERE user_id = ?`
	args := []interface{}{userID}

	if filters.SessionID != "" {
		where += ` AND session_id = ?`
		args = append(args, filters.SessionID)
	}
	if filters.Status != "" {
		where += ` AND status = ?`
		args = append(args, filters.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM staged_transactions` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}

	query := stagedSelect + where + ` ORDER BY row_index ASC LIMIT ? OFFSET ?`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var staged []*StagedTransaction
	for rows.Next() {
		row, err := scanStaged(rows)
		if err != nil {
			return nil, 0, err
		}
		staged = append(staged, row)
	}

	return staged, total, rows.Err()
}

// UpdateStagedTransaction persists edits to a pending row
func (s *Storage) UpdateStagedTransaction(row *StagedTransaction) error {
	query := `
		UPDATE staged_transactions
		SET date = ?, amount = ?, currency = ?, beneficiary = ?, description = ?,
		    suggested_category = ?, confidence = ?, confidence_level = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.Exec(query,
		row.Date,
		row.Amount.String(),
		row.Currency,
		row.Beneficiary,
		row.Description,
		row.SuggestedCategory,
		row.Confidence,
		row.ConfidenceLevel,
		row.ID,
		row.UserID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ApproveStaged commits a staged row: the status flip and the confirmed
// transaction insert happen in one database transaction, so a failure on
// either side leaves neither. Only pending rows can be approved.
func (s *Storage) ApproveStaged(tx *Transaction, stagedID string) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return err
	}

	result, err := dbTx.Exec(`
		UPDATE staged_transactions SET status = ?
		WHERE id = ? AND user_id = ? AND status = ?
	`, StagedStatusApproved, stagedID, tx.UserID, StagedStatusPending)
	if err != nil {
		_ = dbTx.Rollback()
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = dbTx.Rollback()
		return err
	}
	if affected == 0 {
		_ = dbTx.Rollback()
		return ErrNotFound
	}

	_, err = dbTx.Exec(`
		INSERT INTO transactions
		(id, user_id, date, amount, currency, beneficiary, description,
		 category, source_session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID,
		tx.UserID,
		tx.Date,
		tx.Amount.String(),
		tx.Currency,
		tx.Beneficiary,
		tx.Description,
		tx.Category,
		tx.SourceSessionID,
		tx.CreatedAt,
	)
	if err != nil {
		_ = dbTx.Rollback()
		return err
	}

	return dbTx.Commit()
}

// UpdateStagedStatus transitions a staged row's review status
func (s *Storage) UpdateStagedStatus(userID, id, status string) error {
	query := `UPDATE staged_transactions SET status = ? WHERE id = ? AND user_id = ?`

	result, err := s.db.Exec(query, status, id, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteStagedBySession removes all staged rows for a session
func (s *Storage) DeleteStagedBySession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM staged_transactions WHERE session_id = ?`, sessionID)
	return err
}

const stagedSelect = `
	SELECT id, session_id, user_id, row_index, date, amount, currency,
	       beneficiary, description, suggested_category, confidence,
	       confidence_level, status, created_at
	FROM staged_transactions
`

func scanStaged(rows *sql.Rows) (*StagedTransaction, error) {
	row := &StagedTransaction{}
	var amount string
	var currency, beneficiary, description, category, level sql.NullString

	err := rows.Scan(
		&row.ID,
		&row.SessionID,
		&row.UserID,
		&row.RowIndex,
		&row.Date,
		&amount,
		&currency,
		&beneficiary,
		&description,
		&category,
		&row.Confidence,
		&level,
		&row.Status,
		&row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	row.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}

	row.Currency = currency.String
	row.Beneficiary = beneficiary.String
	row.Description = description.String
	row.SuggestedCategory = category.String
	row.ConfidenceLevel = level.String

	return row, nil
}

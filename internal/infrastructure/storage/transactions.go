package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SaveTransaction inserts a committed transaction
func (s *Storage) SaveTransaction(tx *Transaction) error {
	query := `
		INSERT INTO transactions
		(id, user_id, date, amount, currency, beneficiary, description,
		 category, source_session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
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

	return err
}

// GetTransaction retrieves a transaction by ID, scoped to the owning user
func (s *Storage) GetTransaction(userID, id string) (*Transaction, error) {
	query := transactionSelect + ` WHERE id = ? AND user_id = ?`

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

	return scanTransaction(rows)
}

// ListTransactions returns transactions matching the filters with total count
func (s *Storage) ListTransactions(userID string, filters TransactionFilters) ([]*Transaction, int, error) {
	where := ` WHERE user_id = ?`
	args := []interface{}{userID}

	if filters.Category != "" {
		where += ` AND category = ?`
		args = append(args, filters.Category)
	}
	if filters.From != nil {
		where += ` AND date >= ?`
		args = append(args, *filters.From)
	}
	if filters.To != nil {
		where += ` AND date <= ?`
		args = append(args, *filters.To)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}

	query := transactionSelect + where + ` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var txs []*Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, tx)
	}

	return txs, total, rows.Err()
}

// UpdateTransaction persists edits to a committed transaction
func (s *Storage) UpdateTransaction(tx *Transaction) error {
	query := `
		UPDATE transactions
		SET date = ?, amount = ?, currency = ?, beneficiary = ?,
		    description = ?, category = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.Exec(query,
		tx.Date,
		tx.Amount.String(),
		tx.Currency,
		tx.Beneficiary,
		tx.Description,
		tx.Category,
		tx.ID,
		tx.UserID,
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

// UpdateTransactionCategory sets the category on a committed transaction
func (s *Storage) UpdateTransactionCategory(userID, id, category string) error {
	query := `UPDATE transactions SET category = ? WHERE id = ? AND user_id = ?`

	result, err := s.db.Exec(query, category, id, userID)
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

// BulkUpdateCategory sets one category on a batch of transactions and
// returns the number actually updated
func (s *Storage) BulkUpdateCategory(userID string, ids []string, category string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(
		`UPDATE transactions SET category = ? WHERE user_id = ? AND id IN (%s)`,
		placeholders,
	)

	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, category, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}

// DeleteTransactions removes the given transactions for a user
func (s *Storage) DeleteTransactions(userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(
		`DELETE FROM transactions WHERE user_id = ? AND id IN (%s)`,
		placeholders,
	)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.Exec(query, args...)
	return err
}

// GetTransactionStats returns aggregate statistics for the user
func (s *Storage) GetTransactionStats(userID string) (*TransactionStats, error) {
	stats := &TransactionStats{
		ByCategory: make(map[string]int),
	}

	var earliest, latest sql.NullString
	query := `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN category IS NULL OR category = '' THEN 1 END),
			COALESCE(MIN(date(date)), ''),
			COALESCE(MAX(date(date)), '')
		FROM transactions
		WHERE user_id = ?
	`

	err := s.db.QueryRow(query, userID).Scan(
		&stats.TotalCount,
		&stats.Uncategorized,
		&earliest,
		&latest,
	)
	if err != nil {
		return nil, err
	}
	stats.EarliestDate = earliest.String
	stats.LatestDate = latest.String

	// Sum amounts in Go; SQLite would coerce the TEXT column to float
	total := decimal.Zero
	rows, err := s.db.Query(`SELECT amount, COALESCE(category, '') FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var amount, category string
		if err := rows.Scan(&amount, &category); err != nil {
			return nil, err
		}
		if d, err := decimal.NewFromString(amount); err == nil {
			total = total.Add(d)
		}
		if category != "" {
			stats.ByCategory[category]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.TotalAmount = total.String()
	return stats, nil
}

const transactionSelect = `
	SELECT id, user_id, date, amount, currency, beneficiary, description,
	       category, source_session_id, created_at
	FROM transactions
`

func scanTransaction(rows *sql.Rows) (*Transaction, error) {
	tx := &Transaction{}
	var amount string
	var currency, beneficiary, description, category, sessionID sql.NullString

	err := rows.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Date,
		&amount,
		&currency,
		&beneficiary,
		&description,
		&category,
		&sessionID,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}

	tx.Currency = currency.String
	tx.Beneficiary = beneficiary.String
	tx.Description = description.String
	tx.Category = category.String
	tx.SourceSessionID = sessionID.String

	return tx, nil
}

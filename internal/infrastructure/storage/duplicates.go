package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// SaveDuplicateGroups replaces the user's pending groups with a fresh scan
// result. Resolved and ignored groups are left untouched so scan reruns do
// not resurface decisions already made.
func (s *Storage) SaveDuplicateGroups(userID string, groups []*DuplicateGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	// Clear previous pending groups
	_, err = tx.Exec(`
		DELETE FROM duplicate_entries WHERE group_id IN
		(SELECT id FROM duplicate_groups WHERE user_id = ? AND status = 'pending')
	`, userID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	_, err = tx.Exec(`DELETE FROM duplicate_groups WHERE user_id = ? AND status = 'pending'`, userID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	groupStmt, err := tx.Prepare(`
		INSERT INTO duplicate_groups (id, user_id, status, score, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = groupStmt.Close() }()

	entryStmt, err := tx.Prepare(`
		INSERT INTO duplicate_entries (group_id, transaction_id) VALUES (?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = entryStmt.Close() }()

	for _, group := range groups {
		if _, err := groupStmt.Exec(group.ID, userID, group.Status, group.Score, group.CreatedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert group %s: %w", group.ID, err)
		}
		for _, member := range group.Transactions {
			if _, err := entryStmt.Exec(group.ID, member.ID); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to insert group entry: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetDuplicateGroup retrieves a group with its member transactions
func (s *Storage) GetDuplicateGroup(userID, id string) (*DuplicateGroup, error) {
	query := `
		SELECT id, user_id, status, score, resolution, resolution_notes, created_at, resolved_at
		FROM duplicate_groups WHERE id = ? AND user_id = ?
	`

	group := &DuplicateGroup{}
	var resolution, notes sql.NullString
	var resolvedAt sql.NullTime
	err := s.db.QueryRow(query, id, userID).Scan(
		&group.ID,
		&group.UserID,
		&group.Status,
		&group.Score,
		&resolution,
		&notes,
		&group.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	group.Resolution = resolution.String
	group.Notes = notes.String
	if resolvedAt.Valid {
		group.ResolvedAt = &resolvedAt.Time
	}

	if err := s.loadGroupMembers(group); err != nil {
		return nil, err
	}

	return group, nil
}

// ListDuplicateGroups returns groups filtered by status (empty = all)
func (s *Storage) ListDuplicateGroups(userID, status string) ([]*DuplicateGroup, error) {
	query := `
		SELECT id, user_id, status, score, resolution, resolution_notes, created_at, resolved_at
		FROM duplicate_groups WHERE user_id = ?
	`
	args := []interface{}{userID}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY score DESC, created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var groups []*DuplicateGroup
	for rows.Next() {
		group := &DuplicateGroup{}
		var resolution, notes sql.NullString
		var resolvedAt sql.NullTime
		err := rows.Scan(
			&group.ID,
			&group.UserID,
			&group.Status,
			&group.Score,
			&resolution,
			&notes,
			&group.CreatedAt,
			&resolvedAt,
		)
		if err != nil {
			return nil, err
		}
		group.Resolution = resolution.String
		group.Notes = notes.String
		if resolvedAt.Valid {
			group.ResolvedAt = &resolvedAt.Time
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, group := range groups {
		if err := s.loadGroupMembers(group); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// ResolveDuplicateGroup marks a group resolved/ignored and deletes the given
// transactions in the same database transaction. A partial resolution never
// leaves the group half-applied.
func (s *Storage) ResolveDuplicateGroup(userID, groupID, status, resolution, notes string, deleteTxIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	result, err := tx.Exec(`
		UPDATE duplicate_groups
		SET status = ?, resolution = ?, resolution_notes = ?, resolved_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND status = 'pending'
	`, status, resolution, notes, groupID, userID)
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

	if len(deleteTxIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(deleteTxIDs)), ",")

		args := make([]interface{}, 0, len(deleteTxIDs)+1)
		args = append(args, userID)
		for _, id := range deleteTxIDs {
			args = append(args, id)
		}

		_, err = tx.Exec(fmt.Sprintf(
			`DELETE FROM transactions WHERE user_id = ? AND id IN (%s)`,
			placeholders,
		), args...)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetDuplicateStats returns counts of groups by status
func (s *Storage) GetDuplicateStats(userID string) (map[string]int, error) {
	stats := map[string]int{
		GroupStatusPending:  0,
		GroupStatusResolved: 0,
		GroupStatusIgnored:  0,
	}

	rows, err := s.db.Query(`
		SELECT status, COUNT(*) FROM duplicate_groups
		WHERE user_id = ? GROUP BY status
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}

	return stats, rows.Err()
}

// loadGroupMembers populates a group's transactions ordered by date
func (s *Storage) loadGroupMembers(group *DuplicateGroup) error {
	query := transactionSelect + `
		WHERE id IN (SELECT transaction_id FROM duplicate_entries WHERE group_id = ?)
		ORDER BY date ASC, created_at ASC
	`

	rows, err := s.db.Query(query, group.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return err
		}
		group.Transactions = append(group.Transactions, tx)
	}

	return rows.Err()
}

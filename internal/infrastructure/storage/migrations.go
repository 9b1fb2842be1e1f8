package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_duplicate_tables",
		Up:      migration002AddDuplicateTables,
	},
	{
		Version: 3,
		Name:    "add_training_tables",
		Up:      migration003AddTrainingTables,
	},
	{
		Version: 4,
		Name:    "add_session_suggestion_counters",
		Up:      migration004AddSessionSuggestionCounters,
	},
	{
		Version: 5,
		Name:    "add_resolution_notes",
		Up:      migration005AddResolutionNotes,
	},
	{
		Version: 6,
		Name:    "add_session_config",
		Up:      migration006AddSessionConfig,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	// Ensure migrations table exists
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Run pending migrations
	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ================================================================
// MIGRATION FUNCTIONS
// ================================================================

// migration001InitialSchema creates users, raw files, sessions and
// transaction tables. Amounts are stored as TEXT so decimal values
// survive the round trip without float drift.
func migration001InitialSchema(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS raw_files (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			mime_type TEXT,
			content BLOB,
			schema_json TEXT,
			uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			UNIQUE (user_id, content_hash)
		)`,

		`CREATE TABLE IF NOT EXISTS processing_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			raw_file_id TEXT NOT NULL,
			training_dataset_id TEXT,
			status TEXT NOT NULL DEFAULT 'queued',
			rows_processed INTEGER DEFAULT 0,
			total_rows_found INTEGER DEFAULT 0,
			error_message TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (raw_file_id) REFERENCES raw_files(id)
		)`,

		`CREATE TABLE IF NOT EXISTS staged_transactions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			date TIMESTAMP NOT NULL,
			amount TEXT NOT NULL,
			currency TEXT,
			beneficiary TEXT,
			description TEXT,
			suggested_category TEXT,
			confidence REAL DEFAULT 0,
			confidence_level TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES processing_sessions(id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TIMESTAMP NOT NULL,
			amount TEXT NOT NULL,
			currency TEXT,
			beneficiary TEXT,
			description TEXT,
			category TEXT,
			source_session_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		// Indexes for common queries
		`CREATE INDEX IF NOT EXISTS idx_raw_files_user
		 ON raw_files(user_id)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_user
		 ON processing_sessions(user_id, created_at DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_staged_session
		 ON staged_transactions(session_id)`,

		`CREATE INDEX IF NOT EXISTS idx_staged_user_status
		 ON staged_transactions(user_id, status)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_user_date
		 ON transactions(user_id, date)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_category
		 ON transactions(category)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002AddDuplicateTables creates duplicate group tracking tables
func migration002AddDuplicateTables(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS duplicate_groups (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			score REAL DEFAULT 0,
			resolution TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			resolved_at TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS duplicate_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id TEXT NOT NULL,
			transaction_id TEXT NOT NULL,
			FOREIGN KEY (group_id) REFERENCES duplicate_groups(id) ON DELETE CASCADE,
			FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_duplicate_groups_user_status
		 ON duplicate_groups(user_id, status)`,

		`CREATE INDEX IF NOT EXISTS idx_duplicate_entries_group
		 ON duplicate_entries(group_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// migration003AddTrainingTables creates training dataset and pattern tables
func migration003AddTrainingTables(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS training_datasets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			source_filename TEXT,
			pattern_count INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS training_patterns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id TEXT NOT NULL,
			merchant_key TEXT NOT NULL,
			category TEXT NOT NULL,
			confidence REAL NOT NULL,
			occurrences INTEGER NOT NULL,
			FOREIGN KEY (dataset_id) REFERENCES training_datasets(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_training_patterns_dataset
		 ON training_patterns(dataset_id)`,

		`CREATE INDEX IF NOT EXISTS idx_training_patterns_merchant
		 ON training_patterns(dataset_id, merchant_key)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// migration004AddSessionSuggestionCounters adds suggestion counters so the
// frontend can show categorization quality without scanning staged rows.
func migration004AddSessionSuggestionCounters(db *sql.Tx) error {
	queries := []string{
		`ALTER TABLE processing_sessions ADD COLUMN rows_with_suggestions INTEGER DEFAULT 0`,
		`ALTER TABLE processing_sessions ADD COLUMN high_confidence_suggestions INTEGER DEFAULT 0`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to add counter column: %w", err)
		}
	}

	return nil
}

// migration005AddResolutionNotes lets reviewers record why a duplicate
// group was resolved the way it was.
func migration005AddResolutionNotes(db *sql.Tx) error {
	_, err := db.Exec(`ALTER TABLE duplicate_groups ADD COLUMN resolution_notes TEXT`)
	return err
}

// migration006AddSessionConfig stores the per-session processing
// configuration: the explicit column mapping, free-form processing rules
// and the list of training datasets feeding suggestions. All three are
// JSON-encoded TEXT; the old single training_dataset_id column stays for
// rows created before this migration.
func migration006AddSessionConfig(db *sql.Tx) error {
	queries := []string{
		`ALTER TABLE processing_sessions ADD COLUMN column_mapping TEXT`,
		`ALTER TABLE processing_sessions ADD COLUMN processing_rules TEXT`,
		`ALTER TABLE processing_sessions ADD COLUMN training_dataset_ids TEXT`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to add session config column: %w", err)
		}
	}

	return nil
}

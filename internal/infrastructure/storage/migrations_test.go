package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_FreshDatabase(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	applied, err := store.getAppliedMigrations()
	require.NoError(t, err)

	for _, m := range allMigrations {
		assert.True(t, applied[m.Version], "migration %d (%s) should be applied", m.Version, m.Name)
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	store.Close()

	// Reopening must not re-run already-applied migrations
	store2, err := NewStorage(tmpDB)
	require.NoError(t, err)
	defer store2.Close()

	var count int
	err = store2.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(allMigrations), count)
}

func TestMigrations_TablesExist(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	tables := []string{
		"users",
		"raw_files",
		"processing_sessions",
		"staged_transactions",
		"transactions",
		"duplicate_groups",
		"duplicate_entries",
		"training_datasets",
		"training_patterns",
	}

	for _, table := range tables {
		var name string
		err := store.db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrations_VersionsAreOrderedAndUnique(t *testing.T) {
	seen := make(map[int]bool)
	last := 0
	for _, m := range allMigrations {
		assert.False(t, seen[m.Version], "duplicate migration version %d", m.Version)
		assert.Greater(t, m.Version, last, "migrations must be in ascending order")
		seen[m.Version] = true
		last = m.Version
	}
}

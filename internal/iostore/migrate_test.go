package iostore

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aeswibon/dora/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableExists checks for a table in a SQLite database file.
func tableExists(t *testing.T, dbPath, table string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestMigrateStoresUpAndDown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	// Up to latest creates all four tables.
	require.NoError(t, MigrateStores(schema.SQLiteBackend, dbPath, -1))
	for _, table := range []string{releasesTable, pullRequestsTable, issuesTable, scoresTable} {
		assert.True(t, tableExists(t, dbPath, table), "table %s should exist after up", table)
	}

	// Down removes them again.
	require.NoError(t, MigrateStores(schema.SQLiteBackend, dbPath, 0))
	for _, table := range []string{releasesTable, pullRequestsTable, issuesTable, scoresTable} {
		assert.False(t, tableExists(t, dbPath, table), "table %s should be gone after down", table)
	}
}

func TestMigrateStoresToSpecificVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	// Version 1 creates the activity tables but not the scores table.
	require.NoError(t, MigrateStores(schema.SQLiteBackend, dbPath, 1))
	assert.True(t, tableExists(t, dbPath, releasesTable))
	assert.False(t, tableExists(t, dbPath, scoresTable))

	// Version 2 adds the scores table.
	require.NoError(t, MigrateStores(schema.SQLiteBackend, dbPath, 2))
	assert.True(t, tableExists(t, dbPath, scoresTable))
}

func TestMigrateStoresIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	require.NoError(t, MigrateStores(schema.SQLiteBackend, dbPath, -1))
	// A second up is a no-op, not an error.
	require.NoError(t, MigrateStores(schema.SQLiteBackend, dbPath, -1))
}

func TestMigrateStoresNoneBackend(t *testing.T) {
	err := MigrateStores(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "not supported")
}

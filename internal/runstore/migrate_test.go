package runstore

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRuns_NoneBackend(t *testing.T) {
	err := MigrateRuns(&bytes.Buffer{}, schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "migrations are not supported for NoneBackend")
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	var out bytes.Buffer

	require.NoError(t, MigrateRuns(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "Successfully migrated")
	assert.FileExists(t, dbPath)

	out.Reset()
	require.NoError(t, MigrateRuns(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "already at the latest version")

	require.NoError(t, MigrateRuns(&out, schema.SQLiteBackend, dbPath, 1))
	require.NoError(t, MigrateRuns(&out, schema.SQLiteBackend, dbPath, 0))
	require.NoError(t, MigrateRuns(&out, schema.SQLiteBackend, dbPath, 2))

	// the migrated schema is usable by the store
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
}

func TestMigrationDir(t *testing.T) {
	assert.Equal(t, "migrations/mysql", migrationDir(schema.MySQLBackend))
	assert.Equal(t, "migrations/postgres", migrationDir(schema.PostgreSQLBackend))
	assert.Equal(t, "migrations/sqlite", migrationDir(schema.SQLiteBackend))

	for _, dir := range []string{"migrations/mysql", "migrations/postgres", "migrations/sqlite"} {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 4, dir)
	}
}

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestNewSQLiteStorageRequiresPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.Error(t, err)
}

func TestNewSQLiteStorageCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.NoError(t, s.Migrate(context.Background()))
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStorage(t)

	// A second run finds nothing to apply and still lands on the
	// expected version.
	assert.NoError(t, s.Migrate(context.Background()))
}

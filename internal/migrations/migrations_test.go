package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestUp_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "rk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	v, err := Up(ctx, db, goose.DialectSQLite3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	assert.True(t, tableExists(t, db, "role_records"))
	assert.True(t, tableExists(t, db, "metadata"))

	v, err = Up(ctx, db, goose.DialectSQLite3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v, "second run is a no-op")
}

func TestUp_UnknownDialect(t *testing.T) {
	_, err := Up(context.Background(), nil, goose.DialectMySQL)
	require.Error(t, err)
}

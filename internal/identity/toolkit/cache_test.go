package toolkit

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/rolekeeper/internal/identity"
	"github.com/dmitrijs2005/rolekeeper/internal/migrations"
)

func TestSQLiteSessionCache(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Up(ctx, db, goose.DialectSQLite3)
	require.NoError(t, err)

	c := NewSQLiteSessionCache(db)

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := &identity.Session{
		Identity: identity.Identity{
			UID:    "uid-1",
			Email:  "a@x.com",
			Claims: map[string]any{"sub": "uid-1"},
		},
		IDToken:   "id",
		ExpiresAt: time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.Save(ctx, want))
	want.IDToken = "id2"
	require.NoError(t, c.Save(ctx, want))

	got, err = c.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "uid-1", got.Identity.UID)
	assert.Equal(t, "id2", got.IDToken)
	assert.Equal(t, "uid-1", got.Identity.Claims["sub"])
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, c.Clear(ctx))
	got, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteSessionCache_DecodeError(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Up(ctx, db, goose.DialectSQLite3)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES (?, ?)`, sessionKey, []byte("{"))
	require.NoError(t, err)

	_, err = NewSQLiteSessionCache(db).Load(ctx)
	assert.ErrorContains(t, err, "decode cached session")
}

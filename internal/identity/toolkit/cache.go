package toolkit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rolekeeper/internal/dbx"
	"github.com/dmitrijs2005/rolekeeper/internal/identity"
)

// SessionCache persists the current session between runs.
type SessionCache interface {
	// Load returns nil, nil when nothing is cached.
	Load(ctx context.Context) (*identity.Session, error)
	Save(ctx context.Context, s *identity.Session) error
	Clear(ctx context.Context) error
}

const sessionKey = "session"

// SQLiteSessionCache stores the session as JSON in the metadata table.
type SQLiteSessionCache struct {
	db dbx.DBTX
}

func NewSQLiteSessionCache(db dbx.DBTX) *SQLiteSessionCache {
	return &SQLiteSessionCache{db: db}
}

func (c *SQLiteSessionCache) Load(ctx context.Context) (*identity.Session, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, sessionKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", sessionKey, err)
	}

	var s identity.Session
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, fmt.Errorf("decode cached session: %w", err)
	}
	return &s, nil
}

func (c *SQLiteSessionCache) Save(ctx context.Context, s *identity.Session) error {
	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, sessionKey, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", sessionKey, err)
	}
	return nil
}

func (c *SQLiteSessionCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, sessionKey)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", sessionKey, err)
	}
	return nil
}

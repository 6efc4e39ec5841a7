package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
	"github.com/dmitrijs2005/rolekeeper/internal/dbx"
)

type SQLiteRepository struct {
	db     dbx.DBTX
	closer func() error
}

// NewSQLiteRepository expects the schema from internal/migrations to be in place.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	r := &SQLiteRepository{db: db, closer: func() error { return nil }}
	if c, ok := db.(*sql.DB); ok {
		r.closer = c.Close
	}
	return r
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Record, error) {
	rec := &Record{}
	var role sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, role, created_at, updated_at FROM role_records WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Email, &role, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get role record[%s]: %w", id, err)
	}
	rec.Role = role.String
	return rec, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, rec *Record) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO role_records (id, email, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rec.ID, rec.Email, rec.Role, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to create role record[%s]: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to create role record[%s]: %w", rec.ID, err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	created := rec.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO role_records (id, email, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			role = excluded.role,
			updated_at = excluded.updated_at
	`, rec.ID, rec.Email, rec.Role, created.UTC(), now)
	if err != nil {
		return fmt.Errorf("failed to set role record[%s]: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.closer()
}

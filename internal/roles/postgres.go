package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
	"github.com/dmitrijs2005/rolekeeper/internal/dbx"
)

type PostgresRepository struct {
	db     dbx.DBTX
	closer func() error
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	r := &PostgresRepository{db: db, closer: func() error { return nil }}
	if c, ok := db.(*sql.DB); ok {
		r.closer = c.Close
	}
	return r
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Record, error) {
	query :=
		`SELECT id, email, role, created_at, updated_at FROM role_records
		 WHERE id = $1
		 `

	rec := &Record{}
	var role sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.Email, &role, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.Role = role.String
	return rec, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rec *Record) (bool, error) {
	query :=
		`INSERT INTO role_records (id, email, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, rec.ID, rec.Email, rec.Role, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Set(ctx context.Context, rec *Record) error {
	query :=
		`INSERT INTO role_records (id, email, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, role = EXCLUDED.role, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.Email, rec.Role); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	return r.closer()
}

package roles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
	"github.com/dmitrijs2005/rolekeeper/internal/dbx"
	"github.com/dmitrijs2005/rolekeeper/internal/filex"
	"github.com/dmitrijs2005/rolekeeper/internal/migrations"
)

// Backend kinds accepted by Open.
const (
	KindMemory    = "memory"
	KindSQLite    = "sqlite"
	KindPostgres  = "postgres"
	KindFirestore = "firestore"
	KindS3        = "s3"
)

type Options struct {
	Kind string

	// DSN is the sqlite file/URI or the postgres connection string.
	DSN string

	// ConnectAttempts bounds the startup ping retries for SQL backends.
	ConnectAttempts uint64
	ConnectBackoff  time.Duration

	FirestoreProject     string
	FirestoreCredentials string
	FirestoreCollection  string

	S3 S3Options
}

// Open returns the repository selected by opts.Kind, with its schema
// migrated where that applies.
func Open(ctx context.Context, opts Options) (Repository, error) {
	switch opts.Kind {
	case KindMemory, "":
		return NewMemoryRepository(), nil
	case KindSQLite:
		if _, err := filex.EnsureParentDir(opts.DSN); err != nil {
			return nil, err
		}
		db, err := openSQL(ctx, "sqlite", opts, goose.DialectSQLite3)
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepository(db), nil
	case KindPostgres:
		db, err := openSQL(ctx, "pgx", opts, goose.DialectPostgres)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepository(db), nil
	case KindFirestore:
		return OpenFirestore(ctx, opts.FirestoreProject, opts.FirestoreCredentials, opts.FirestoreCollection)
	case KindS3:
		return OpenS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("%w: role store %q", common.ErrorUnknownBackend, opts.Kind)
	}
}

func openSQL(ctx context.Context, driver string, opts Options, dialect goose.Dialect) (*sql.DB, error) {
	db, err := sql.Open(driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	attempts := opts.ConnectAttempts
	if attempts == 0 {
		attempts = 5
	}
	backoff := opts.ConnectBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	if err := dbx.WaitReady(ctx, db, backoff, attempts); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if _, err := migrations.Up(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

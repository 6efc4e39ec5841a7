// Package migrations embeds the SQL schema for the sqlite and postgres
// backends and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Up applies every pending migration for dialect (goose.DialectSQLite3 or
// goose.DialectPostgres) and returns the resulting schema version.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) (int64, error) {
	var dir string
	switch dialect {
	case goose.DialectSQLite3:
		dir = "sqlite"
	case goose.DialectPostgres:
		dir = "postgres"
	default:
		return 0, fmt.Errorf("no migrations for dialect %q", dialect)
	}

	fsys, err := fs.Sub(files, dir)
	if err != nil {
		return 0, err
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("migrate %s: %w", dir, err)
	}
	return provider.GetDBVersion(ctx)
}

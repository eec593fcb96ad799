// Package migrations holds the goose migrations of the deployment history
// schema.  Migrations are Go functions registered at init.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// goose also scans the migration directory for files; registered Go
// migrations found there are skipped, so the embedded sources only give it
// a directory to read.
//
//go:embed *.go
var sources embed.FS

// Up applies every pending migration to a MySQL database.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(sources)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

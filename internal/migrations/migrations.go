// Package migrations embeds the goose SQL migrations so binaries and tests
// can apply the schema without a migrations directory on disk.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedded embed.FS

// FS returns the embedded migration files.
func FS() fs.FS {
	return embedded
}

// Up applies all pending migrations and returns how many were applied.
func Up(ctx context.Context, db *sql.DB) (int, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, embedded)
	if err != nil {
		return 0, fmt.Errorf("goose new provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, embedded)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}
	if _, err := provider.Down(ctx); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// Status returns the applied state of every known migration.
func Status(ctx context.Context, db *sql.DB) ([]*goose.MigrationStatus, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, embedded)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider.Status(ctx)
}

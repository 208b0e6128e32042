// Package migrate applies the gateway's embedded Postgres schema: buyer verification
// records, the access_details audit table and the listings exposed to guarded queries.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const createVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Versions lists the embedded migration versions in apply order.
func Versions() ([]string, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	slices.Sort(files)
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = strings.TrimSuffix(path.Base(f), ".sql")
	}
	return out, nil
}

// Pending returns the versions Run would apply, in order.
func Pending(ctx context.Context, db *sql.DB) ([]string, error) {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}
	versions, err := Versions()
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, v := range versions {
		var applied bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, v).Scan(&applied)
		if err != nil {
			return nil, fmt.Errorf("check migration %s: %w", v, err)
		}
		if !applied {
			pending = append(pending, v)
		}
	}
	return pending, nil
}

// Run applies every pending migration, each in its own transaction. Safe to call repeatedly.
func Run(ctx context.Context, db *sql.DB) error {
	pending, err := Pending(ctx, db)
	if err != nil {
		return err
	}
	logger := slog.Default().With("component", "migrations")
	for _, v := range pending {
		logger.InfoContext(ctx, "applying migration", "version", v)
		if err := apply(ctx, db, v); err != nil {
			return err
		}
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, version string) error {
	body, err := migrationsFS.ReadFile("migrations/" + version + ".sql")
	if err != nil {
		return fmt.Errorf("read migration %s: %w", version, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Default().ErrorContext(ctx, "rollback migration", "version", version, "error", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("exec migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}

// Package storage opens the local SQLite database, applies migrations and
// hands out one repository per collection. An open or migration failure is
// fatal to every component that depends on the store, so it is reported as
// common.ErrStoreUnavailable and must be propagated, never swallowed.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/notiapp/notiapp/internal/client/migrations"
	"github.com/notiapp/notiapp/internal/client/repositories/notes"
	"github.com/notiapp/notiapp/internal/client/repositories/notifications"
	"github.com/notiapp/notiapp/internal/client/repositories/settings"
	"github.com/notiapp/notiapp/internal/client/repositories/subscriptions"
	"github.com/notiapp/notiapp/internal/common"

	_ "modernc.org/sqlite"
)

// Store owns the database handle and the per-collection repositories.
type Store struct {
	db *sql.DB

	Notes         notes.Repository
	Notifications notifications.Repository
	Subscriptions subscriptions.Repository
	Settings      settings.Repository
}

// Open opens (creating if necessary) the database at dsn and runs all
// pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// between concurrent repository calls.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	return &Store{
		db:            db,
		Notes:         notes.NewSQLiteRepository(db),
		Notifications: notifications.NewSQLiteRepository(db),
		Subscriptions: subscriptions.NewSQLiteRepository(db),
		Settings:      settings.NewSQLiteRepository(db),
	}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"XPBot/core"
	"XPBot/core/database/migrations"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// DB wraps the sqlite handle. Writes are serialised through mu; sqlite only
// allows one writer anyway and this keeps "database is locked" out of the logs.
type DB struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// Open connects to the sqlite database at path and brings its schema up to date.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// A single connection keeps :memory: databases alive across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err = migrate(ctx, db.DB); err != nil {
		db.Close()
		return nil, err
	}
	core.LogDebugF("Opened database %s", path)
	return &DB{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// executeAndCommit runs fn inside a transaction and commits it, rolling back on error.
func (d *DB) executeAndCommit(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			core.LogErrorF("Failed to roll back transaction: %s", rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps every ledger key as one row of kv_entries.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements KV.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.queries.GetValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// SetMany implements KV. All entries are written in one transaction.
func (r *SQLiteRepository) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for key, value := range entries {
		if err := q.UpsertValue(ctx, UpsertValueParams{Key: key, Value: value}); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}
	if err := q.InsertRevision(ctx, int64(len(entries))); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Ledger keys saved to SQLite", "keys", len(entries))
	return nil
}

// Keys implements KV.
func (r *SQLiteRepository) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.queries.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// LastSavedAt returns the time of the most recent full-state save, or the
// zero time if nothing was ever saved.
func (r *SQLiteRepository) LastSavedAt(ctx context.Context) (time.Time, error) {
	rev, err := r.queries.LastRevision(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("last revision: %w", err)
	}
	return rev.SavedAt, nil
}

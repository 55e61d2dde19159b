package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const getValue = `SELECT value FROM kv_entries WHERE key = ?`

func (q *Queries) GetValue(ctx context.Context, key string) (string, error) {
	row := q.db.QueryRowContext(ctx, getValue, key)
	var value string
	err := row.Scan(&value)
	return value, err
}

const upsertValue = `
INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

type UpsertValueParams struct {
	Key   string
	Value string
}

func (q *Queries) UpsertValue(ctx context.Context, arg UpsertValueParams) error {
	_, err := q.db.ExecContext(ctx, upsertValue, arg.Key, arg.Value)
	return err
}

const listKeys = `SELECT key FROM kv_entries ORDER BY key`

func (q *Queries) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		items = append(items, key)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertRevision = `INSERT INTO ledger_revisions (keys_count) VALUES (?)`

func (q *Queries) InsertRevision(ctx context.Context, keysCount int64) error {
	_, err := q.db.ExecContext(ctx, insertRevision, keysCount)
	return err
}

const lastRevision = `SELECT id, keys_count, saved_at FROM ledger_revisions ORDER BY id DESC LIMIT 1`

type LedgerRevision struct {
	ID        int64
	KeysCount int64
	SavedAt   time.Time
}

func (q *Queries) LastRevision(ctx context.Context) (LedgerRevision, error) {
	row := q.db.QueryRowContext(ctx, lastRevision)
	var i LedgerRevision
	err := row.Scan(&i.ID, &i.KeysCount, &i.SavedAt)
	return i, err
}

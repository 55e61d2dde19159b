package storage

import "context"

// KV is the flat key-value store the ledger is persisted into. Each value
// is a JSON document or, for scalar settings, a plain string.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	SetMany(ctx context.Context, entries map[string]string) error
	Keys(ctx context.Context) ([]string, error)
}

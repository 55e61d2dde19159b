package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult is a ready ledger store plus the optional change publisher.
type BackendResult struct {
	Store *storage.LedgerStore
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string
	// SeedFile is a backup document loaded into the memory backend.
	SeedFile string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

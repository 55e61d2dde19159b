package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fintrack/internal/amqp"
	"fintrack/internal/backup"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		kv      storage.KV
		closeKV func() error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		kv, closeKV = repo, repo.Close
		savedAt, err := repo.LastSavedAt(ctx)
		if err != nil {
			f.logger.WarnContext(ctx, "Could not read last save time", log.FieldError, err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend",
			"db_path", config.SQLiteDBPath,
			"last_saved_at", savedAt)
	case MemoryBackend:
		mem := memory.New()
		kv, closeKV = mem, mem.Close
		f.logger.InfoContext(ctx, "Initialized memory backend", "seed_file", config.SeedFile)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	store := storage.NewLedgerStore(kv)
	if config.SeedFile != "" {
		if err := seed(ctx, store, config.SeedFile); err != nil {
			_ = closeKV()
			return nil, err
		}
		f.logger.InfoContext(ctx, "Seeded memory backend", "seed_file", config.SeedFile)
	}

	publisher := f.connectAMQP(ctx, config)

	return &BackendResult{
		Store:     store,
		Publisher: publisher,
		Cleanup: func() error {
			var errs []error
			if publisher != nil {
				errs = append(errs, publisher.Close())
			}
			errs = append(errs, closeKV())
			return errors.Join(errs...)
		},
	}, nil
}

// connectAMQP is best effort: without a broker the ledger still works,
// only change notifications are lost.
func (f *DefaultFactory) connectAMQP(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without notifications", log.FieldError, err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

// seed loads a backup document into an empty store.
func seed(ctx context.Context, store *storage.LedgerStore, path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()

	doc, err := backup.Decode(fh)
	if err != nil {
		return fmt.Errorf("decode seed file %s: %w", path, err)
	}
	l := backup.Apply(doc, ledger.New())
	l.Presets.EnsureReserved()
	l.NormalizeGoalRefs()
	if err := store.Save(ctx, l); err != nil {
		return fmt.Errorf("save seed: %w", err)
	}
	return nil
}

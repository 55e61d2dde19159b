package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

// balanceMirror is what the worker needs from a snapshot destination.
type balanceMirror interface {
	sheets.BalanceWriter
	sheets.BalanceReader
}

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(log.New(log.Config{}), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker, nil)
	logger.Info("Starting finance-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "AMQP_URL is required for the worker", errors.New("missing AMQP_URL"))
	}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is private to this process; the worker will only see seed data")
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	// The worker only reads the ledger, so the backend is opened without a publisher.
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	bcfg.AMQPURL = ""
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to open ledger store", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	mirror, err := newMirror(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	processor := services.NewSnapshotProcessor(res.Store, mirror, nil, services.SnapshotProcessorConfig{
		Interval: cfg.SnapshotInterval,
	})
	w := worker.NewSnapshotWorker(processor, res.Store, mirror, logger)

	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup snapshot check failed", log.FieldError, err)
	}
	if err := processor.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start snapshot processor", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeLedgerChanged(gctx, w.HandleLedgerChanged)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker", log.FieldOperation, log.OpShutdown)
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return processor.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		return
	}
	logger.Info("Worker shutdown complete")
}

func newMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (balanceMirror, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, keeping the snapshot in memory")
		return sheetsmem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.CredentialsFile(),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

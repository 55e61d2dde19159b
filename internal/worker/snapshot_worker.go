package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
)

// Snapshotter writes the balance snapshot, either now or from its own loop.
type Snapshotter interface {
	Process(ctx context.Context) error
	Trigger()
	IsRunning() bool
}

// SnapshotWorker reacts to ledger change notifications by refreshing the
// balance snapshot in Google Sheets.
type SnapshotWorker struct {
	snapshots Snapshotter
	loader    services.Loader
	reader    sheets.BalanceReader
	conv      *currency.Converter
	logger    *log.Logger
}

// NewSnapshotWorker creates a worker. reader may be nil, in which case the
// startup check always rewrites the snapshot.
func NewSnapshotWorker(snapshots Snapshotter, loader services.Loader, reader sheets.BalanceReader, logger *log.Logger) *SnapshotWorker {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &SnapshotWorker{
		snapshots: snapshots,
		loader:    loader,
		reader:    reader,
		conv:      currency.NewConverter(currency.DefaultRates()),
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerChanged processes one notification. Preset edits never move a
// balance and are acknowledged without work. When the snapshot loop is
// running the write is handed to it, so bursts of changes coalesce.
func (w *SnapshotWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldOperation, msg.Operation,
		log.FieldEntity, msg.Entity,
		log.FieldEntityID, msg.EntityID)

	if !affectsBalances(msg.Entity) {
		w.logger.DebugContext(ctx, "Ledger change does not affect balances", log.FieldEntity, msg.Entity)
		return nil
	}
	if w.snapshots.IsRunning() {
		w.snapshots.Trigger()
		return nil
	}
	if err := w.snapshots.Process(ctx); err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	return nil
}

func affectsBalances(entity string) bool {
	return entity != services.EntityPresets
}

// StartupCheck rewrites the snapshot when the sheet does not match the
// persisted ledger, so changes made while the worker was down show up.
func (w *SnapshotWorker) StartupCheck(ctx context.Context) error {
	if w.reader == nil {
		return w.snapshots.Process(ctx)
	}

	current, err := w.reader.ReadBalances(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "Could not read existing snapshot, rewriting", log.FieldError, err)
		return w.snapshots.Process(ctx)
	}

	l, _, err := w.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	l.Recalculate()
	want := sheets.BalanceRows(l, w.conv)

	if sameRows(current, want) {
		w.logger.InfoContext(ctx, "Balance snapshot is up to date", "accounts", len(want))
		return nil
	}
	w.logger.InfoContext(ctx, "Balance snapshot is stale, rewriting",
		"sheet_rows", len(current),
		"accounts", len(want))
	return w.snapshots.Process(ctx)
}

// sameRows compares rows the way they are rendered in the sheet.
func sameRows(a, b []sheets.BalanceRow) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.AccountID != y.AccountID || x.Name != y.Name || x.Type != y.Type ||
			x.Currency != y.Currency || x.BaseCurrency != y.BaseCurrency ||
			core.FormatAmount(x.Balance) != core.FormatAmount(y.Balance) ||
			core.FormatAmount(x.BaseBalance) != core.FormatAmount(y.BaseBalance) {
			return false
		}
	}
	return true
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/currency"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// SnapshotProcessorConfig holds configuration for the snapshot processor
type SnapshotProcessorConfig struct {
	// Interval is how often the snapshot is rewritten without a trigger (default: 5m)
	Interval time.Duration
}

func DefaultSnapshotProcessorConfig() SnapshotProcessorConfig {
	return SnapshotProcessorConfig{Interval: 5 * time.Minute}
}

// Loader reads the persisted ledger.
type Loader interface {
	Load(ctx context.Context) (*ledger.Ledger, storage.LoadReport, error)
}

// SnapshotProcessor mirrors account balances to a BalanceWriter. It runs
// on every Trigger and on a fixed interval, so a lost change notification
// is repaired by the next tick.
type SnapshotProcessor struct {
	loader Loader
	writer sheets.BalanceWriter
	conv   *currency.Converter
	config SnapshotProcessorConfig

	trigger chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSnapshotProcessor(loader Loader, writer sheets.BalanceWriter, conv *currency.Converter, config SnapshotProcessorConfig) *SnapshotProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultSnapshotProcessorConfig().Interval
	}
	if conv == nil {
		conv = currency.NewConverter(currency.DefaultRates())
	}
	return &SnapshotProcessor{
		loader:  loader,
		writer:  writer,
		conv:    conv,
		config:  config,
		trigger: make(chan struct{}, 1),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SnapshotProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("snapshot processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Snapshot processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SnapshotProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.stopCh = nil
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Snapshot processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Snapshot processor stop timed out")
		return ctx.Err()
	}
	return nil
}

func (p *SnapshotProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Trigger asks for a snapshot soon. Triggers that arrive while one is
// pending collapse into it.
func (p *SnapshotProcessor) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *SnapshotProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.processLogged(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.processLogged(ctx)
		case <-p.trigger:
			p.processLogged(ctx)
		}
	}
}

func (p *SnapshotProcessor) processLogged(ctx context.Context) {
	if err := p.Process(ctx); err != nil {
		slog.ErrorContext(ctx, "Balance snapshot failed", "error", err)
	}
}

// Process loads the ledger, recalculates a private copy and writes one
// row per account.
func (p *SnapshotProcessor) Process(ctx context.Context) error {
	l, _, err := p.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	stats := l.Recalculate()
	rows := sheets.BalanceRows(l, p.conv)

	ref, err := p.writer.WriteBalances(ctx, rows)
	if err != nil {
		return fmt.Errorf("write balances: %w", err)
	}

	slog.InfoContext(ctx, "Wrote balance snapshot",
		log.FieldOperation, log.OpSnapshot,
		"accounts", len(rows),
		"orphans", stats.Orphans,
		"sheets_ref", ref)
	return nil
}

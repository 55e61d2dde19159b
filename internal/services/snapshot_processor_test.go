package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/ledger"
	"fintrack/internal/sheets"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func seededLoader(t *testing.T) *storage.LedgerStore {
	t.Helper()
	st := storage.NewLedgerStore(memory.New())
	l := ledger.New()
	l.Accounts = []core.Account{
		{ID: 1, Name: "Готівка", Type: "cash", Currency: core.UAH, Balance: 100},
		{ID: 2, Name: "Долари", Type: "cash", Currency: core.USD, Balance: 27},
	}
	l.Incomes = []core.Income{{ID: 3, Amount: 50, Category: "X", AccountID: 1}}
	if err := st.Save(context.Background(), l); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return st
}

func TestDefaultSnapshotProcessorConfig(t *testing.T) {
	config := DefaultSnapshotProcessorConfig()
	if config.Interval != 5*time.Minute {
		t.Errorf("expected Interval 5m, got %v", config.Interval)
	}

	p := NewSnapshotProcessor(nil, nil, nil, SnapshotProcessorConfig{})
	if p.config.Interval != 5*time.Minute {
		t.Errorf("zero interval should fall back to default, got %v", p.config.Interval)
	}
}

func TestSnapshotProcessor_Process(t *testing.T) {
	writer := sheetsmem.New()
	p := NewSnapshotProcessor(seededLoader(t), writer, currency.NewConverter(currency.DefaultRates()), DefaultSnapshotProcessorConfig())

	if err := p.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	rows, _ := writer.ReadBalances(context.Background())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Balance != 150 || rows[0].BaseBalance != 150 {
		t.Errorf("unexpected UAH row: %+v", rows[0])
	}
	if core.FormatAmount(rows[1].BaseBalance) != "1000.00" {
		t.Errorf("expected USD converted to base, got %v", rows[1].BaseBalance)
	}
}

func TestSnapshotProcessor_ProcessWriteError(t *testing.T) {
	writer := sheetsmem.New()
	writer.FailWith(errors.New("quota"))
	p := NewSnapshotProcessor(seededLoader(t), writer, nil, DefaultSnapshotProcessorConfig())

	if err := p.Process(context.Background()); err == nil {
		t.Fatal("expected write error")
	}
}

func TestSnapshotProcessor_StartStop(t *testing.T) {
	writer := sheetsmem.New()
	p := NewSnapshotProcessor(seededLoader(t), writer, nil, SnapshotProcessorConfig{Interval: time.Hour})

	if p.IsRunning() {
		t.Error("processor should not be running initially")
	}

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	p.Trigger()
	p.Trigger()

	deadline := time.Now().Add(2 * time.Second)
	for writer.Writes() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if writer.Writes() < 2 {
		t.Errorf("expected startup and triggered snapshots, got %d writes", writer.Writes())
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.IsRunning() {
		t.Error("processor should be stopped")
	}
	if err := p.Stop(stopCtx); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
}

// blockingWriter holds every write until release is closed.
type blockingWriter struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (w *blockingWriter) WriteBalances(ctx context.Context, _ []sheets.BalanceRow) (string, error) {
	w.once.Do(func() { close(w.started) })
	<-w.release
	return "blocked", nil
}

func TestSnapshotProcessor_StopAfterTimeout(t *testing.T) {
	w := &blockingWriter{started: make(chan struct{}), release: make(chan struct{})}
	p := NewSnapshotProcessor(seededLoader(t), w, nil, SnapshotProcessorConfig{Interval: time.Hour})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-w.started:
	case <-time.After(2 * time.Second):
		t.Fatal("startup snapshot never reached the writer")
	}

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Stop(expired); !errors.Is(err, context.Canceled) {
		t.Fatalf("Stop() = %v, want context.Canceled", err)
	}
	if p.IsRunning() {
		t.Error("processor should not report running after a timed out stop")
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}

	close(w.release)
}

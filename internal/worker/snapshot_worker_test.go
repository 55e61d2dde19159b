package worker

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

type fakeSnapshotter struct {
	running   bool
	processed int
	triggered int
	err       error
}

func (f *fakeSnapshotter) Process(context.Context) error { f.processed++; return f.err }
func (f *fakeSnapshotter) Trigger()                      { f.triggered++ }
func (f *fakeSnapshotter) IsRunning() bool               { return f.running }

func seededStore(t *testing.T) *storage.LedgerStore {
	t.Helper()
	st := storage.NewLedgerStore(memory.New())
	l := ledger.New()
	l.Accounts = []core.Account{{ID: 1, Name: "Cash", Type: "cash", Currency: core.UAH, Balance: 10}}
	l.Incomes = []core.Income{{ID: 2, Amount: 5, Category: "Gift", AccountID: 1}}
	if err := st.Save(context.Background(), l); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return st
}

func TestHandleLedgerChanged(t *testing.T) {
	tests := []struct {
		name          string
		entity        string
		running       bool
		err           error
		wantProcessed int
		wantTriggered int
		wantErr       bool
	}{
		{name: "processes inline when loop is stopped", entity: services.EntityExpense, wantProcessed: 1},
		{name: "hands off to running loop", entity: services.EntityTransfer, running: true, wantTriggered: 1},
		{name: "preset edits are ignored", entity: services.EntityPresets},
		{name: "processing error requeues", entity: services.EntityIncome, err: errors.New("quota"), wantProcessed: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &fakeSnapshotter{running: tt.running, err: tt.err}
			w := NewSnapshotWorker(snap, nil, nil, log.Discard())

			err := w.HandleLedgerChanged(context.Background(), amqp.NewLedgerChangedMessage("update", tt.entity, 1))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if snap.processed != tt.wantProcessed || snap.triggered != tt.wantTriggered {
				t.Errorf("processed=%d triggered=%d, want %d/%d", snap.processed, snap.triggered, tt.wantProcessed, tt.wantTriggered)
			}
		})
	}
}

func TestStartupCheck(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)

	t.Run("no reader always rewrites", func(t *testing.T) {
		snap := &fakeSnapshotter{}
		if err := NewSnapshotWorker(snap, st, nil, log.Discard()).StartupCheck(ctx); err != nil {
			t.Fatal(err)
		}
		if snap.processed != 1 {
			t.Errorf("processed = %d", snap.processed)
		}
	})

	t.Run("stale sheet is rewritten", func(t *testing.T) {
		sheet := sheetsmem.New()
		snap := &fakeSnapshotter{}
		if err := NewSnapshotWorker(snap, st, sheet, log.Discard()).StartupCheck(ctx); err != nil {
			t.Fatal(err)
		}
		if snap.processed != 1 {
			t.Errorf("empty sheet should be rewritten, processed = %d", snap.processed)
		}
	})

	t.Run("matching sheet is left alone", func(t *testing.T) {
		sheet := sheetsmem.New()
		_, err := sheet.WriteBalances(ctx, []sheets.BalanceRow{{
			AccountID: 1, Name: "Cash", Type: "cash", Currency: core.UAH,
			Balance: 15, BaseCurrency: core.UAH, BaseBalance: 15,
		}})
		if err != nil {
			t.Fatal(err)
		}
		snap := &fakeSnapshotter{}
		if err := NewSnapshotWorker(snap, st, sheet, log.Discard()).StartupCheck(ctx); err != nil {
			t.Fatal(err)
		}
		if snap.processed != 0 {
			t.Errorf("up-to-date sheet should not be rewritten, processed = %d", snap.processed)
		}
	})
}

func TestStartupCheck_WithProcessor(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)
	sheet := sheetsmem.New()
	proc := services.NewSnapshotProcessor(st, sheet, nil, services.DefaultSnapshotProcessorConfig())

	if err := NewSnapshotWorker(proc, st, sheet, log.Discard()).StartupCheck(ctx); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	rows, _ := sheet.ReadBalances(ctx)
	if len(rows) != 1 || rows[0].Balance != 15 {
		t.Errorf("rows = %+v", rows)
	}
}

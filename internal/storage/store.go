package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// Persisted keys.
const (
	KeyAccounts              = "accounts"
	KeyIncomes               = "incomes"
	KeyExpenses              = "expenses"
	KeyCapital               = "capital"
	KeyGoals                 = "goals"
	KeyGoalsArchive          = "goalsArchive"
	KeyCredits               = "credits"
	KeyAssets                = "assets"
	KeyTransfers             = "transfers"
	KeyTheme                 = "theme"
	KeyBaseCurrency          = "baseCurrency"
	KeyLockEnabled           = "lockEnabled"
	KeyExpenseCategoryFilter = "expenseCategoryFilter"
	KeyExpensePresets        = "expensePresets"
)

// LoadReport tells the caller what the loader had to repair.
type LoadReport struct {
	SeededAccounts     bool
	PresetsDefaulted   bool
	PresetsHealed      bool // reserved categories were injected
	NormalizedGoalRefs int
	Corrupt            []string // keys that held undecodable JSON
}

// LedgerStore maps the ledger aggregate onto a flat KV.
type LedgerStore struct {
	kv KV
}

func NewLedgerStore(kv KV) *LedgerStore {
	return &LedgerStore{kv: kv}
}

// loadDoc decodes key. Missing, empty and malformed values yield the zero
// value and ok=false; malformed values are also recorded in the report.
func loadDoc[T any](ctx context.Context, kv KV, key string, report *LoadReport) (T, bool, error) {
	var out T
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return out, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return out, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.WarnContext(ctx, "Ignoring malformed ledger key", "key", key, "error", err)
		report.Corrupt = append(report.Corrupt, key)
		var zero T
		return zero, false, nil
	}
	return out, true, nil
}

func (s *LedgerStore) scalar(ctx context.Context, key string) (string, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return raw, nil
}

// Load reads the whole ledger. Missing keys fall back to defaults, reserved
// preset categories are re-injected and persisted, and legacy goal
// contributions get their typed goal reference.
func (s *LedgerStore) Load(ctx context.Context) (*ledger.Ledger, LoadReport, error) {
	var report LoadReport
	l := ledger.New()

	accounts, ok, err := loadDoc[[]core.Account](ctx, s.kv, KeyAccounts, &report)
	if err != nil {
		return nil, report, err
	}
	if ok && accounts != nil {
		l.Accounts = accounts
	} else {
		l.Accounts = ledger.DefaultAccounts()
		report.SeededAccounts = true
	}

	if l.Incomes, _, err = loadDoc[[]core.Income](ctx, s.kv, KeyIncomes, &report); err != nil {
		return nil, report, err
	}
	if l.Expenses, _, err = loadDoc[[]core.Expense](ctx, s.kv, KeyExpenses, &report); err != nil {
		return nil, report, err
	}
	if l.Capital, _, err = loadDoc[[]core.CapitalEntry](ctx, s.kv, KeyCapital, &report); err != nil {
		return nil, report, err
	}
	if l.Goals, _, err = loadDoc[[]core.Goal](ctx, s.kv, KeyGoals, &report); err != nil {
		return nil, report, err
	}
	if l.GoalsArchive, _, err = loadDoc[[]core.ArchivedGoal](ctx, s.kv, KeyGoalsArchive, &report); err != nil {
		return nil, report, err
	}
	if l.Credits, _, err = loadDoc[[]core.Credit](ctx, s.kv, KeyCredits, &report); err != nil {
		return nil, report, err
	}
	if l.Assets, _, err = loadDoc[[]core.Asset](ctx, s.kv, KeyAssets, &report); err != nil {
		return nil, report, err
	}
	if l.Transfers, _, err = loadDoc[[]core.Transfer](ctx, s.kv, KeyTransfers, &report); err != nil {
		return nil, report, err
	}

	if err := s.loadSettings(ctx, &l.Settings); err != nil {
		return nil, report, err
	}

	presets, ok, err := loadDoc[core.Presets](ctx, s.kv, KeyExpensePresets, &report)
	if err != nil {
		return nil, report, err
	}
	switch {
	case !ok || len(presets) == 0:
		l.Presets = core.DefaultPresets()
		report.PresetsDefaulted = true
	default:
		l.Presets = presets
		report.PresetsHealed = l.Presets.EnsureReserved()
	}
	if report.PresetsDefaulted || report.PresetsHealed {
		if err := s.SavePresets(ctx, l.Presets); err != nil {
			return nil, report, err
		}
	}

	report.NormalizedGoalRefs = l.NormalizeGoalRefs()
	return l, report, nil
}

func (s *LedgerStore) loadSettings(ctx context.Context, st *core.Settings) error {
	theme, err := s.scalar(ctx, KeyTheme)
	if err != nil {
		return err
	}
	if theme != "" {
		st.Theme = theme
	}

	base, err := s.scalar(ctx, KeyBaseCurrency)
	if err != nil {
		return err
	}
	if c := core.Currency(base); c.IsValid() {
		st.BaseCurrency = c
	}

	lock, err := s.scalar(ctx, KeyLockEnabled)
	if err != nil {
		return err
	}
	st.LockEnabled = lock == "true"

	filter, err := s.scalar(ctx, KeyExpenseCategoryFilter)
	if err != nil {
		return err
	}
	if filter != "" {
		st.ExpenseCategoryFilter = filter
	}
	return nil
}

func marshalInto(entries map[string]string, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	entries[key] = string(b)
	return nil
}

// nonNil keeps empty collections as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Save overwrites every key with the current ledger state.
func (s *LedgerStore) Save(ctx context.Context, l *ledger.Ledger) error {
	entries := make(map[string]string, 14)
	docs := []struct {
		key string
		v   any
	}{
		{KeyAccounts, nonNil(l.Accounts)},
		{KeyIncomes, nonNil(l.Incomes)},
		{KeyExpenses, nonNil(l.Expenses)},
		{KeyCapital, nonNil(l.Capital)},
		{KeyGoals, nonNil(l.Goals)},
		{KeyGoalsArchive, nonNil(l.GoalsArchive)},
		{KeyCredits, nonNil(l.Credits)},
		{KeyAssets, nonNil(l.Assets)},
		{KeyTransfers, nonNil(l.Transfers)},
		{KeyExpensePresets, l.Presets},
	}
	for _, d := range docs {
		if err := marshalInto(entries, d.key, d.v); err != nil {
			return err
		}
	}

	filter := l.Settings.ExpenseCategoryFilter
	if filter == "" {
		filter = "all"
	}
	entries[KeyTheme] = l.Settings.Theme
	entries[KeyBaseCurrency] = string(l.Settings.BaseCurrency)
	entries[KeyLockEnabled] = strconv.FormatBool(l.Settings.LockEnabled)
	entries[KeyExpenseCategoryFilter] = filter

	if err := s.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// SavePresets writes only the presets key.
func (s *LedgerStore) SavePresets(ctx context.Context, p core.Presets) error {
	entries := map[string]string{}
	if err := marshalInto(entries, KeyExpensePresets, p); err != nil {
		return err
	}
	if err := s.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("save presets: %w", err)
	}
	return nil
}

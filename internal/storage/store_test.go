package storage_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func TestLoadFreshStoreSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	st := storage.NewLedgerStore(kv)

	l, report, err := st.Load(ctx)
	require.NoError(t, err)
	assert.True(t, report.SeededAccounts)
	assert.True(t, report.PresetsDefaulted)
	assert.Equal(t, ledger.DefaultAccounts(), l.Accounts)
	assert.Equal(t, core.DefaultSettings(), l.Settings)
	assert.Equal(t, core.DefaultPresets(), l.Presets)

	raw, ok, _ := kv.Get(ctx, storage.KeyExpensePresets)
	require.True(t, ok, "defaulted presets are persisted")
	assert.Contains(t, raw, core.GoalCategory)
}

func TestLoadHealsReservedPresets(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewWithValues(map[string]string{
		storage.KeyExpensePresets: `{"Їжа":["Продукти"]}`,
	})
	l, report, err := storage.NewLedgerStore(kv).Load(ctx)
	require.NoError(t, err)
	assert.True(t, report.PresetsHealed)
	assert.False(t, report.PresetsDefaulted)
	assert.Equal(t, []string{core.GoalContributionSubcategory}, l.Presets[core.GoalCategory])
	assert.Equal(t, []string{core.OtherCategory}, l.Presets[core.OtherCategory])

	raw, _, _ := kv.Get(ctx, storage.KeyExpensePresets)
	var saved core.Presets
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	assert.Contains(t, saved, core.GoalCategory)
}

func TestLoadToleratesMalformedKeys(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewWithValues(map[string]string{
		storage.KeyAccounts:     `[{"id":1,"name":"Cash","type":"cash","currency":"UAH","balance":10}]`,
		storage.KeyIncomes:       `{not json`,
		storage.KeyExpenses:     `[{"id":"5","amount":3,"category":"Цілі","subcategory":"id:9 • Car","accountId":"1","date":"2024-05-01"}]`,
		storage.KeyLockEnabled:  "true",
		storage.KeyBaseCurrency: "XYZ",
	})
	l, report, err := storage.NewLedgerStore(kv).Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{storage.KeyIncomes}, report.Corrupt)
	assert.Empty(t, l.Incomes)
	assert.False(t, report.SeededAccounts)
	require.Len(t, l.Expenses, 1)
	require.NotNil(t, l.Expenses[0].GoalID)
	assert.Equal(t, core.ID(9), *l.Expenses[0].GoalID)
	assert.Equal(t, 1, report.NormalizedGoalRefs)
	assert.True(t, l.Settings.LockEnabled)
	assert.Equal(t, core.UAH, l.Settings.BaseCurrency, "unknown currency keeps the default")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	st := storage.NewLedgerStore(kv)

	l := ledger.New()
	l.Accounts = []core.Account{{ID: 1, Name: "Cash", Type: "cash", Currency: core.UAH}}
	l.Incomes = []core.Income{{ID: 2, Amount: 50, Category: "Salary", AccountID: 1, Date: core.NewDate(2024, 5, 1)}}
	l.Goals = []core.Goal{{ID: 3, Name: "Trip", Target: 100}}
	l.Settings.Theme = "dark"
	l.Settings.LockEnabled = true
	l.Recalculate()

	require.NoError(t, st.Save(ctx, l))

	raw, _, _ := kv.Get(ctx, storage.KeyTransfers)
	assert.Equal(t, "[]", raw)
	raw, _, _ = kv.Get(ctx, storage.KeyLockEnabled)
	assert.Equal(t, "true", raw)

	got, report, err := st.Load(ctx)
	require.NoError(t, err)
	assert.False(t, report.SeededAccounts)
	assert.False(t, report.PresetsHealed)
	assert.Equal(t, 50.0, got.Accounts[0].Balance)
	assert.Equal(t, 0.0, *got.Accounts[0].InitialBalance)
	assert.Equal(t, "2024-05-01", got.Incomes[0].Date.Key())
	assert.Equal(t, "dark", got.Settings.Theme)
	assert.True(t, got.Settings.LockEnabled)
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "finance.db"))
	require.NoError(t, err)
	defer repo.Close()

	_, ok, err := repo.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetMany(ctx, map[string]string{"accounts": "[]", "theme": "light"}))
	require.NoError(t, repo.SetMany(ctx, map[string]string{"theme": "dark"}))

	v, ok, err := repo.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	keys, err := repo.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", "theme"}, keys)

	savedAt, err := repo.LastSavedAt(ctx)
	require.NoError(t, err)
	assert.False(t, savedAt.IsZero())
}

func TestSQLiteBackedLedgerStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finance.db")
	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)

	st := storage.NewLedgerStore(repo)
	l, _, err := st.Load(ctx)
	require.NoError(t, err)
	l.Incomes = append(l.Incomes, core.Income{ID: 10, Amount: 25, Category: "Gift", AccountID: 1})
	l.Recalculate()
	require.NoError(t, st.Save(ctx, l))
	require.NoError(t, repo.Close())

	reopened, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, report, err := storage.NewLedgerStore(reopened).Load(ctx)
	require.NoError(t, err)
	assert.False(t, report.SeededAccounts)
	assert.Equal(t, 25.0, got.Account(1).Balance)
}

package services

import (
	"context"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// AddCapital records a capital entry held on accountID.
func (s *LedgerService) AddCapital(ctx context.Context, name string, amount float64, accountID core.ID) (core.CapitalEntry, error) {
	entry := core.CapitalEntry{Name: strings.TrimSpace(name), Amount: amount, AccountID: accountID}
	if entry.Name == "" {
		entry.Name = core.DefaultCapitalName
	}
	err := s.mutate(ctx, log.OpCreate, EntityCapital, func(l *ledger.Ledger) (core.ID, error) {
		if err := entry.Validate(); err != nil {
			return 0, err
		}
		entry.ID = s.ids.Next()
		l.Capital = append(l.Capital, entry)
		return entry.ID, nil
	})
	if err != nil {
		return core.CapitalEntry{}, err
	}
	return entry, nil
}

// AddCredit records a loan repaid in equal monthly instalments from start.
func (s *LedgerService) AddCredit(ctx context.Context, name string, amount float64, payments int, start core.Date) (core.Credit, error) {
	start = s.dateOrToday(start)
	credit := core.Credit{
		Name:     strings.TrimSpace(name),
		Amount:   amount,
		Payments: payments,
		Start:    start.Key(),
	}
	err := s.mutate(ctx, log.OpCreate, EntityCredit, func(l *ledger.Ledger) (core.ID, error) {
		if err := credit.Validate(); err != nil {
			return 0, err
		}
		credit.ID = s.ids.Next()
		l.Credits = append(l.Credits, credit)
		return credit.ID, nil
	})
	if err != nil {
		return core.Credit{}, err
	}
	return credit, nil
}

// AddAsset records an asset. Empty type, currency and trend get defaults.
func (s *LedgerService) AddAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Type = strings.TrimSpace(a.Type); a.Type == "" {
		a.Type = core.DefaultAssetType
	}
	if a.Currency == "" {
		a.Currency = core.UAH
	}
	if a.Trend = strings.TrimSpace(a.Trend); a.Trend == "" {
		a.Trend = core.DefaultAssetTrend
	}
	err := s.mutate(ctx, log.OpCreate, EntityAsset, func(l *ledger.Ledger) (core.ID, error) {
		if err := a.Validate(); err != nil {
			return 0, err
		}
		a.ID = s.ids.Next()
		l.Assets = append(l.Assets, a)
		return a.ID, nil
	})
	if err != nil {
		return core.Asset{}, err
	}
	return a, nil
}

// SettingsPatch carries the settings to change; nil fields stay as they are.
type SettingsPatch struct {
	Theme                 *string        `json:"theme,omitempty"`
	BaseCurrency          *core.Currency `json:"baseCurrency,omitempty"`
	LockEnabled           *bool          `json:"lockEnabled,omitempty"`
	ExpenseCategoryFilter *string        `json:"expenseCategoryFilter,omitempty"`
}

func (s *LedgerService) UpdateSettings(ctx context.Context, patch SettingsPatch) (core.Settings, error) {
	var out core.Settings
	err := s.mutate(ctx, log.OpUpdate, EntitySettings, func(l *ledger.Ledger) (core.ID, error) {
		next := l.Settings
		if patch.Theme != nil {
			next.Theme = strings.TrimSpace(*patch.Theme)
		}
		if patch.BaseCurrency != nil {
			next.BaseCurrency = *patch.BaseCurrency
		}
		if patch.LockEnabled != nil {
			next.LockEnabled = *patch.LockEnabled
		}
		if patch.ExpenseCategoryFilter != nil {
			next.ExpenseCategoryFilter = strings.TrimSpace(*patch.ExpenseCategoryFilter)
			if next.ExpenseCategoryFilter == "" {
				next.ExpenseCategoryFilter = "all"
			}
		}
		if err := next.Validate(); err != nil {
			return 0, err
		}
		l.Settings = next
		out = next
		return 0, nil
	})
	return out, err
}

// Presets returns a copy of the expense category presets.
func (s *LedgerService) Presets() core.Presets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Presets.Clone()
}

func (s *LedgerService) editPresets(ctx context.Context, op string, fn func(core.Presets) error) (core.Presets, error) {
	var out core.Presets
	err := s.mutate(ctx, op, EntityPresets, func(l *ledger.Ledger) (core.ID, error) {
		if err := fn(l.Presets); err != nil {
			return 0, err
		}
		out = l.Presets.Clone()
		return 0, nil
	})
	return out, err
}

func (s *LedgerService) AddCategory(ctx context.Context, name string) (core.Presets, error) {
	return s.editPresets(ctx, log.OpCreate, func(p core.Presets) error { return p.AddCategory(name) })
}

// DeleteCategory removes a category; reserved categories cannot be removed.
func (s *LedgerService) DeleteCategory(ctx context.Context, name string) (core.Presets, error) {
	return s.editPresets(ctx, log.OpDelete, func(p core.Presets) error { return p.DeleteCategory(name) })
}

func (s *LedgerService) AddSubcategory(ctx context.Context, category, sub string) (core.Presets, error) {
	return s.editPresets(ctx, log.OpCreate, func(p core.Presets) error { return p.AddSubcategory(category, sub) })
}

func (s *LedgerService) DeleteSubcategory(ctx context.Context, category, sub string) (core.Presets, error) {
	return s.editPresets(ctx, log.OpDelete, func(p core.Presets) error { return p.DeleteSubcategory(category, sub) })
}

// Import replaces the whole ledger with l. Reserved presets are restored,
// legacy goal references normalised and balances recalculated before the
// result is persisted.
func (s *LedgerService) Import(ctx context.Context, l *ledger.Ledger) error {
	incoming := l.Clone()
	err := s.mutate(ctx, log.OpImport, EntityLedger, func(work *ledger.Ledger) (core.ID, error) {
		if len(incoming.Presets) == 0 {
			incoming.Presets = core.DefaultPresets()
		}
		incoming.Presets.EnsureReserved()
		if !incoming.Settings.BaseCurrency.IsValid() {
			incoming.Settings.BaseCurrency = core.DefaultSettings().BaseCurrency
		}
		if incoming.Settings.Theme == "" {
			incoming.Settings.Theme = core.DefaultSettings().Theme
		}
		if incoming.Settings.ExpenseCategoryFilter == "" {
			incoming.Settings.ExpenseCategoryFilter = "all"
		}
		incoming.NormalizeGoalRefs()
		*work = *incoming
		return 0, nil
	})
	if err != nil {
		return err
	}
	s.ids.Observe(incoming.MaxID())
	return nil
}

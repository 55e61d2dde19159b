package sheets

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/ledger"
)

// BalanceRow is one account line of the balance snapshot.
type BalanceRow struct {
	AccountID    core.ID
	Name         string
	Type         string
	Currency     core.Currency
	Balance      float64
	BaseCurrency core.Currency
	BaseBalance  float64
}

// Ports for outbound adapters.
type (
	// BalanceWriter replaces the previously written snapshot with rows.
	BalanceWriter interface {
		WriteBalances(ctx context.Context, rows []BalanceRow) (ref string, err error)
	}

	BalanceReader interface {
		ReadBalances(ctx context.Context) ([]BalanceRow, error)
	}
)

// BalanceRows renders one row per account, in ledger order. The ledger is
// expected to be recalculated.
func BalanceRows(l *ledger.Ledger, conv *currency.Converter) []BalanceRow {
	base := l.Settings.BaseCurrency
	rows := make([]BalanceRow, 0, len(l.Accounts))
	for _, a := range l.Accounts {
		rows = append(rows, BalanceRow{
			AccountID:    a.ID,
			Name:         a.Name,
			Type:         a.Type,
			Currency:     a.Currency,
			Balance:      a.Balance,
			BaseCurrency: base,
			BaseBalance:  conv.Convert(a.Balance, a.Currency, base),
		})
	}
	return rows
}

// Package backup reads and writes the portable JSON export of a ledger.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const (
	AppName = "Finance App"
	Version = "1.8"
)

var (
	// ErrNotBackup means the document parsed but lacks meta, accounts or expenses.
	ErrNotBackup = errors.New("not a Finance App backup")
	ErrMalformed = errors.New("malformed backup")
)

type Meta struct {
	App        string    `json:"app"`
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
}

// Document is the export file. Optional sections are nil when absent so
// Apply can tell "missing" from "empty".
type Document struct {
	Accounts       []core.Account      `json:"accounts"`
	Incomes        []core.Income       `json:"incomes"`
	Expenses       []core.Expense      `json:"expenses"`
	Capital        []core.CapitalEntry `json:"capital"`
	Goals          []core.Goal         `json:"goals"`
	GoalsArchive   []core.ArchivedGoal `json:"goalsArchive"`
	Credits        []core.Credit       `json:"credits"`
	Assets         []core.Asset        `json:"assets"`
	Transfers      []core.Transfer     `json:"transfers"`
	ExpensePresets core.Presets        `json:"expensePresets"`
	Settings       *core.Settings      `json:"settings"`
	Meta           *Meta               `json:"meta"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Export snapshots every collection of l.
func Export(l *ledger.Ledger, now time.Time) Document {
	c := l.Clone()
	settings := c.Settings
	return Document{
		Accounts:       orEmpty(c.Accounts),
		Incomes:        orEmpty(c.Incomes),
		Expenses:       orEmpty(c.Expenses),
		Capital:        orEmpty(c.Capital),
		Goals:          orEmpty(c.Goals),
		GoalsArchive:   orEmpty(c.GoalsArchive),
		Credits:        orEmpty(c.Credits),
		Assets:         orEmpty(c.Assets),
		Transfers:      orEmpty(c.Transfers),
		ExpensePresets: c.Presets,
		Settings:       &settings,
		Meta:           &Meta{App: AppName, Version: Version, ExportedAt: now.UTC()},
	}
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Decode parses a backup file.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Meta == nil || doc.Accounts == nil || doc.Expenses == nil {
		return Document{}, ErrNotBackup
	}
	return doc, nil
}

// Apply builds the ledger to import. Missing collections become empty;
// missing presets and settings keep the values of current.
func Apply(doc Document, current *ledger.Ledger) *ledger.Ledger {
	out := &ledger.Ledger{
		Accounts:     orEmpty(doc.Accounts),
		Incomes:      orEmpty(doc.Incomes),
		Expenses:     orEmpty(doc.Expenses),
		Capital:      orEmpty(doc.Capital),
		Goals:        orEmpty(doc.Goals),
		GoalsArchive: orEmpty(doc.GoalsArchive),
		Credits:      orEmpty(doc.Credits),
		Assets:       orEmpty(doc.Assets),
		Transfers:    orEmpty(doc.Transfers),
		Settings:     current.Settings,
		Presets:      current.Presets.Clone(),
	}
	if doc.ExpensePresets != nil {
		out.Presets = doc.ExpensePresets.Clone()
	}
	if s := doc.Settings; s != nil {
		out.Settings = *s
		def := core.DefaultSettings()
		if out.Settings.Theme == "" {
			out.Settings.Theme = def.Theme
		}
		if !out.Settings.BaseCurrency.IsValid() {
			out.Settings.BaseCurrency = def.BaseCurrency
		}
		if out.Settings.ExpenseCategoryFilter == "" {
			out.Settings.ExpenseCategoryFilter = def.ExpenseCategoryFilter
		}
	}
	return out
}

// Filename is the suggested download name for an export made at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("finance_backup_%s.json", now.UTC().Format("2006-01-02"))
}

package ledger

import (
	"slices"

	"fintrack/internal/core"
)

// Account returns a pointer into the account list, or nil.
func (l *Ledger) Account(id core.ID) *core.Account {
	for i := range l.Accounts {
		if l.Accounts[i].ID == id {
			return &l.Accounts[i]
		}
	}
	return nil
}

// Goal returns a pointer into the active goal list, or nil.
func (l *Ledger) Goal(id core.ID) *core.Goal {
	for i := range l.Goals {
		if l.Goals[i].ID == id {
			return &l.Goals[i]
		}
	}
	return nil
}

// UpsertIncome replaces the income with the same id in place, or appends.
// It reports whether an existing record was replaced.
func (l *Ledger) UpsertIncome(item core.Income) bool {
	idx := slices.IndexFunc(l.Incomes, func(x core.Income) bool { return x.ID == item.ID })
	if idx >= 0 {
		l.Incomes[idx] = item
		return true
	}
	l.Incomes = append(l.Incomes, item)
	return false
}

// UpsertExpense replaces the expense with the same id in place, or appends.
func (l *Ledger) UpsertExpense(item core.Expense) bool {
	idx := slices.IndexFunc(l.Expenses, func(x core.Expense) bool { return x.ID == item.ID })
	if idx >= 0 {
		l.Expenses[idx] = item
		return true
	}
	l.Expenses = append(l.Expenses, item)
	return false
}

func (l *Ledger) DeleteIncome(id core.ID) error {
	n := len(l.Incomes)
	l.Incomes = slices.DeleteFunc(l.Incomes, func(x core.Income) bool { return x.ID == id })
	if len(l.Incomes) == n {
		return core.ErrNotFound
	}
	return nil
}

func (l *Ledger) DeleteExpense(id core.ID) error {
	n := len(l.Expenses)
	l.Expenses = slices.DeleteFunc(l.Expenses, func(x core.Expense) bool { return x.ID == id })
	if len(l.Expenses) == n {
		return core.ErrNotFound
	}
	return nil
}

func (l *Ledger) DeleteTransfer(id core.ID) error {
	n := len(l.Transfers)
	l.Transfers = slices.DeleteFunc(l.Transfers, func(x core.Transfer) bool { return x.ID == id })
	if len(l.Transfers) == n {
		return core.ErrNotFound
	}
	return nil
}

// CascadeResult counts the records removed together with an account.
type CascadeResult struct {
	Incomes   int
	Expenses  int
	Capital   int
	Transfers int
}

// DeleteAccount removes the account and every income, expense, capital
// entry and transfer that references it.
func (l *Ledger) DeleteAccount(id core.ID) (CascadeResult, error) {
	var res CascadeResult
	if l.Account(id) == nil {
		return res, core.ErrNotFound
	}
	l.Accounts = slices.DeleteFunc(l.Accounts, func(a core.Account) bool { return a.ID == id })

	n := len(l.Incomes)
	l.Incomes = slices.DeleteFunc(l.Incomes, func(x core.Income) bool { return x.AccountID == id })
	res.Incomes = n - len(l.Incomes)

	n = len(l.Expenses)
	l.Expenses = slices.DeleteFunc(l.Expenses, func(x core.Expense) bool { return x.AccountID == id })
	res.Expenses = n - len(l.Expenses)

	n = len(l.Capital)
	l.Capital = slices.DeleteFunc(l.Capital, func(x core.CapitalEntry) bool { return x.AccountID == id })
	res.Capital = n - len(l.Capital)

	n = len(l.Transfers)
	l.Transfers = slices.DeleteFunc(l.Transfers, func(x core.Transfer) bool {
		return x.FromAccountID == id || x.ToAccountID == id
	})
	res.Transfers = n - len(l.Transfers)

	return res, nil
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneGoal(g core.Goal) core.Goal {
	g.InitialSaved = cloneFloat(g.InitialSaved)
	return g
}

// Clone returns a deep copy that shares no memory with l.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{
		Accounts:     slices.Clone(l.Accounts),
		Incomes:      slices.Clone(l.Incomes),
		Expenses:     slices.Clone(l.Expenses),
		Capital:      slices.Clone(l.Capital),
		Goals:        slices.Clone(l.Goals),
		GoalsArchive: slices.Clone(l.GoalsArchive),
		Credits:      slices.Clone(l.Credits),
		Assets:       slices.Clone(l.Assets),
		Transfers:    slices.Clone(l.Transfers),
		Settings:     l.Settings,
		Presets:      l.Presets.Clone(),
	}
	for i := range out.Accounts {
		out.Accounts[i].InitialBalance = cloneFloat(out.Accounts[i].InitialBalance)
	}
	for i := range out.Expenses {
		if g := out.Expenses[i].GoalID; g != nil {
			id := *g
			out.Expenses[i].GoalID = &id
		}
	}
	for i := range out.Goals {
		out.Goals[i] = cloneGoal(out.Goals[i])
	}
	for i := range out.GoalsArchive {
		out.GoalsArchive[i].Goal = cloneGoal(out.GoalsArchive[i].Goal)
	}
	return out
}

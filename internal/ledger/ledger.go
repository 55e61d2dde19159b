// Package ledger holds the in-memory ledger aggregate and the balance
// recalculation engine.
//
// Balances and goal progress are never updated in place. Every pass starts
// from the stored baselines and replays incomes, expenses and transfers, so
// edits and deletions of historical records ripple into the derived values
// without any compensating arithmetic. References to missing accounts or
// goals are skipped, never reported as errors.
package ledger

import (
	"math"
	"slices"
	"time"

	"fintrack/internal/core"
)

// Ledger is the full persisted state of one user.
type Ledger struct {
	Accounts     []core.Account      `json:"accounts"`
	Incomes      []core.Income       `json:"incomes"`
	Expenses     []core.Expense      `json:"expenses"`
	Capital      []core.CapitalEntry `json:"capital"`
	Goals        []core.Goal         `json:"goals"`
	GoalsArchive []core.ArchivedGoal `json:"goalsArchive"`
	Credits      []core.Credit       `json:"credits"`
	Assets       []core.Asset        `json:"assets"`
	Transfers    []core.Transfer     `json:"transfers"`
	Settings     core.Settings       `json:"settings"`
	Presets      core.Presets        `json:"expensePresets"`
}

// RecalcStats describes one recalculation pass.
type RecalcStats struct {
	Accounts int
	Goals    int
	// Orphans counts ledger records whose effect was skipped because they
	// point to a missing account or goal.
	Orphans int
}

// New returns an empty ledger with default settings and presets.
func New() *Ledger {
	return &Ledger{
		Settings: core.DefaultSettings(),
		Presets:  core.DefaultPresets(),
	}
}

// DefaultAccounts is what a store without any accounts starts with.
func DefaultAccounts() []core.Account {
	return []core.Account{
		{ID: 1, Name: "Готівка UAH", Type: "cash", Currency: core.UAH},
		{ID: 2, Name: "Готівка USD", Type: "cash", Currency: core.USD},
		{ID: 3, Name: "Готівка EUR", Type: "cash", Currency: core.EUR},
		{ID: 4, Name: "Карта", Type: "card", Currency: core.UAH},
	}
}

// finite maps NaN and infinities to zero so a corrupt amount contributes nothing.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Recalculate rebuilds every account balance and every goal's saved amount
// from the baselines. Missing baselines are captured from the current
// value first. The pass is deterministic and idempotent.
func (l *Ledger) Recalculate() RecalcStats {
	stats := RecalcStats{Accounts: len(l.Accounts), Goals: len(l.Goals)}

	index := make(map[core.ID]int, len(l.Accounts))
	for i := range l.Accounts {
		a := &l.Accounts[i]
		if !core.Usable(a.InitialBalance) {
			base := finite(a.Balance)
			a.InitialBalance = &base
		}
		a.Balance = *a.InitialBalance
		if _, dup := index[a.ID]; !dup {
			index[a.ID] = i
		}
	}

	for _, inc := range l.Incomes {
		i, ok := index[inc.AccountID]
		if !ok {
			stats.Orphans++
			continue
		}
		l.Accounts[i].Balance += finite(inc.Amount)
	}

	for _, exp := range l.Expenses {
		i, ok := index[exp.AccountID]
		if !ok {
			stats.Orphans++
			continue
		}
		l.Accounts[i].Balance -= finite(exp.Amount)
	}

	for _, tr := range l.Transfers {
		amount := finite(tr.Amount)
		from, okFrom := index[tr.FromAccountID]
		to, okTo := index[tr.ToAccountID]
		if !okFrom || !okTo {
			stats.Orphans++
			continue
		}
		if amount == 0 {
			continue
		}
		l.Accounts[from].Balance -= amount
		l.Accounts[to].Balance += amount
	}

	contributed := make(map[core.ID]float64)
	for _, exp := range l.Expenses {
		if exp.IsGoalContribution() {
			contributed[*exp.GoalID] += finite(exp.Amount)
		}
	}

	for i := range l.Goals {
		g := &l.Goals[i]
		if !core.Usable(g.InitialSaved) {
			base := finite(g.Saved)
			g.InitialSaved = &base
		}
		total, ok := contributed[g.ID]
		g.Saved = *g.InitialSaved + total
		if ok {
			delete(contributed, g.ID)
		}
	}
	stats.Orphans += len(contributed)

	return stats
}

// MoveGoalToArchive removes the goal from the active list and prepends a
// snapshot stamped with completedAt to the archive.
func (l *Ledger) MoveGoalToArchive(goalID core.ID, completedAt time.Time) error {
	idx := slices.IndexFunc(l.Goals, func(g core.Goal) bool { return g.ID == goalID })
	if idx < 0 {
		return core.ErrNotFound
	}
	snapshot := core.ArchivedGoal{Goal: cloneGoal(l.Goals[idx]), CompletedAt: completedAt}
	l.Goals = slices.Delete(l.Goals, idx, idx+1)
	l.GoalsArchive = slices.Insert(l.GoalsArchive, 0, snapshot)
	return nil
}

// AutoArchiveCompletedGoals archives every goal whose saved amount reached
// its target (floored to 1) and returns the archived ids in scan order.
func (l *Ledger) AutoArchiveCompletedGoals(now time.Time) []core.ID {
	var done []core.ID
	for _, g := range l.Goals {
		if g.Completed() {
			done = append(done, g.ID)
		}
	}
	for _, id := range done {
		// the id was just found, the move cannot fail
		_ = l.MoveGoalToArchive(id, now)
	}
	return done
}

// NormalizeGoalRefs fills Expense.GoalID for goal-category records that
// only carry the goal reference inside the subcategory label. It returns
// the number of records updated.
func (l *Ledger) NormalizeGoalRefs() int {
	n := 0
	for i := range l.Expenses {
		if NormalizeExpense(&l.Expenses[i]) {
			n++
		}
	}
	return n
}

// NormalizeExpense sets GoalID from a legacy "id:<goal>" label.
func NormalizeExpense(e *core.Expense) bool {
	if e.Category != core.GoalCategory || e.GoalID != nil {
		return false
	}
	id, ok := core.ParseGoalRef(e.Subcategory)
	if !ok {
		return false
	}
	e.GoalID = &id
	return true
}

// MaxID returns the largest record id across all collections.
func (l *Ledger) MaxID() core.ID {
	var m core.ID
	bump := func(id core.ID) {
		if id > m {
			m = id
		}
	}
	for _, a := range l.Accounts {
		bump(a.ID)
	}
	for _, i := range l.Incomes {
		bump(i.ID)
	}
	for _, e := range l.Expenses {
		bump(e.ID)
	}
	for _, c := range l.Capital {
		bump(c.ID)
	}
	for _, g := range l.Goals {
		bump(g.ID)
	}
	for _, g := range l.GoalsArchive {
		bump(g.ID)
	}
	for _, c := range l.Credits {
		bump(c.ID)
	}
	for _, a := range l.Assets {
		bump(a.ID)
	}
	for _, t := range l.Transfers {
		bump(t.ID)
	}
	return m
}

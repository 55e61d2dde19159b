// Package reports derives read-only views from a recalculated ledger:
// the dashboard, the expense analytics breakdown and the month forecast.
package reports

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/ledger"
)

const (
	topSubcategories = 5
	forecastMonths   = 3
	noSubcategory    = "—"
)

// Filter narrows a report to one account and an inclusive day range.
// Zero values mean "all accounts" and "no bound".
type Filter struct {
	AccountID core.ID
	From      string // YYYY-MM-DD
	To        string // YYYY-MM-DD
}

func (f Filter) account(id core.ID) bool {
	return f.AccountID == 0 || f.AccountID == id
}

// inRange compares day keys. A dated bound excludes undated records.
func (f Filter) inRange(d core.Date) bool {
	if f.From == "" && f.To == "" {
		return true
	}
	key := d.Key()
	if key == "" {
		return false
	}
	if f.From != "" && key < f.From {
		return false
	}
	if f.To != "" && key > f.To {
		return false
	}
	return true
}

// Validate checks that the bounds look like days.
func (f Filter) Validate() error {
	for _, b := range []string{f.From, f.To} {
		if b == "" {
			continue
		}
		if _, err := core.ParseDay(b); err != nil || len(b) != 10 {
			return fmt.Errorf("%w: %q", core.ErrInvalidDate, b)
		}
	}
	return nil
}

type Reporter struct {
	conv *currency.Converter
}

func New(conv *currency.Converter) *Reporter {
	if conv == nil {
		conv = currency.NewConverter(currency.DefaultRates())
	}
	return &Reporter{conv: conv}
}

// currencyOf returns the currency of the first account with id, or base.
func currencyOf(l *ledger.Ledger, id core.ID, base core.Currency) core.Currency {
	if a := l.Account(id); a != nil {
		return a.Currency
	}
	return base
}

// totals accumulates amounts per key, remembering first-seen order.
type totals struct {
	order []string
	sums  map[string]float64
}

func newTotals() *totals {
	return &totals{sums: map[string]float64{}}
}

func (t *totals) add(key string, v float64) {
	if _, ok := t.sums[key]; !ok {
		t.order = append(t.order, key)
	}
	t.sums[key] += v
}

// sorted returns entries by descending amount; ties keep first-seen order.
func (t *totals) sorted(limit int) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, core.CategoryAmount{Name: k, Amount: t.sums[k]})
	}
	slices.SortStableFunc(out, func(a, b core.CategoryAmount) int {
		return cmp.Compare(b.Amount, a.Amount)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func categoryKey(e core.Expense) string {
	if e.Category == "" {
		return core.OtherCategory
	}
	return e.Category
}

func subcategoryKey(e core.Expense) string {
	sub := e.Subcategory
	if sub == "" {
		sub = noSubcategory
	}
	return categoryKey(e) + " / " + sub
}

func (r *Reporter) breakdown(l *ledger.Ledger, f Filter, amount func(core.Expense) float64) core.Breakdown {
	cats, subs := newTotals(), newTotals()
	for _, e := range l.Expenses {
		if !f.account(e.AccountID) || !f.inRange(e.Date) {
			continue
		}
		v := amount(e)
		cats.add(categoryKey(e), v)
		subs.add(subcategoryKey(e), v)
	}
	return core.Breakdown{
		ByCategory:       cats.sorted(0),
		TopSubcategories: subs.sorted(topSubcategories),
	}
}

// Dashboard totals balances, incomes and expenses in the ledger's base
// currency. Records are converted from their account's currency; records
// of missing accounts count as base.
func (r *Reporter) Dashboard(l *ledger.Ledger, f Filter) core.Dashboard {
	base := l.Settings.BaseCurrency
	toBase := func(v float64, account core.ID) float64 {
		return r.conv.Convert(v, currencyOf(l, account, base), base)
	}

	d := core.Dashboard{DashboardTotals: core.DashboardTotals{Currency: base}}
	for _, a := range l.Accounts {
		if f.account(a.ID) {
			d.TotalAccounts += r.conv.Convert(a.Balance, a.Currency, base)
		}
	}
	for _, inc := range l.Incomes {
		if f.account(inc.AccountID) && f.inRange(inc.Date) {
			d.Income += toBase(inc.Amount, inc.AccountID)
		}
	}
	for _, e := range l.Expenses {
		if f.account(e.AccountID) && f.inRange(e.Date) {
			d.Expense += toBase(e.Amount, e.AccountID)
		}
	}
	d.Net = d.Income - d.Expense
	d.Breakdown = r.breakdown(l, f, func(e core.Expense) float64 { return toBase(e.Amount, e.AccountID) })
	return d
}

// ExpenseAnalytics is the dashboard breakdown in raw, unconverted amounts.
func (r *Reporter) ExpenseAnalytics(l *ledger.Ledger, f Filter) core.Breakdown {
	return r.breakdown(l, f, func(e core.Expense) float64 { return e.Amount })
}

// monthIndex turns YYYY-MM into a month count.
func monthIndex(ym string) (int, bool) {
	t, err := time.Parse("2006-01", ym)
	if err != nil {
		return 0, false
	}
	return t.Year()*12 + int(t.Month()) - 1, true
}

// AvgMonthlyExpenses averages converted expenses over the calendar months
// before now. The current month is not included.
func (r *Reporter) AvgMonthlyExpenses(l *ledger.Ledger, now time.Time, months int) float64 {
	months = max(1, months)
	base := l.Settings.BaseCurrency
	window := make(map[string]bool, months)
	first := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= months; i++ {
		window[first.AddDate(0, -i, 0).Format("2006-01")] = true
	}

	var sum float64
	for _, e := range l.Expenses {
		if window[e.Date.MonthKey()] {
			sum += r.conv.Convert(e.Amount, currencyOf(l, e.AccountID, base), base)
		}
	}
	return sum / float64(months)
}

// CreditsDue lists instalments of credits still running in month (YYYY-MM).
// Credits without a parsable start are skipped.
func CreditsDue(credits []core.Credit, month string) []core.CategoryAmount {
	target, ok := monthIndex(month)
	if !ok {
		return nil
	}
	var out []core.CategoryAmount
	for _, c := range credits {
		if len(c.Start) < 7 {
			continue
		}
		start, ok := monthIndex(c.Start[:7])
		if !ok {
			continue
		}
		diff := target - start
		if diff >= 0 && diff < max(1, c.Payments) {
			out = append(out, core.CategoryAmount{Name: c.Name, Amount: c.MonthlyPayment()})
		}
	}
	return out
}

// Forecast projects the outflow of month: the recent average expense
// plus credit instalments due that month.
func (r *Reporter) Forecast(l *ledger.Ledger, month string, now time.Time) (core.Forecast, error) {
	if month == "" {
		month = now.UTC().Format("2006-01")
	}
	if _, ok := monthIndex(month); !ok {
		return core.Forecast{}, fmt.Errorf("%w: month %q", core.ErrInvalidDate, month)
	}

	fc := core.Forecast{
		Month:              month,
		Currency:           l.Settings.BaseCurrency,
		AvgMonthlyExpenses: r.AvgMonthlyExpenses(l, now, forecastMonths),
		Credits:            CreditsDue(l.Credits, month),
	}
	if fc.Credits == nil {
		fc.Credits = []core.CategoryAmount{}
	}
	for _, c := range fc.Credits {
		fc.CreditPayments += c.Amount
	}
	fc.ProjectedOutflow = fc.AvgMonthlyExpenses + fc.CreditPayments
	return fc, nil
}

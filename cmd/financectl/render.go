package main

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func accountsMarkdown(l *ledger.Ledger) string {
	var b strings.Builder
	b.WriteString("# Accounts\n\n")
	b.WriteString("| ID | Name | Type | Currency | Balance |\n")
	b.WriteString("|---:|:-----|:-----|:--------:|--------:|\n")
	for _, a := range l.Accounts {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			a.ID, escapeCell(a.Name), escapeCell(a.Type), a.Currency, core.FormatAmount(a.Balance))
	}

	if len(l.Goals) > 0 {
		b.WriteString("\n## Goals\n\n")
		b.WriteString("| ID | Name | Saved | Target |\n")
		b.WriteString("|---:|:-----|------:|-------:|\n")
		for _, g := range l.Goals {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				g.ID, escapeCell(g.Name), core.FormatAmount(g.Saved), core.FormatAmount(g.Target))
		}
	}
	if n := len(l.GoalsArchive); n > 0 {
		fmt.Fprintf(&b, "\n%d archived goal(s).\n", n)
	}
	return b.String()
}

func recalcMarkdown(stats ledger.RecalcStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recalculated **%d** accounts and **%d** goals.\n", stats.Accounts, stats.Goals)
	if stats.Orphans > 0 {
		fmt.Fprintf(&b, "\n%d record(s) reference a missing account or goal and were skipped.\n", stats.Orphans)
	}
	return b.String()
}

func dashboardMarkdown(d core.Dashboard, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("| | " + string(d.Currency) + " |\n|:--|--:|\n")
	fmt.Fprintf(&b, "| Accounts | %s |\n", core.FormatAmount(d.TotalAccounts))
	fmt.Fprintf(&b, "| Income | %s |\n", core.FormatAmount(d.Income))
	fmt.Fprintf(&b, "| Expense | %s |\n", core.FormatAmount(d.Expense))
	fmt.Fprintf(&b, "| **Net** | **%s** |\n", core.FormatAmount(d.Net))

	amountsTable(&b, "Expenses by category", d.ByCategory)
	amountsTable(&b, "Top subcategories", d.TopSubcategories)
	return b.String()
}

func forecastMarkdown(f core.Forecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Forecast %s\n\n", f.Month)
	b.WriteString("| | " + string(f.Currency) + " |\n|:--|--:|\n")
	fmt.Fprintf(&b, "| Average monthly expenses | %s |\n", core.FormatAmount(f.AvgMonthlyExpenses))
	fmt.Fprintf(&b, "| Credit payments | %s |\n", core.FormatAmount(f.CreditPayments))
	fmt.Fprintf(&b, "| **Projected outflow** | **%s** |\n", core.FormatAmount(f.ProjectedOutflow))

	amountsTable(&b, "Credits due", f.Credits)
	return b.String()
}

func amountsTable(b *strings.Builder, title string, rows []core.CategoryAmount) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n| Name | Amount |\n|:-----|-------:|\n", title)
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", escapeCell(r.Name), core.FormatAmount(r.Amount))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func presetsMarkdown(p core.Presets) string {
	var b strings.Builder
	b.WriteString("# Expense categories\n\n")
	for _, cat := range p.Categories() {
		fmt.Fprintf(&b, "- **%s**: %s\n", cat, strings.Join(p[cat], ", "))
	}
	return b.String()
}

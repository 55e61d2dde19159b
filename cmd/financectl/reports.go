package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/reports"
	"fintrack/internal/services"
)

func newReporter() *reports.Reporter {
	return reports.New(currency.NewConverter(currency.DefaultRates()))
}

type dashboardCmd struct {
	account  int64
	from, to string
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "summarise balances, income and expenses" }
func (*dashboardCmd) Usage() string {
	return `financectl dashboard [-account <id>] [-from <date>] [-to <date>]

  Totals are converted to the base currency. Without -account every
  account is included.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.account, "account", 0, "Restrict to one account")
	f.StringVar(&c.from, "from", "", "First day, YYYY-MM-DD")
	f.StringVar(&c.to, "to", "", "Last day, YYYY-MM-DD")
}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := reports.Filter{AccountID: core.ID(c.account), From: c.from, To: c.to}
	if err := filter.Validate(); err != nil {
		return usageError("%v", err)
	}
	return withLedger(ctx, func(_ context.Context, svc *services.LedgerService) error {
		d := newReporter().Dashboard(svc.Snapshot(), filter)
		printMarkdown(dashboardMarkdown(d, dashboardTitle(filter)))
		return nil
	})
}

func dashboardTitle(f reports.Filter) string {
	title := "Dashboard"
	if f.AccountID != 0 {
		title += " for account " + f.AccountID.String()
	}
	switch {
	case f.From != "" && f.To != "":
		title += ", " + f.From + " to " + f.To
	case f.From != "":
		title += " since " + f.From
	case f.To != "":
		title += " until " + f.To
	}
	return title
}

type forecastCmd struct {
	month string
}

func (*forecastCmd) Name() string     { return "forecast" }
func (*forecastCmd) Synopsis() string { return "project the outflow of a month" }
func (*forecastCmd) Usage() string {
	return `financectl forecast [-month <YYYY-MM>]

  Average expenses of the last three months plus the credit instalments
  due in the month.
`
}

func (c *forecastCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "Month as YYYY-MM, defaults to the current month")
}

func (c *forecastCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ context.Context, svc *services.LedgerService) error {
		fc, err := newReporter().Forecast(svc.Snapshot(), c.month, time.Now())
		if err != nil {
			return err
		}
		printMarkdown(forecastMarkdown(fc))
		return nil
	})
}

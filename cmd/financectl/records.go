package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type addIncomeCmd struct {
	amount   string
	category string
	account  int64
	date     string
}

func (*addIncomeCmd) Name() string     { return "add-income" }
func (*addIncomeCmd) Synopsis() string { return "record an income on an account" }
func (*addIncomeCmd) Usage() string {
	return `financectl add-income -a <amount> -account <id> [-c <category>] [-d <date>]
`
}

func (c *addIncomeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount, in the account currency")
	f.StringVar(&c.category, "c", "Зарплата", "Income category")
	f.Int64Var(&c.account, "account", 0, "Account id")
	f.StringVar(&c.date, "d", "", "Date as YYYY-MM-DD, defaults to today")
}

func (c *addIncomeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := parseDate(c.date)
	if err != nil {
		return usageError("%v", err)
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return usageError("invalid amount %q: %v", c.amount, err)
	}
	return withLedger(ctx, func(ctx context.Context, svc *services.LedgerService) error {
		in, err := svc.UpsertIncome(ctx, core.Income{
			Amount:    amount,
			Category:  c.category,
			AccountID: core.ID(c.account),
			Date:      date,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Income %s recorded: %s on account %s\n", in.ID, core.FormatAmount(in.Amount), in.AccountID)
		return nil
	})
}

type addExpenseCmd struct {
	amount      string
	category    string
	subcategory string
	account     int64
	date        string
}

func (*addExpenseCmd) Name() string     { return "add-expense" }
func (*addExpenseCmd) Synopsis() string { return "record an expense paid from an account" }
func (*addExpenseCmd) Usage() string {
	return `financectl add-expense -a <amount> -c <category> -account <id> [-s <subcategory>] [-d <date>]

  Goal contributions are recorded with "contribute", not here.
`
}

func (c *addExpenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount, in the account currency")
	f.StringVar(&c.category, "c", "", "Expense category")
	f.StringVar(&c.subcategory, "s", "", "Expense subcategory")
	f.Int64Var(&c.account, "account", 0, "Account id")
	f.StringVar(&c.date, "d", "", "Date as YYYY-MM-DD, defaults to today")
}

func (c *addExpenseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := parseDate(c.date)
	if err != nil {
		return usageError("%v", err)
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return usageError("invalid amount %q: %v", c.amount, err)
	}
	return withLedger(ctx, func(ctx context.Context, svc *services.LedgerService) error {
		e, err := svc.UpsertExpense(ctx, core.Expense{
			Amount:      amount,
			Category:    c.category,
			Subcategory: c.subcategory,
			AccountID:   core.ID(c.account),
			Date:        date,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Expense %s recorded: %s in %s\n", e.ID, core.FormatAmount(e.Amount), e.Category)
		return nil
	})
}

type transferCmd struct {
	from, to int64
	amount   string
	date     string
	note     string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `financectl transfer -from <id> -to <id> -a <amount> [-d <date>] [-note <text>]

  Both accounts must hold the same currency.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.from, "from", 0, "Source account id")
	f.Int64Var(&c.to, "to", 0, "Destination account id")
	f.StringVar(&c.amount, "a", "", "Amount, in the source account currency")
	f.StringVar(&c.date, "d", "", "Date as YYYY-MM-DD, defaults to today")
	f.StringVar(&c.note, "note", "", "Free text note")
}

func (c *transferCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := parseDate(c.date)
	if err != nil {
		return usageError("%v", err)
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return usageError("invalid amount %q: %v", c.amount, err)
	}
	return withLedger(ctx, func(ctx context.Context, svc *services.LedgerService) error {
		tr, err := svc.CreateTransfer(ctx, core.Transfer{
			FromAccountID: core.ID(c.from),
			ToAccountID:   core.ID(c.to),
			Amount:        amount,
			Date:          date,
			Note:          c.note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Transfer %s recorded: %s from %s to %s\n",
			tr.ID, core.FormatAmount(tr.Amount), tr.FromAccountID, tr.ToAccountID)
		return nil
	})
}

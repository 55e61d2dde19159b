package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts and active goals with their balances" }
func (*accountsCmd) Usage() string {
	return `financectl accounts

  Lists every account with its recalculated balance, then the active goals.
`
}
func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ context.Context, svc *services.LedgerService) error {
		printMarkdown(accountsMarkdown(svc.Snapshot()))
		return nil
	})
}

type recalcCmd struct{}

func (*recalcCmd) Name() string     { return "recalc" }
func (*recalcCmd) Synopsis() string { return "replay every record and persist fresh balances" }
func (*recalcCmd) Usage() string {
	return `financectl recalc

  Rebuilds account balances and goal progress from their baselines.
`
}
func (*recalcCmd) SetFlags(*flag.FlagSet) {}

func (*recalcCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(ctx context.Context, svc *services.LedgerService) error {
		stats, err := svc.Recalculate(ctx)
		if err != nil {
			return err
		}
		printMarkdown(recalcMarkdown(stats))
		return nil
	})
}

type presetsCmd struct{}

func (*presetsCmd) Name() string     { return "presets" }
func (*presetsCmd) Synopsis() string { return "list expense categories and their subcategories" }
func (*presetsCmd) Usage() string {
	return `financectl presets
`
}
func (*presetsCmd) SetFlags(*flag.FlagSet) {}

func (*presetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ context.Context, svc *services.LedgerService) error {
		printMarkdown(presetsMarkdown(svc.Presets()))
		return nil
	})
}

type adjustCmd struct {
	account int64
	delta   string
}

func (*adjustCmd) Name() string     { return "adjust" }
func (*adjustCmd) Synopsis() string { return "top up or write off an account balance" }
func (*adjustCmd) Usage() string {
	return `financectl adjust -account <id> -by <signed amount>

  A positive amount tops the account up, a negative one writes it off.
  The change moves the account baseline, so recalculation keeps it.
`
}

func (c *adjustCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.account, "account", 0, "Account id")
	f.StringVar(&c.delta, "by", "", "Signed amount, e.g. 250 or -20,5")
}

func (c *adjustCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	delta, err := core.ParseSignedAmount(c.delta)
	if err != nil {
		return usageError("invalid amount %q: %v", c.delta, err)
	}
	return withLedger(ctx, func(ctx context.Context, svc *services.LedgerService) error {
		acc, err := svc.AdjustAccount(ctx, core.ID(c.account), delta)
		if err != nil {
			return err
		}
		fmt.Printf("%s balance is now %s %s\n", acc.Name, core.FormatAmount(acc.Balance), acc.Currency)
		return nil
	})
}

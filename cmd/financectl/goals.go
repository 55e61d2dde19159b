package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type contributeCmd struct {
	goal, account int64
	amount        string
	date          string
}

func (*contributeCmd) Name() string     { return "contribute" }
func (*contributeCmd) Synopsis() string { return "put money from an account into a goal" }
func (*contributeCmd) Usage() string {
	return `financectl contribute -goal <id> -account <id> -a <amount> [-d <date>]

  Records the contribution as an expense in the goals category. A goal that
  reaches its target is archived.
`
}

func (c *contributeCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.goal, "goal", 0, "Goal id")
	f.Int64Var(&c.account, "account", 0, "Account the money comes from")
	f.StringVar(&c.amount, "a", "", "Amount")
	f.StringVar(&c.date, "d", "", "Date as YYYY-MM-DD, defaults to today")
}

func (c *contributeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := parseDate(c.date)
	if err != nil {
		return usageError("%v", err)
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return usageError("invalid amount %q: %v", c.amount, err)
	}
	return withLedger(ctx, func(ctx context.Context, svc *services.LedgerService) error {
		e, err := svc.ContributeToGoal(ctx, core.ID(c.goal), core.ID(c.account), amount, date)
		if err != nil {
			return err
		}
		fmt.Printf("Contribution %s recorded: %s\n", e.ID, e.Subcategory)
		for _, a := range svc.Snapshot().GoalsArchive {
			if a.ID == core.ID(c.goal) {
				fmt.Printf("Goal %q reached its target and was archived\n", a.Name)
			}
		}
		return nil
	})
}

type archiveGoalCmd struct {
	goal int64
	at   string
}

func (*archiveGoalCmd) Name() string     { return "archive-goal" }
func (*archiveGoalCmd) Synopsis() string { return "move a goal to the archive" }
func (*archiveGoalCmd) Usage() string {
	return `financectl archive-goal -goal <id> [-at <RFC3339 time>]
`
}

func (c *archiveGoalCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.goal, "goal", 0, "Goal id")
	f.StringVar(&c.at, "at", "", "Completion time, defaults to now")
}

func (c *archiveGoalCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var at time.Time
	if c.at != "" {
		t, err := time.Parse(time.RFC3339, c.at)
		if err != nil {
			return usageError("invalid -at %q: %v", c.at, err)
		}
		at = t
	}
	return withLedger(ctx, func(ctx context.Context, svc *services.LedgerService) error {
		if err := svc.MoveGoalToArchive(ctx, core.ID(c.goal), at); err != nil {
			return err
		}
		fmt.Printf("Goal %d archived\n", c.goal)
		return nil
	})
}

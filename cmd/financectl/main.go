// Command financectl edits and reports on the ledger from a terminal. It
// reads the same environment as the server, so with the sqlite backend it
// works on the server's database and its changes are announced over AMQP.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"fintrack/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func register(c *subcommands.Commander) {
	c.Register(&accountsCmd{}, "ledger")
	c.Register(&recalcCmd{}, "ledger")
	c.Register(&presetsCmd{}, "ledger")
	c.Register(&adjustCmd{}, "ledger")

	c.Register(&addIncomeCmd{}, "records")
	c.Register(&addExpenseCmd{}, "records")
	c.Register(&transferCmd{}, "records")

	c.Register(&contributeCmd{}, "goals")
	c.Register(&archiveGoalCmd{}, "goals")

	c.Register(&dashboardCmd{}, "reports")
	c.Register(&forecastCmd{}, "reports")

	c.Register(&exportCmd{}, "backup")
	c.Register(&importCmd{}, "backup")
}

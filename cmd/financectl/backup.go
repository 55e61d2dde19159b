package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"fintrack/internal/backup"
	"fintrack/internal/services"
)

type exportCmd struct {
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the ledger as a JSON backup" }
func (*exportCmd) Usage() string {
	return `financectl export [-o <file>]

  Writes a backup document. "-o -" prints it to stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "Output file, defaults to a dated file name in the current directory")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ context.Context, svc *services.LedgerService) error {
		now := time.Now()
		doc := backup.Export(svc.Snapshot(), now)
		if c.out == "-" {
			return backup.Write(os.Stdout, doc)
		}

		name := c.out
		if name == "" {
			name = backup.Filename(now)
		}
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := backup.Write(f, doc); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Backup written to %s\n", name)
		return nil
	})
}

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the ledger with a JSON backup" }
func (*importCmd) Usage() string {
	return `financectl import <file>

  Replaces every record with the backup content. Presets and settings the
  backup does not carry keep their current values.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("import needs exactly one backup file")
	}
	path := f.Arg(0)
	return withLedger(ctx, func(ctx context.Context, svc *services.LedgerService) error {
		r, err := os.Open(path)
		if err != nil {
			return err
		}
		defer r.Close()

		doc, err := backup.Decode(r)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := svc.Import(ctx, backup.Apply(doc, svc.Snapshot())); err != nil {
			return err
		}
		l := svc.Snapshot()
		fmt.Printf("Imported %d accounts, %d incomes, %d expenses and %d transfers\n",
			len(l.Accounts), len(l.Incomes), len(l.Expenses), len(l.Transfers))
		return nil
	})
}

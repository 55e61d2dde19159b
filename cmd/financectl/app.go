package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// a CLI run is short lived, global flags are fine.
var (
	plain    = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")
	logLevel = flag.String("log-level", "warn", "Log level written to stderr (debug, info, warn, error)")
)

// withLedger opens the configured ledger, runs fn and closes the backend.
func withLedger(ctx context.Context, fn func(ctx context.Context, svc *services.LedgerService) error) subcommands.ExitStatus {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	logger := cli.SetupLogger(*logLevel, log.ComponentCLI, os.Stderr)
	ctx = log.NewContext(ctx, logger)

	svc, res, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing backend: %v\n", err)
		}
	}()

	if err := fn(ctx, svc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it as is with -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// parseDate accepts YYYY-MM-DD. Empty means today.
func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDay(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}

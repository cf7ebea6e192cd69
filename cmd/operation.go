package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/kourasync"
	"github.com/etnz/kourasync/renderer"
	"github.com/google/subcommands"
)

// operationCmd runs an operation on every configured account.
type operationCmd struct {
	name     string
	synopsis string
	usage    string
	op       kourasync.Operation // empty to run the operation of each account.

	workers int
}

func (c *operationCmd) Name() string     { return c.name }
func (c *operationCmd) Synopsis() string { return c.synopsis }
func (c *operationCmd) Usage() string    { return c.usage }

func (c *operationCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.workers, "workers", 0, "Number of accounts processed at once (defaults to WORKERS)")
}

func (c *operationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "Error: %s takes no arguments\n", c.name)
		return subcommands.ExitUsageError
	}
	a, err := newApp(c.op)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	report := a.syncer(c.workers).Run(ctx, a.jobs())
	printMarkdown(renderer.ReportMarkdown(report))

	if !report.OK() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

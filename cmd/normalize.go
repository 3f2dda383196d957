package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/t212sync"
	"github.com/etnz/t212sync/history"
	"github.com/google/subcommands"
)

type normalizeCmd struct {
	account string
	output  string
}

func (*normalizeCmd) Name() string { return "normalize" }
func (*normalizeCmd) Synopsis() string {
	return "convert a Trading 212 CSV export into ledger transactions"
}
func (*normalizeCmd) Usage() string {
	return `t212sync normalize [-account <id>] [-o <file>] <export.csv>

  Converts an export downloaded from Trading 212 into transactions, written as
  JSONL. Nothing is sent to the broker nor to the ledger.

  The account defaults to the one of the configuration file.
`
}

func (c *normalizeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Ledger account id of the transactions.")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the standard output.")
}

func (c *normalizeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "normalize expects exactly one CSV file")
		return subcommands.ExitUsageError
	}
	if c.account == "" {
		if cfg, err := loadConfig(); err == nil {
			c.account = cfg.AccountID
		}
	}

	in, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	rows, err := history.ParseCSV(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	t212sync.SortRows(rows)
	txs, err := t212sync.Normalize(rows, c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var w io.Writer = os.Stdout
	if c.output != "" {
		out, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		w = out
	}
	if err := t212sync.EncodeTransactions(w, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

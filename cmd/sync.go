package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/t212sync/config"
	"github.com/etnz/t212sync/date"
	"github.com/etnz/t212sync/history"
	"github.com/etnz/t212sync/importer"
	"github.com/etnz/t212sync/ledger"
	"github.com/etnz/t212sync/renderer"
	"github.com/google/subcommands"
)

type syncCmd struct {
	dryRun  bool
	since   string
	maxWait time.Duration
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "import the new Trading 212 activity into the ledger" }
func (*syncCmd) Usage() string {
	return `t212sync sync [-dry-run] [-since <date>] [-max-wait <duration>]

  Fetches the account activity since the last successful sync and imports it into
  the ledger. The first sync fetches the whole history, one year at a time.

  Trading 212 generates exports asynchronously: each one takes from a few seconds
  to several minutes. The sync is interrupted safely with Ctrl-C, the next one
  fetches the same range again.

Usage Examples:
# Preview the transactions, without touching the ledger nor the configuration.
$ t212sync sync -dry-run > preview.jsonl

# Fetch again everything since the 1st of March.
$ t212sync sync -since 2025-03-01
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "dry-run", false, "Write the transactions as JSONL on the standard output instead of importing them.")
	f.StringVar(&c.since, "since", "", "Fetch since this date (YYYY-MM-DD) or time (RFC 3339) instead of the last sync.")
	f.DurationVar(&c.maxWait, "max-wait", history.DefaultMaxWait, "How long to wait for a single export. 0 waits forever.")
}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fetcher := history.New(newClient(cfg))
	fetcher.MaxWait = c.maxWait
	now := time.Now()

	var sink ledger.Sink = ledger.NewSQLite()
	if c.dryRun {
		sink = ledger.JSONL{W: os.Stdout}
	}

	var rep importer.Report
	if c.since == "" && !c.dryRun {
		rep, err = importer.Run(ctx, store(), fetcher, sink, now)
	} else {
		if c.since != "" {
			since, err := parseSince(c.since)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing -since: %v\n", err)
				return subcommands.ExitUsageError
			}
			cfg = cfg.WithWatermark(since)
		}
		rep, err = c.syncOnce(ctx, cfg, fetcher, sink, now)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	rep.DryRun = c.dryRun
	if c.dryRun {
		// the standard output holds the transactions.
		fprintMarkdown(os.Stderr, renderer.Summary(rep))
	} else {
		printMarkdown(renderer.Summary(rep))
	}
	return subcommands.ExitSuccess
}

// syncOnce syncs from the watermark of cfg, and saves the moved watermark unless it
// is a dry run.
func (c *syncCmd) syncOnce(ctx context.Context, cfg config.Config, fetcher importer.Fetcher, sink ledger.Sink, now time.Time) (importer.Report, error) {
	updated, rep, err := importer.Sync(ctx, cfg, fetcher, sink, now)
	if err != nil || c.dryRun {
		return rep, err
	}
	wm, _ := updated.Watermark()
	return rep, store().SaveWatermark(wm)
}

// parseSince parses a day, taken at midnight UTC, or an RFC 3339 time.
func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

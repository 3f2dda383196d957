package cmd

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/t212sync/renderer"
	"github.com/etnz/t212sync/t212"
	"github.com/google/subcommands"
)

type exportsCmd struct {
	limit int
}

func (*exportsCmd) Name() string     { return "exports" }
func (*exportsCmd) Synopsis() string { return "list the export reports known by Trading 212" }
func (*exportsCmd) Usage() string {
	return `t212sync exports [-n <count>]

  Lists the most recent export reports, with their status and download link.
`
}

func (c *exportsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 10, "Maximum number of reports to list, 0 for all.")
}

func (c *exportsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	jobs, err := newClient(cfg).ListExports(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing exports: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Exports(latest(jobs, c.limit)))
	return subcommands.ExitSuccess
}

// latest returns the n most recent jobs, most recent first.
func latest(jobs []t212.ExportJob, n int) []t212.ExportJob {
	jobs = slices.Clone(jobs)
	slices.SortFunc(jobs, func(a, b t212.ExportJob) int { return cmp.Compare(b.ReportID, a.ReportID) })
	if n > 0 && len(jobs) > n {
		jobs = jobs[:n]
	}
	return jobs
}

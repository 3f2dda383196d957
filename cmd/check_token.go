package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/t212sync"
	"github.com/etnz/t212sync/config"
	"github.com/google/subcommands"
)

type checkTokenCmd struct{}

func (*checkTokenCmd) Name() string     { return "check-token" }
func (*checkTokenCmd) Synopsis() string { return "check that the Trading 212 API token is accepted" }
func (*checkTokenCmd) Usage() string {
	return `t212sync check-token

  Reads the account information with the configured token (or ` + config.EnvToken + `).
`
}

func (*checkTokenCmd) SetFlags(f *flag.FlagSet) {}

func (*checkTokenCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	acc, err := newClient(cfg).AccountInfo(ctx)
	if errors.Is(err, t212sync.ErrAuth) {
		fmt.Fprintln(os.Stderr, "The token is rejected by Trading 212, create a new one or run 'init -force'.")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Token valid for account %d (%s)\n", acc.ID, acc.Currency)
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/t212sync/config"
	"github.com/etnz/t212sync/t212"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type initCmd struct {
	force bool
	demo  bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the configuration file interactively" }
func (*initCmd) Usage() string {
	return `t212sync init [-force] [-demo]

  Asks for the ledger data directory, server URL and password, the ledger account
  and budget to import into, and the Trading 212 API token. The token is checked
  against the broker and asked again until it is accepted.

  The configuration is saved in the file given by the global -config flag, readable
  by its owner only.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Overwrite an existing configuration file.")
	f.BoolVar(&c.demo, "demo", false, "Use the practice account API instead of the live one.")
}

func (c *initCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s := store()
	if s.Exists() && !c.force {
		fmt.Fprintf(os.Stderr, "Configuration %q already exists, use -force to overwrite it\n", s.Path)
		return subcommands.ExitFailure
	}

	apiURL := t212.LiveURL
	if c.demo {
		apiURL = t212.DemoURL
	}
	var account t212.Account
	check := func(token string) error {
		acc, err := t212.New(token, t212.WithBaseURL(apiURL)).AccountInfo(ctx)
		if err != nil {
			return err
		}
		account = acc
		return nil
	}

	cfg, err := config.Prompt(os.Stdin, os.Stdout, check)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg.Currency = account.Currency
	if c.demo {
		cfg.APIURL = apiURL
	}

	if err := s.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	zerolog.Ctx(ctx).Info().Int64("broker_account", account.ID).Str("path", s.Path).Msg("configuration saved")
	return subcommands.ExitSuccess
}

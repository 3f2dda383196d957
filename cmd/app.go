// Package cmd implements the CLI application to synchronize a Trading 212 account
// into a ledger.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/t212sync/config"
	"github.com/etnz/t212sync/logger"
	"github.com/etnz/t212sync/t212"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&initCmd{}, "setup")
	c.Register(&checkTokenCmd{}, "setup")

	c.Register(&syncCmd{}, "sync")
	c.Register(&exportsCmd{}, "sync")
	c.Register(&normalizeCmd{}, "sync")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "config.json", "Path to the configuration file")

// Verbose enables debug logs, including every HTTP request.
var Verbose = flag.Bool("v", false, "Verbose logging")

// WithLogger returns ctx with the application logger attached. It must be called
// after the flags are parsed.
func WithLogger(ctx context.Context) context.Context {
	return logger.WithContext(ctx, logger.New(os.Stderr, *Verbose))
}

// store returns the configuration file selected by the -config flag.
func store() config.Store { return config.Store{Path: *configFile} }

// loadConfig loads the configuration, with a hint to run init when it is missing.
func loadConfig() (config.Config, error) {
	cfg, err := store().Load()
	if errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("%w, run 'init' to create it", err)
	}
	return cfg, err
}

// newClient returns a broker client for cfg.
func newClient(cfg config.Config) *t212.Client {
	var opts []t212.Option
	if cfg.APIURL != "" {
		opts = append(opts, t212.WithBaseURL(cfg.APIURL))
	}
	return t212.New(cfg.Token, opts...)
}

// printMarkdown renders md on the standard output.
func printMarkdown(md string) { fprintMarkdown(os.Stdout, md) }

// fprintMarkdown renders md for the terminal, or prints it raw if it cannot.
func fprintMarkdown(w io.Writer, md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	fmt.Fprint(w, out)
}

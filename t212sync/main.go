package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/etnz/t212sync/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	cmd.Completion().Complete("t212sync")

	// a missing .env file is fine, the environment and the config file are enough.
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = cmd.WithLogger(ctx)

	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

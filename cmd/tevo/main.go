package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fivetwenty-io/tevo/cmd/tevo/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := commands.NewRootCommand(version, commit, date).ExecuteContext(ctx)
	if err != nil {
		commands.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

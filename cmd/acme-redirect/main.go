package main

import (
	"context"
	"flag"
	"github.com/1f349/acme-redirect/logger"
	"github.com/charmbracelet/log"
	"github.com/google/subcommands"
	"os"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&daemonCmd{}, "")
	subcommands.Register(&statusCmd{}, "")
	subcommands.Register(&checkCmd{}, "")

	inv, err := registerInvocationFlags(flag.CommandLine)
	if err != nil {
		logger.Logger.Fatal("Invalid environment", "err", err)
	}
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		logger.Logger.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx, inv)))
}

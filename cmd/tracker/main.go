package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&addCmd{}, "positions")
	commander.Register(&deleteCmd{}, "positions")
	commander.Register(&listCmd{}, "positions")

	commander.Register(&viewCmd{}, "valuation")
	commander.Register(&summaryCmd{}, "valuation")
	commander.Register(&reportCmd{}, "valuation")
	commander.Register(&refreshCmd{}, "valuation")

	commander.Register(&importCmd{}, "interchange")
	commander.Register(&exportCmd{}, "interchange")

	commander.Register(&tuiCmd{}, "dashboards")
	commander.Register(&serveCmd{}, "dashboards")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// Command atm is a local automated teller: it opens accounts protected by a
// PIN, and deposits or withdraws cash, saving every change to a local store.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/teller/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.Complete("atm")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if flag.NArg() == 0 {
		os.Exit(int(cmd.RunSession()))
	}
	os.Exit(int(commander.Execute(context.Background())))
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type sessionCmd struct{}

func (*sessionCmd) Name() string     { return "session" }
func (*sessionCmd) Synopsis() string { return "start the interactive teller terminal" }
func (*sessionCmd) Usage() string {
	return `atm session

  Starts the interactive terminal: log in to an account or create one, then
  check the balance, deposit or withdraw. Every change is saved immediately.
  This is also what atm does when run without a subcommand.
`
}

func (c *sessionCmd) SetFlags(f *flag.FlagSet) {}

func (c *sessionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return RunSession()
}

// RunSession runs the interactive terminal on stdin and stdout.
func RunSession() subcommands.ExitStatus {
	cur, err := displayCurrency()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	store, release, status := openStoreOrFail()
	if status != subcommands.ExitSuccess {
		return status
	}
	defer release()

	a := &atm{store: store, term: newTerminal(os.Stdin, os.Stdout), currency: cur}
	if err := a.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
)

type migrateCmd struct {
	to        string
	toBackend string
	force     bool
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "copy the account store into another store" }
func (*migrateCmd) Usage() string {
	return `atm migrate -to <path> [-to-backend json|sqlite] [-f]

  Copies every account of the current store (see -store and -backend) into
  another store. The target backend is inferred from its extension unless
  -to-backend is set. An existing target is left untouched unless -f is set.

  Example:
    atm -store accounts.json migrate -to accounts.db
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "Path to the target store")
	f.StringVar(&c.toBackend, "to-backend", "", "Target backend (json or sqlite), inferred from the target extension by default")
	f.BoolVar(&c.force, "f", false, "Overwrite the target store if it exists")
}

func (c *migrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.to == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if same(c.to, *storePath) {
		fmt.Fprintln(os.Stderr, "Error: the target store is the current store.")
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(c.to); err == nil && !c.force {
		fmt.Fprintf(os.Stderr, "Error: %q already exists, use -f to overwrite it.\n", c.to)
		return subcommands.ExitFailure
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	store, release, status := openStoreOrFail()
	if status != subcommands.ExitSuccess {
		return status
	}
	defer release()

	dst, closeDst, err := OpenBackend(c.to, c.toBackend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open target store %q: %v\n", c.to, err)
		return subcommands.ExitFailure
	}
	defer closeDst()

	if err := store.SaveTo(dst); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write target store %q: %v\n", c.to, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d accounts copied to %s.\n", store.Len(), c.to)
	return subcommands.ExitSuccess
}

// same reports whether a and b name the same file.
func same(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

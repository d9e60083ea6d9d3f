package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"maps"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/teller"
	"github.com/google/subcommands"
)

type inspectCmd struct {
	showPINs bool
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "query the account store with a JSONPath expression" }
func (*inspectCmd) Usage() string {
	return `atm inspect [-show-pins] [<jsonpath>]

  Evaluates a JSONPath expression against the account store, as it is laid
  out in the JSON file, and prints the result. The default expression is "$".

  Examples:
    atm inspect '$["1001"].balance'
    atm inspect '$..balance'

  PINs are masked unless -show-pins is set.
`
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.showPINs, "show-pins", false, "Print PINs in clear")
}

func (c *inspectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	path := "$"
	if f.NArg() == 1 {
		path = f.Arg(0)
	}

	backend, release, err := OpenBackend(*storePath, *backendName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open account store %q: %v\n", *storePath, err)
		return subcommands.ExitFailure
	}
	defer release()
	records, err := backend.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot load account store %q: %v\n", *storePath, err)
		return subcommands.ExitFailure
	}

	result, err := Inspect(records, path, c.showPINs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(result))
	return subcommands.ExitSuccess
}

// Inspect evaluates the JSONPath expression path against the JSON document of
// records, and returns the result as indented JSON.
func Inspect(records map[string]teller.Record, path string, showPINs bool) ([]byte, error) {
	if !showPINs {
		records = maps.Clone(records)
		for id, r := range records {
			r.PIN = "****"
			records[id] = r
		}
	}
	var buf bytes.Buffer
	if err := teller.EncodeAccounts(&buf, records); err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		return nil, err
	}

	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", path, err)
	}
	return json.MarshalIndent(val, "", "  ")
}

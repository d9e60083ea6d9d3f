// Package cmd implements the atm command-line terminal.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/teller"
	"github.com/etnz/teller/logging"
	"github.com/etnz/teller/sqlite"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

const (
	EnvStore    = "ATM_STORE"
	EnvBackend  = "ATM_BACKEND"
	EnvCurrency = "ATM_CURRENCY"
	EnvVerbose  = "ATM_VERBOSE"
	EnvLogLevel = "ATM_LOG_LEVEL"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storePath = flag.String("store", envOr(EnvStore, "accounts.json"), "Path to the account store file")
var backendName = flag.String("backend", os.Getenv(EnvBackend), "Store backend (json or sqlite), inferred from the store file extension by default")
var currency = flag.String("currency", envOr(EnvCurrency, "USD"), "ISO 4217 currency used to display amounts")

// Verbose enables debug logs on stderr.
var Verbose = flag.Bool("v", envBool(EnvVerbose), "Verbose logging on stderr")

// Commands lists every atm subcommand by group.
var Commands = map[string][]subcommands.Command{
	"terminal": {&sessionCmd{}},
	"accounts": {&createCmd{}, &balanceCmd{}, &depositCmd{}, &withdrawCmd{}, &transferCmd{}},
	"store":    {&inspectCmd{}, &migrateCmd{}},
	"help":     {&topicCmd{}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

// Logger returns the logger configured by the -v flag and the ATM_LOG_LEVEL
// variable. An invalid configuration is reported and falls back to a silent
// logger.
func Logger() *zap.Logger {
	config := logging.DefaultConfig()
	if *Verbose {
		config = logging.VerboseConfig()
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Level = level
	}
	logger, err := logging.NewLogger(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid logging configuration: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// BackendFor returns the backend name to use for path: name itself when set,
// otherwise "sqlite" for database file extensions and "json" for anything else.
func BackendFor(path, name string) (string, error) {
	switch strings.ToLower(name) {
	case "json", "sqlite":
		return strings.ToLower(name), nil
	case "":
	default:
		return "", fmt.Errorf("unknown backend %q, want json or sqlite", name)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite", nil
	default:
		return "json", nil
	}
}

// OpenBackend opens the backend for path, and returns a function to release it.
func OpenBackend(path, name string) (teller.Backend, func() error, error) {
	name, err := BackendFor(path, name)
	if err != nil {
		return nil, nil, err
	}
	if name == "sqlite" {
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return teller.FileBackend{Path: path}, func() error { return nil }, nil
}

// OpenStore opens and loads the store selected by the global flags.
// The returned function releases the backend.
func OpenStore() (*teller.Store, func() error, error) {
	backend, release, err := OpenBackend(*storePath, *backendName)
	if err != nil {
		return nil, nil, err
	}
	store := teller.NewStore(backend, teller.WithLogger(Logger().Named("store")))
	if err := store.Load(); err != nil {
		release()
		return nil, nil, err
	}
	return store, release, nil
}

// displayCurrency returns the validated -currency flag.
func displayCurrency() (string, error) {
	return teller.ParseCurrency(*currency)
}

// openStoreOrFail opens the store and reports failures on stderr.
func openStoreOrFail() (*teller.Store, func() error, subcommands.ExitStatus) {
	store, release, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open account store %q: %v\n", *storePath, err)
		return nil, nil, subcommands.ExitFailure
	}
	return store, release, subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/teller"
	"github.com/etnz/teller/sqlite"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useStore points the global -store and -backend flags to path for the test.
func useStore(t *testing.T, path string) {
	t.Helper()
	oldPath, oldBackend := *storePath, *backendName
	*storePath, *backendName = path, ""
	t.Cleanup(func() { *storePath, *backendName = oldPath, oldBackend })
}

// execute runs c with args the way the commander does.
func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return c.Execute(context.Background(), f)
}

func balanceOf(t *testing.T, b teller.Backend, id string) decimal.Decimal {
	t.Helper()
	records, err := b.Load()
	require.NoError(t, err)
	require.Contains(t, records, id)
	return records[id].Balance
}

func TestBackendFor(t *testing.T) {
	tests := []struct {
		path, name string
		want       string
		wantErr    bool
	}{
		{path: "accounts.json", want: "json"},
		{path: "accounts", want: "json"},
		{path: "accounts.db", want: "sqlite"},
		{path: "bank.SQLITE", want: "sqlite"},
		{path: "bank.sqlite3", want: "sqlite"},
		{path: "accounts.db", name: "json", want: "json"},
		{path: "accounts.json", name: "SQLite", want: "sqlite"},
		{path: "accounts.json", name: "csv", wantErr: true},
	}
	for _, tc := range tests {
		got, err := BackendFor(tc.path, tc.name)
		if tc.wantErr {
			assert.Error(t, err, tc.path)
			continue
		}
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got, "BackendFor(%q, %q)", tc.path, tc.name)
	}
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()

	b, release, err := OpenBackend(filepath.Join(dir, "accounts.json"), "")
	require.NoError(t, err)
	assert.IsType(t, teller.FileBackend{}, b)
	assert.NoError(t, release())

	b, release, err = OpenBackend(filepath.Join(dir, "accounts.db"), "")
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Backend{}, b)
	assert.NoError(t, release())

	_, _, err = OpenBackend(filepath.Join(dir, "accounts.json"), "csv")
	assert.Error(t, err)
}

func TestOpenStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1001": {"pin": "4321"}}`), 0o644))
	useStore(t, path)

	_, _, err := OpenStore()
	assert.ErrorIs(t, err, teller.ErrCorruptStore)
	assert.Equal(t, subcommands.ExitFailure, execute(t, &balanceCmd{}, "-a", "1001", "-pin", "4321"))
}

func TestAccountCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	useStore(t, path)
	backend := teller.FileBackend{Path: path}

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &createCmd{}, "-a", "1001", "-pin", "4321"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &createCmd{}, "-a", "1001", "-pin", "0000"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &createCmd{}, "-pin", "0000"))

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &depositCmd{}, "-a", "1001", "-pin", "4321", "-amount", "300,5"))
	assert.True(t, decimal.RequireFromString("300.5").Equal(balanceOf(t, backend, "1001")))

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &withdrawCmd{}, "-a", "1001", "-pin", "4321", "-amount", "50.5"))
	assert.True(t, decimal.NewFromInt(250).Equal(balanceOf(t, backend, "1001")))

	// refused operations leave the balance unchanged
	assert.Equal(t, subcommands.ExitFailure, execute(t, &withdrawCmd{}, "-a", "1001", "-pin", "4321", "-amount", "1000"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &depositCmd{}, "-a", "1001", "-pin", "0000", "-amount", "10"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &balanceCmd{}, "-a", "1002", "-pin", "4321"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &depositCmd{}, "-a", "1001", "-pin", "4321", "-amount", "0"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &withdrawCmd{}, "-a", "1001", "-pin", "4321", "-amount", "-1"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &withdrawCmd{}, "-a", "1001", "-pin", "4321"))
	assert.True(t, decimal.NewFromInt(250).Equal(balanceOf(t, backend, "1001")))

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &balanceCmd{}, "-a", "1001", "-pin", "4321"))
}

func TestTransferCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	useStore(t, path)
	backend := teller.FileBackend{Path: path}

	require.Equal(t, subcommands.ExitSuccess, execute(t, &createCmd{}, "-a", "1001", "-pin", "4321"))
	require.Equal(t, subcommands.ExitSuccess, execute(t, &createCmd{}, "-a", "1002", "-pin", "0000"))
	require.Equal(t, subcommands.ExitSuccess, execute(t, &depositCmd{}, "-a", "1001", "-pin", "4321", "-amount", "100"))

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &transferCmd{}, "-a", "1001", "-pin", "4321", "-to", "1002", "-amount", "40"))

	// refused transfers leave both balances unchanged
	assert.Equal(t, subcommands.ExitFailure, execute(t, &transferCmd{}, "-a", "1001", "-pin", "4321", "-to", "1002", "-amount", "1000"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &transferCmd{}, "-a", "1001", "-pin", "4321", "-to", "9999", "-amount", "1"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &transferCmd{}, "-a", "1001", "-pin", "0000", "-to", "1002", "-amount", "1"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &transferCmd{}, "-a", "1001", "-pin", "4321", "-to", "1001", "-amount", "1"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &transferCmd{}, "-a", "1001", "-pin", "4321", "-amount", "1"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &transferCmd{}, "-a", "1001", "-pin", "4321", "-to", "1002", "-amount", "0"))

	assert.True(t, decimal.NewFromInt(60).Equal(balanceOf(t, backend, "1001")))
	assert.True(t, decimal.NewFromInt(40).Equal(balanceOf(t, backend, "1002")))
}

func TestMigrateCmd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "accounts.json")
	dst := filepath.Join(dir, "accounts.db")
	useStore(t, src)

	require.Equal(t, subcommands.ExitSuccess, execute(t, &createCmd{}, "-a", "1001", "-pin", "4321"))
	require.Equal(t, subcommands.ExitSuccess, execute(t, &depositCmd{}, "-a", "1001", "-pin", "4321", "-amount", "250"))

	assert.Equal(t, subcommands.ExitUsageError, execute(t, &migrateCmd{}))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &migrateCmd{}, "-to", src))
	require.Equal(t, subcommands.ExitSuccess, execute(t, &migrateCmd{}, "-to", dst))
	// the target exists now
	assert.Equal(t, subcommands.ExitFailure, execute(t, &migrateCmd{}, "-to", dst))
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &migrateCmd{}, "-to", dst, "-f"))

	db, err := sqlite.Open(dst)
	require.NoError(t, err)
	defer db.Close()
	assert.True(t, decimal.NewFromInt(250).Equal(balanceOf(t, db, "1001")))

	// and back into a JSON file with an explicit backend
	useStore(t, dst)
	back := filepath.Join(dir, "copy.data")
	require.Equal(t, subcommands.ExitSuccess, execute(t, &migrateCmd{}, "-to", back, "-to-backend", "json"))
	assert.True(t, decimal.NewFromInt(250).Equal(balanceOf(t, teller.FileBackend{Path: back}, "1001")))
}

func TestInspect(t *testing.T) {
	records := map[string]teller.Record{
		"1001": {PIN: "4321", Balance: decimal.RequireFromString("250.5")},
		"1002": {PIN: "0000", Balance: decimal.Zero},
	}

	got, err := Inspect(records, `$["1001"].balance`, false)
	require.NoError(t, err)
	assert.Equal(t, "250.5", string(got))

	got, err = Inspect(records, `$["1001"].pin`, false)
	require.NoError(t, err)
	assert.Equal(t, `"****"`, string(got))
	assert.Equal(t, "4321", records["1001"].PIN, "the records must not be modified")

	got, err = Inspect(records, `$["1001"].pin`, true)
	require.NoError(t, err)
	assert.Equal(t, `"4321"`, string(got))

	_, err = Inspect(records, `$[`, false)
	assert.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	c := CompletionCommand()

	assert.Contains(t, c.Flags, "store")
	assert.Contains(t, c.Flags, "backend")
	for _, name := range []string{"session", "create", "balance", "deposit", "withdraw", "transfer", "inspect", "migrate", "topic", "help"} {
		assert.Contains(t, c.Sub, name)
	}
	assert.Contains(t, c.Sub["deposit"].Flags, "a")
	assert.Contains(t, c.Sub["deposit"].Flags, "amount")
	assert.Contains(t, c.Sub["migrate"].Flags, "to")
	assert.Contains(t, c.Sub["transfer"].Flags, "to")
	assert.ElementsMatch(t, []string{"json", "sqlite"}, c.Sub["migrate"].Flags["to-backend"].Predict(""))
	assert.Contains(t, c.Sub["topic"].Args.Predict(""), "storage")
}

func TestAccountIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	useStore(t, path)
	require.NoError(t, teller.FileBackend{Path: path}.Save(map[string]teller.Record{
		"1001": {PIN: "4321"},
		"1002": {PIN: "0000"},
		"2001": {PIN: "1111"},
	}))

	assert.ElementsMatch(t, []string{"1001", "1002"}, accountIDs("10"))
	assert.Empty(t, accountIDs("3"))
}

func TestRenderMarkdown(t *testing.T) {
	md := "# Title\n\nSome *text*.\n"
	assert.Equal(t, md, renderMarkdown(md, false))
	assert.Contains(t, renderMarkdown(md, true), "Title")
}

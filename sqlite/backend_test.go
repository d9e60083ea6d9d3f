package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/teller"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.db")
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, path
}

func TestBackend_EmptyDatabase(t *testing.T) {
	b, _ := openTestBackend(t)

	records, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBackend_StoreRoundTrip(t *testing.T) {
	b, path := openTestBackend(t)

	s := teller.NewStore(b)
	require.NoError(t, s.Load())
	a, err := s.Create("1001", "4321")
	require.NoError(t, err)
	require.NoError(t, s.Deposit(a, decimal.RequireFromString("250.10")))
	_, err = s.Create("1002", "0000")
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	fresh := teller.NewStore(reopened)
	require.NoError(t, fresh.Load())
	assert.Equal(t, 2, fresh.Len())

	got, err := fresh.Authenticate("1001", "4321")
	require.NoError(t, err)
	assert.True(t, got.Balance().Equal(decimal.RequireFromString("250.1")), "balance = %s", got.Balance())

	got, err = fresh.Authenticate("1002", "0000")
	require.NoError(t, err)
	assert.True(t, got.Balance().IsZero())
}

func TestBackend_SaveRewritesEverything(t *testing.T) {
	b, _ := openTestBackend(t)

	require.NoError(t, b.Save(map[string]teller.Record{
		"1001": {PIN: "1", Balance: decimal.NewFromInt(1)},
		"1002": {PIN: "2", Balance: decimal.NewFromInt(2)},
	}))
	require.NoError(t, b.Save(map[string]teller.Record{
		"1002": {PIN: "2", Balance: decimal.NewFromInt(20)},
	}))

	records, err := b.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records["1002"].Balance.Equal(decimal.NewFromInt(20)))
}

func TestBackend_ManyAccounts(t *testing.T) {
	b, _ := openTestBackend(t)

	records := make(map[string]teller.Record)
	for i := range 3*rowsPerInsert + 7 {
		records[fmt.Sprintf("%06d", i)] = teller.Record{PIN: "0000", Balance: decimal.NewFromInt(int64(i))}
	}
	require.NoError(t, b.Save(records))

	loaded, err := b.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, len(records))
}

func TestBackend_CorruptBalance(t *testing.T) {
	b, _ := openTestBackend(t)
	_, err := b.db.Exec(`INSERT INTO accounts (id, pin, balance) VALUES ('1001', '4321', 'lots')`)
	require.NoError(t, err)

	_, err = b.Load()
	assert.ErrorIs(t, err, teller.ErrCorruptStore)
}

func TestOpen_NotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.db")
	content := `{"1001": {"pin": "4321", "balance": 250}}` + strings.Repeat(" ", 1024)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := Open(path)
	assert.ErrorIs(t, err, teller.ErrCorruptStore)
}

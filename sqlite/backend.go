// Package sqlite persists a teller.Store in a local SQLite database file.
//
// The database holds a single table:
//
//	accounts(id TEXT PRIMARY KEY, pin TEXT NOT NULL, balance TEXT NOT NULL)
//
// Balances are stored as decimal text so that no precision is lost. Like the
// JSON file, the table is rewritten in full on every save.
package sqlite

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/etnz/teller"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const table = "accounts"

const schema = `CREATE TABLE IF NOT EXISTS accounts (
	id      TEXT PRIMARY KEY,
	pin     TEXT NOT NULL,
	balance TEXT NOT NULL
)`

// rowsPerInsert keeps each INSERT well below SQLite's host parameter limit.
const rowsPerInsert = 250

// row is an account as stored in the accounts table.
type row struct {
	ID      string `db:"id"`
	PIN     string `db:"pin"`
	Balance string `db:"balance"`
}

// Backend is a teller.Backend on a SQLite database.
type Backend struct {
	path string
	db   *sqlx.DB
}

// Open opens, or creates, the database at path.
func Open(path string) (*Backend, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("could not open account database %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, wrap(path, err)
	}
	return &Backend{path: path, db: db}, nil
}

// Close closes the database.
func (b *Backend) Close() error { return b.db.Close() }

// Load reads every account. A new database has none.
func (b *Backend) Load() (map[string]teller.Record, error) {
	query, args, err := sq.Select("id", "pin", "balance").From(table).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []row
	if err := b.db.Select(&rows, query, args...); err != nil {
		return nil, wrap(b.path, err)
	}

	records := make(map[string]teller.Record, len(rows))
	for _, r := range rows {
		balance, err := decimal.NewFromString(r.Balance)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: account %q: %w", teller.ErrCorruptStore, b.path, r.ID, err)
		}
		records[r.ID] = teller.Record{PIN: r.PIN, Balance: balance}
	}
	return records, nil
}

// Save replaces the content of the accounts table with records, in a single
// transaction.
func (b *Backend) Save(records map[string]teller.Record) error {
	tx, err := b.db.Beginx()
	if err != nil {
		return wrap(b.path, err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	query, args, err := sq.Delete(table).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return wrap(b.path, err)
	}

	ids := slices.Sorted(maps.Keys(records))
	for chunk := range slices.Chunk(ids, rowsPerInsert) {
		insert := sq.Insert(table).Columns("id", "pin", "balance")
		for _, id := range chunk {
			r := records[id]
			insert = insert.Values(id, r.PIN, r.Balance.String())
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return wrap(b.path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap(b.path, err)
	}
	return nil
}

// wrap adds the database path to err, and marks damaged database files as
// corrupt stores.
func wrap(path string, err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && (serr.Code == sqlite3.ErrNotADB || serr.Code == sqlite3.ErrCorrupt) {
		return fmt.Errorf("%w: %q: %w", teller.ErrCorruptStore, path, err)
	}
	return fmt.Errorf("account database %q: %w", path, err)
}

package teller

import (
	"maps"

	"github.com/shopspring/decimal"
)

// D is a helper for test to create an exact decimal from a const.
func D(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// memBackend is an in-memory Backend that counts saves and can be told to fail.
type memBackend struct {
	records map[string]Record
	saves   int
	loadErr error
	saveErr error
}

func (b *memBackend) Load() (map[string]Record, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return maps.Clone(b.records), nil
}

func (b *memBackend) Save(records map[string]Record) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves++
	b.records = maps.Clone(records)
	return nil
}

// newTestStore returns a loaded store on an empty memBackend.
func newTestStore() (*Store, *memBackend) {
	b := &memBackend{records: map[string]Record{}}
	s := NewStore(b)
	if err := s.Load(); err != nil {
		panic(err)
	}
	return s, b
}

package teller

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Backend is the durable storage of a Store.
type Backend interface {
	// Load returns every persisted record by account number. A backend that
	// has never been saved returns an empty map and no error.
	Load() (map[string]Record, error)
	// Save replaces the persisted content with records.
	Save(records map[string]Record) error
}

// FileBackend persists records in a JSON file (see EncodeAccounts).
type FileBackend struct {
	Path string
}

// Load decodes the file. A missing file is an empty store.
func (b FileBackend) Load() (map[string]Record, error) {
	f, err := os.Open(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Record), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open account file %q: %w", b.Path, err)
	}
	defer f.Close()

	records, err := DecodeAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode account file %q: %w", b.Path, err)
	}
	return records, nil
}

// Save rewrites the whole file.
//
// Content is written to a temporary file in the same directory first, then
// renamed over Path, so that a failed write never truncates the previous
// content.
func (b FileBackend) Save(records map[string]Record) error {
	dir, base := filepath.Split(b.Path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create account file %q: %w", b.Path, err)
	}
	tmp := f.Name()

	if err := EncodeAccounts(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("could not encode account file %q: %w", b.Path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not write account file %q: %w", b.Path, err)
	}
	if err := os.Rename(tmp, b.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace account file %q: %w", b.Path, err)
	}
	return nil
}

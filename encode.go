package teller

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The account file is a single JSON object mapping account numbers to
// records:
//
//	{
//	  "1001": {"pin": "4321", "balance": 250},
//	  "1002": {"pin": "0000", "balance": 0}
//	}
//
// Both "pin" and "balance" are required. Unknown fields are ignored. Files
// written by the first teller program name the balance "saldo": it is read as
// "balance" but never written.

// encodedRecord is a Record as written in the account file.
type encodedRecord Record

func (r encodedRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("pin", r.PIN)
	w.Append("balance", r.Balance)
	return w.MarshalJSON()
}

// decodedRecord is a Record as read from the account file, nil fields are missing ones.
type decodedRecord struct {
	PIN     *string          `json:"pin"`
	Balance *decimal.Decimal `json:"balance"`
	Saldo   *decimal.Decimal `json:"saldo"`
}

// EncodeAccounts writes records to w as an indented JSON document, account numbers sorted.
func EncodeAccounts(w io.Writer, records map[string]Record) error {
	doc := make(map[string]encodedRecord, len(records))
	for id, r := range records {
		doc[id] = encodedRecord(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// DecodeAccounts reads a JSON document of records from r.
//
// Any error it returns matches ErrCorruptStore.
func DecodeAccounts(r io.Reader) (map[string]Record, error) {
	var doc map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %w", ErrCorruptStore, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrCorruptStore)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after the JSON object", ErrCorruptStore)
	}

	records := make(map[string]Record, len(doc))
	for id, raw := range doc {
		var d decodedRecord
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("%w: account %q: %w", ErrCorruptStore, id, err)
		}
		if d.PIN == nil {
			return nil, fmt.Errorf("%w: account %q: missing the property %q", ErrCorruptStore, id, "pin")
		}
		if d.Balance == nil {
			d.Balance = d.Saldo
		}
		if d.Balance == nil {
			return nil, fmt.Errorf("%w: account %q: missing the property %q", ErrCorruptStore, id, "balance")
		}
		records[id] = Record{PIN: *d.PIN, Balance: *d.Balance}
	}
	return records, nil
}

// Package teller provides the core of a local, single-user automated teller
// terminal. It is designed to be local-first: every account lives in a single
// human-readable file owned by the running process.
//
// The core functionalities include:
//   - Accounts: a numbered record protected by a PIN, holding a non-negative
//     balance that only changes through deposits and withdrawals.
//   - Store: the in-memory mapping of account number to account, loaded once
//     from a Backend and rewritten in full after every mutation.
//   - Session: the log in / log out state machine a terminal drives, where
//     every mutating operation is persisted before it returns.
//   - Data Persistence: encoding and decoding of the account mapping to and
//     from a JSON document (see FileBackend), or any other Backend.
//
// This package serves as the foundational logic for the `atm` command-line
// tool.
package teller

package teller

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store maps account numbers to accounts.
//
// It is loaded once from its Backend and saved in full after every mutation.
// A Store is not safe for concurrent use: a terminal serves a single session
// at a time.
type Store struct {
	backend  Backend
	log      *zap.Logger
	accounts map[string]*Account
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns an empty store persisted by backend. Call Load to read
// the existing accounts.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		log:      zap.NewNop(),
		accounts: make(map[string]*Account),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the accounts in memory with the ones in the backend.
//
// Content that cannot be trusted, including a negative balance, fails with an
// error matching ErrCorruptStore and leaves the store unchanged.
func (s *Store) Load() error {
	records, err := s.backend.Load()
	if err != nil {
		return err
	}
	accounts := make(map[string]*Account, len(records))
	for id, r := range records {
		if err := r.validate(); err != nil {
			return fmt.Errorf("%w: account %q: %w", ErrCorruptStore, id, err)
		}
		accounts[id] = newAccount(id, r.PIN, r.Balance)
	}
	s.accounts = accounts
	if len(accounts) == 0 {
		s.log.Info("no accounts found, starting with an empty store")
		return nil
	}
	s.log.Debug("accounts loaded", zap.Int("count", len(accounts)))
	return nil
}

// Save writes every account to the backend.
func (s *Store) Save() error { return s.SaveTo(s.backend) }

// SaveTo writes every account to b, which need not be the store's backend.
func (s *Store) SaveTo(b Backend) error {
	records := make(map[string]Record, len(s.accounts))
	for id, a := range s.accounts {
		records[id] = a.Record()
	}
	if err := b.Save(records); err != nil {
		s.log.Error("accounts not saved", zap.Error(err))
		return err
	}
	s.log.Debug("accounts saved", zap.Int("count", len(records)))
	return nil
}

// Create opens a new account with a zero balance and saves the store.
func (s *Store) Create(id, pin string) (*Account, error) {
	if _, exists := s.accounts[id]; exists {
		return nil, fmt.Errorf("account %q: %w", id, ErrDuplicateAccount)
	}
	a := newAccount(id, pin, decimal.Zero)
	s.accounts[id] = a
	if err := s.Save(); err != nil {
		delete(s.accounts, id)
		return nil, err
	}
	s.log.Info("account created", zap.String("account", id))
	return a, nil
}

// Authenticate returns the account if pin matches its PIN.
//
// An unknown account and a wrong PIN fail with the same ErrAuthenticationFailed
// so that the error does not reveal which account numbers exist.
func (s *Store) Authenticate(id, pin string) (*Account, error) {
	a, ok := s.accounts[id]
	if !ok || a.pin != pin {
		s.log.Debug("authentication failed", zap.String("account", id))
		return nil, ErrAuthenticationFailed
	}
	return a, nil
}

// Deposit deposits amount into a and saves the store.
// If the save fails the deposit is reverted.
func (s *Store) Deposit(a *Account, amount decimal.Decimal) error {
	previous := a.balance
	if err := a.Deposit(amount); err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		a.balance = previous
		return err
	}
	return nil
}

// Withdraw withdraws amount from a and saves the store when it succeeds.
// If the save fails the withdrawal is reverted.
func (s *Store) Withdraw(a *Account, amount decimal.Decimal) (bool, error) {
	previous := a.balance
	ok, err := a.Withdraw(amount)
	if err != nil || !ok {
		return ok, err
	}
	if err := s.Save(); err != nil {
		a.balance = previous
		return false, err
	}
	return true, nil
}

// Transfer moves amount from the account from to the account numbered toID,
// and saves the store when it succeeds. Like Withdraw, it returns false when
// from does not cover amount. If the save fails both balances are restored.
func (s *Store) Transfer(from *Account, toID string, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, fmt.Errorf("transfer %s: %w", amount, ErrInvalidAmount)
	}
	to, ok := s.accounts[toID]
	if !ok {
		return false, fmt.Errorf("account %q: %w", toID, ErrUnknownAccount)
	}
	if to == from {
		return false, ErrSameAccount
	}

	fromBalance, toBalance := from.balance, to.balance
	if ok, err := from.Withdraw(amount); err != nil || !ok {
		return false, err
	}
	if err := to.Deposit(amount); err != nil {
		from.balance = fromBalance
		return false, err
	}
	if err := s.Save(); err != nil {
		from.balance, to.balance = fromBalance, toBalance
		return false, err
	}
	s.log.Info("transfer", zap.String("from", from.id), zap.String("to", to.id), zap.Stringer("amount", amount))
	return true, nil
}

// Len returns the number of accounts.
func (s *Store) Len() int { return len(s.accounts) }

// Accounts iterates over all accounts by account number.
func (s *Store) Accounts() iter.Seq[*Account] {
	return func(yield func(*Account) bool) {
		for _, id := range slices.Sorted(maps.Keys(s.accounts)) {
			if !yield(s.accounts[id]) {
				return
			}
		}
	}
}

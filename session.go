package teller

import "github.com/shopspring/decimal"

// Session is one log in to log out interaction with a single account.
//
// A new session is unauthenticated. Login moves it to the authenticated state
// where Balance, Deposit and Withdraw are available; Logout moves it back.
// There is no timeout.
type Session struct {
	store   *Store
	account *Account
}

// NewSession returns an unauthenticated session on s.
func (s *Store) NewSession() *Session {
	return &Session{store: s}
}

// Login authenticates against the store. On failure the session is left
// unauthenticated, even if it was logged in before.
func (s *Session) Login(id, pin string) error {
	a, err := s.store.Authenticate(id, pin)
	s.account = a
	return err
}

// Logout returns the session to the unauthenticated state.
func (s *Session) Logout() { s.account = nil }

// Authenticated reports whether an account is logged in.
func (s *Session) Authenticated() bool { return s.account != nil }

// Account returns the logged in account, or nil.
func (s *Session) Account() *Account { return s.account }

// Balance returns the balance of the logged in account.
func (s *Session) Balance() (decimal.Decimal, error) {
	if s.account == nil {
		return decimal.Zero, ErrNotAuthenticated
	}
	return s.account.Balance(), nil
}

// Deposit deposits amount into the logged in account and saves the store.
func (s *Session) Deposit(amount decimal.Decimal) error {
	if s.account == nil {
		return ErrNotAuthenticated
	}
	return s.store.Deposit(s.account, amount)
}

// Withdraw withdraws amount from the logged in account and saves the store.
// It returns false when funds are insufficient.
func (s *Session) Withdraw(amount decimal.Decimal) (bool, error) {
	if s.account == nil {
		return false, ErrNotAuthenticated
	}
	return s.store.Withdraw(s.account, amount)
}

// Transfer moves amount from the logged in account to the account numbered
// toID and saves the store. It returns false when funds are insufficient.
func (s *Session) Transfer(toID string, amount decimal.Decimal) (bool, error) {
	if s.account == nil {
		return false, ErrNotAuthenticated
	}
	return s.store.Transfer(s.account, toID, amount)
}

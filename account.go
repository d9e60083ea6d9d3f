package teller

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Account is a numbered account protected by a PIN.
//
// The balance is never negative: it only changes through Deposit, which
// always increases it, and Withdraw, which refuses to go below zero.
type Account struct {
	id      string
	pin     string
	balance decimal.Decimal
}

// newAccount returns an account with the given balance.
func newAccount(id, pin string, balance decimal.Decimal) *Account {
	return &Account{id: id, pin: pin, balance: balance}
}

// ID returns the account number.
func (a *Account) ID() string { return a.id }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal { return a.balance }

// Record returns the persisted form of the account.
func (a *Account) Record() Record { return Record{PIN: a.pin, Balance: a.balance} }

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("deposit %s: %w", amount, ErrInvalidAmount)
	}
	a.balance = a.balance.Add(amount)
	return nil
}

// Withdraw removes amount from the balance if the balance covers it.
//
// It returns false, leaving the balance unchanged, when funds are
// insufficient. That is an expected outcome, not an error: callers must check
// the result.
func (a *Account) Withdraw(amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, fmt.Errorf("withdraw %s: %w", amount, ErrInvalidAmount)
	}
	if amount.GreaterThan(a.balance) {
		return false, nil
	}
	a.balance = a.balance.Sub(amount)
	return true, nil
}

// Record is what a Backend persists for each account number.
type Record struct {
	PIN     string
	Balance decimal.Decimal
}

// validate checks the invariants a loaded record must hold.
func (r Record) validate() error {
	if r.Balance.IsNegative() {
		return fmt.Errorf("negative balance %s", r.Balance)
	}
	return nil
}

package teller

import "errors"

var (
	// ErrDuplicateAccount is returned when creating an account whose number is already taken.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrAuthenticationFailed is returned for an unknown account number and for a wrong PIN alike.
	ErrAuthenticationFailed = errors.New("invalid credentials")

	// ErrCorruptStore is returned when the persisted accounts cannot be trusted.
	ErrCorruptStore = errors.New("corrupt account store")

	// ErrInvalidAmount is returned for a deposit or withdrawal amount that is not strictly positive.
	ErrInvalidAmount = errors.New("amount must be > 0")

	// ErrUnknownAccount is returned when the destination of a transfer does not exist.
	ErrUnknownAccount = errors.New("no such account")

	// ErrSameAccount is returned for a transfer from an account to itself.
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrNotAuthenticated is returned by a Session operation when no account is logged in.
	ErrNotAuthenticated = errors.New("no account logged in")
)

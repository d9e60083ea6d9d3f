package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/teller"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// terminal reads operator input line by line.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // file descriptor of the input when it is a file, -1 otherwise
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &terminal{in: bufio.NewReader(in), out: out, fd: fd}
}

// ReadLine prints prompt and returns the next input line without its line ending.
func (t *terminal) ReadLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPIN prints prompt and reads a PIN without echo when the input is a
// terminal. Anywhere else, or if the terminal refuses, the PIN is read as a
// plain line.
func (t *terminal) ReadPIN(prompt string) (string, error) {
	if t.fd >= 0 && term.IsTerminal(t.fd) {
		fmt.Fprint(t.out, prompt)
		pin, err := term.ReadPassword(t.fd)
		fmt.Fprintln(t.out)
		if err == nil {
			return string(pin), nil
		}
		prompt = ""
	}
	return t.ReadLine(prompt)
}

// ReadAmount prompts for an amount until the input parses.
func (t *terminal) ReadAmount(prompt string) (decimal.Decimal, error) {
	for {
		line, err := t.ReadLine(prompt)
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := parseAmount(line)
		if err == nil {
			return amount, nil
		}
		fmt.Fprintln(t.out, "Invalid amount.")
	}
}

// parseAmount parses an operator amount. A comma is accepted as the decimal separator.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

// atm runs the interactive menus on a store.
type atm struct {
	store    *teller.Store
	term     *terminal
	currency string
}

// Run shows the main menu until the operator exits or the input ends.
func (a *atm) Run() error {
	for {
		fmt.Fprintln(a.term.out)
		fmt.Fprintln(a.term.out, "--- Automated Teller ---")
		fmt.Fprintln(a.term.out, "1. Log in")
		fmt.Fprintln(a.term.out, "2. Create account")
		fmt.Fprintln(a.term.out, "3. Exit")
		option, err := a.term.ReadLine("Select: ")
		if err != nil {
			return eofIsExit(err)
		}

		switch strings.TrimSpace(option) {
		case "1":
			err = a.login()
		case "2":
			err = a.create()
		case "3":
			fmt.Fprintln(a.term.out, "Thank you for using the teller.")
			return nil
		default:
			fmt.Fprintln(a.term.out, "Invalid option.")
		}
		if err != nil {
			return eofIsExit(err)
		}
	}
}

// login authenticates, then shows the account menu.
func (a *atm) login() error {
	id, err := a.term.ReadLine("Account number: ")
	if err != nil {
		return err
	}
	pin, err := a.term.ReadPIN("PIN: ")
	if err != nil {
		return err
	}
	session := a.store.NewSession()
	if err := session.Login(strings.TrimSpace(id), pin); err != nil {
		fmt.Fprintln(a.term.out, "Invalid credentials.")
		return nil
	}
	defer session.Logout()
	return a.accountMenu(session)
}

// create opens a new account.
func (a *atm) create() error {
	id, err := a.term.ReadLine("Account number: ")
	if err != nil {
		return err
	}
	pin, err := a.term.ReadPIN("PIN: ")
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		fmt.Fprintln(a.term.out, "The account number cannot be empty.")
		return nil
	}

	_, err = a.store.Create(id, pin)
	switch {
	case errors.Is(err, teller.ErrDuplicateAccount):
		fmt.Fprintln(a.term.out, "The account already exists.")
	case err != nil:
		fmt.Fprintf(a.term.out, "Error: the account could not be saved: %v\n", err)
	default:
		fmt.Fprintln(a.term.out, "Account created.")
	}
	return nil
}

// accountMenu serves an authenticated session until the operator leaves it.
func (a *atm) accountMenu(session *teller.Session) error {
	for {
		fmt.Fprintln(a.term.out)
		fmt.Fprintf(a.term.out, "--- Account %s ---\n", session.Account().ID())
		fmt.Fprintln(a.term.out, "1. Check balance")
		fmt.Fprintln(a.term.out, "2. Deposit")
		fmt.Fprintln(a.term.out, "3. Withdraw")
		fmt.Fprintln(a.term.out, "4. Transfer")
		fmt.Fprintln(a.term.out, "5. Exit")
		option, err := a.term.ReadLine("Select: ")
		if err != nil {
			return err
		}

		switch strings.TrimSpace(option) {
		case "1":
			balance, err := session.Balance()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.term.out, "Current balance: %s\n", teller.M(balance, a.currency))
		case "2":
			amount, err := a.term.ReadAmount("Amount to deposit: ")
			if err != nil {
				return err
			}
			a.report(session.Deposit(amount), "Deposit successful.")
		case "3":
			amount, err := a.term.ReadAmount("Amount to withdraw: ")
			if err != nil {
				return err
			}
			ok, err := session.Withdraw(amount)
			if err == nil && !ok {
				fmt.Fprintln(a.term.out, "Insufficient funds.")
				continue
			}
			a.report(err, "Withdrawal successful.")
		case "4":
			to, err := a.term.ReadLine("Destination account: ")
			if err != nil {
				return err
			}
			amount, err := a.term.ReadAmount("Amount to transfer: ")
			if err != nil {
				return err
			}
			ok, err := session.Transfer(strings.TrimSpace(to), amount)
			if err == nil && !ok {
				fmt.Fprintln(a.term.out, "Insufficient funds.")
				continue
			}
			a.report(err, "Transfer successful.")
		case "5":
			return nil
		default:
			fmt.Fprintln(a.term.out, "Invalid option.")
		}
	}
}

// report prints the outcome of a mutating operation.
func (a *atm) report(err error, success string) {
	switch {
	case errors.Is(err, teller.ErrInvalidAmount):
		fmt.Fprintln(a.term.out, "Invalid amount: it must be greater than zero.")
	case errors.Is(err, teller.ErrUnknownAccount):
		fmt.Fprintln(a.term.out, "The destination account does not exist.")
	case errors.Is(err, teller.ErrSameAccount):
		fmt.Fprintln(a.term.out, "Cannot transfer to the same account.")
	case err != nil:
		fmt.Fprintf(a.term.out, "Error: the operation was cancelled, accounts could not be saved: %v\n", err)
	default:
		fmt.Fprintln(a.term.out, success)
	}
}

// eofIsExit treats the end of the input as a normal exit.
func eofIsExit(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

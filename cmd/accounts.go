package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/teller"
	"github.com/google/subcommands"
)

// credentials are the flags shared by every account command.
type credentials struct {
	account string
	pin     string
}

func (c *credentials) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account number")
	f.StringVar(&c.pin, "pin", "", "Account PIN, prompted for when omitted")
}

// resolvePIN returns the -pin flag, or prompts for it.
func (c *credentials) resolvePIN() (string, error) {
	if c.pin != "" {
		return c.pin, nil
	}
	return newTerminal(os.Stdin, os.Stderr).ReadPIN("PIN: ")
}

// login opens the store and authenticates the account.
func (c *credentials) login(f *flag.FlagSet) (*teller.Session, func() error, subcommands.ExitStatus) {
	if c.account == "" {
		f.Usage()
		return nil, nil, subcommands.ExitUsageError
	}
	pin, err := c.resolvePIN()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading PIN: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}
	store, release, status := openStoreOrFail()
	if status != subcommands.ExitSuccess {
		return nil, nil, status
	}
	session := store.NewSession()
	if err := session.Login(c.account, pin); err != nil {
		release()
		fmt.Fprintln(os.Stderr, "Error: invalid credentials.")
		return nil, nil, subcommands.ExitFailure
	}
	return session, release, subcommands.ExitSuccess
}

// --- Create Command ---

type createCmd struct {
	credentials
}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "open a new account with a zero balance" }
func (*createCmd) Usage() string {
	return `atm create -a <account> [-pin <pin>]

  Opens a new account protected by a PIN. The account number must not exist yet.
`
}

func (c *createCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	pin, err := c.resolvePIN()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading PIN: %v\n", err)
		return subcommands.ExitFailure
	}
	store, release, status := openStoreOrFail()
	if status != subcommands.ExitSuccess {
		return status
	}
	defer release()

	if _, err := store.Create(c.account, pin); err != nil {
		if errors.Is(err, teller.ErrDuplicateAccount) {
			fmt.Fprintf(os.Stderr, "Error: account %s already exists.\n", c.account)
		} else {
			fmt.Fprintf(os.Stderr, "Error creating account %s: %v\n", c.account, err)
		}
		return subcommands.ExitFailure
	}
	fmt.Printf("Account %s created.\n", c.account)
	return subcommands.ExitSuccess
}

// --- Balance Command ---

type balanceCmd struct {
	credentials
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "print the balance of an account" }
func (*balanceCmd) Usage() string {
	return `atm balance -a <account> [-pin <pin>]

  Prints the current balance of the account.
`
}

func (c *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cur, err := displayCurrency()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	session, release, status := c.login(f)
	if status != subcommands.ExitSuccess {
		return status
	}
	defer release()

	balance, err := session.Balance()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Balance of account %s: %s\n", c.account, teller.M(balance, cur))
	return subcommands.ExitSuccess
}

// --- Deposit Command ---

type depositCmd struct {
	credentials
	amount string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "deposit cash into an account" }
func (*depositCmd) Usage() string {
	return `atm deposit -a <account> -amount <amount> [-pin <pin>]

  Deposits a strictly positive amount into the account.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.SetFlags(f)
	f.StringVar(&c.amount, "amount", "", "Amount of cash to deposit")
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseAmount(c.amount)
	if err != nil || !amount.IsPositive() {
		fmt.Fprintln(os.Stderr, "Error: -amount must be a number greater than zero.")
		return subcommands.ExitUsageError
	}
	cur, err := displayCurrency()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	session, release, status := c.login(f)
	if status != subcommands.ExitSuccess {
		return status
	}
	defer release()

	if err := session.Deposit(amount); err != nil {
		fmt.Fprintf(os.Stderr, "Error: deposit cancelled: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deposited %s. New balance: %s\n", teller.M(amount, cur), teller.M(session.Account().Balance(), cur))
	return subcommands.ExitSuccess
}

// --- Withdraw Command ---

type withdrawCmd struct {
	credentials
	amount string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "withdraw cash from an account" }
func (*withdrawCmd) Usage() string {
	return `atm withdraw -a <account> -amount <amount> [-pin <pin>]

  Withdraws a strictly positive amount from the account. The withdrawal is
  refused when the balance does not cover it.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.SetFlags(f)
	f.StringVar(&c.amount, "amount", "", "Amount of cash to withdraw")
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseAmount(c.amount)
	if err != nil || !amount.IsPositive() {
		fmt.Fprintln(os.Stderr, "Error: -amount must be a number greater than zero.")
		return subcommands.ExitUsageError
	}
	cur, err := displayCurrency()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	session, release, status := c.login(f)
	if status != subcommands.ExitSuccess {
		return status
	}
	defer release()

	ok, err := session.Withdraw(amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: withdrawal cancelled: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: insufficient funds, balance is %s.\n", teller.M(session.Account().Balance(), cur))
		return subcommands.ExitFailure
	}
	fmt.Printf("Withdrew %s. New balance: %s\n", teller.M(amount, cur), teller.M(session.Account().Balance(), cur))
	return subcommands.ExitSuccess
}

// --- Transfer Command ---

type transferCmd struct {
	credentials
	to     string
	amount string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "transfer cash to another account" }
func (*transferCmd) Usage() string {
	return `atm transfer -a <account> -to <account> -amount <amount> [-pin <pin>]

  Transfers a strictly positive amount from the account to another existing
  account. The transfer is refused when the balance does not cover it.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.SetFlags(f)
	f.StringVar(&c.to, "to", "", "Destination account number")
	f.StringVar(&c.amount, "amount", "", "Amount of cash to transfer")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.to == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount(c.amount)
	if err != nil || !amount.IsPositive() {
		fmt.Fprintln(os.Stderr, "Error: -amount must be a number greater than zero.")
		return subcommands.ExitUsageError
	}
	cur, err := displayCurrency()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	session, release, status := c.login(f)
	if status != subcommands.ExitSuccess {
		return status
	}
	defer release()

	ok, err := session.Transfer(c.to, amount)
	switch {
	case errors.Is(err, teller.ErrUnknownAccount):
		fmt.Fprintf(os.Stderr, "Error: account %s does not exist.\n", c.to)
		return subcommands.ExitFailure
	case errors.Is(err, teller.ErrSameAccount):
		fmt.Fprintln(os.Stderr, "Error: cannot transfer to the same account.")
		return subcommands.ExitUsageError
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: transfer cancelled: %v\n", err)
		return subcommands.ExitFailure
	case !ok:
		fmt.Fprintf(os.Stderr, "Error: insufficient funds, balance is %s.\n", teller.M(session.Account().Balance(), cur))
		return subcommands.ExitFailure
	}
	fmt.Printf("Transferred %s to account %s. New balance: %s\n", teller.M(amount, cur), c.to, teller.M(session.Account().Balance(), cur))
	return subcommands.ExitSuccess
}

// Package protocol defines the typed commands of the line-oriented client
// protocol and the parser that produces them.
package protocol

import "github.com/MarkoPoloResearchLab/bankd/pkg/bank"

// Command is one parsed client request. The set is closed; the actor
// exhaustively switches over it.
type Command interface {
	command()
}

// NewBank creates an empty bank and makes it current.
type NewBank struct{}

// ChangeBank selects an existing bank by its 1-based ordinal.
type ChangeBank struct {
	BankID uint64
}

// RestoreBank forks an existing bank by replaying its log.
type RestoreBank struct {
	BankID uint64
}

// WhichBank reports the current bank ordinal, creating bank #1 when none
// exists yet.
type WhichBank struct{}

// RegisterAccount creates an account with an opening balance.
type RegisterAccount struct {
	Balance uint64
}

// GetBalance reads an account balance.
type GetBalance struct {
	Account bank.AccountID
}

// Deposit credits an account.
type Deposit struct {
	Account bank.AccountID
	Amount  uint64
}

// Withdraw debits an account.
type Withdraw struct {
	Account bank.AccountID
	Amount  uint64
}

// Transfer moves funds between two accounts.
type Transfer struct {
	Sender   bank.AccountID
	Receiver bank.AccountID
	Amount   uint64
}

// ListAccountOperations lists the operations referencing an account.
type ListAccountOperations struct {
	Account bank.AccountID
}

// ListAllOperations lists the current bank's full log.
type ListAllOperations struct{}

// Quit ends the session. Handled by the session, never by the actor.
type Quit struct{}

// Help prints the command summary. Handled by the session, never by the actor.
type Help struct{}

func (NewBank) command()               {}
func (ChangeBank) command()            {}
func (RestoreBank) command()           {}
func (WhichBank) command()             {}
func (RegisterAccount) command()       {}
func (GetBalance) command()            {}
func (Deposit) command()               {}
func (Withdraw) command()              {}
func (Transfer) command()              {}
func (ListAccountOperations) command() {}
func (ListAllOperations) command()     {}
func (Quit) command()                  {}
func (Help) command()                  {}

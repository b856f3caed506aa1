package bank

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AccountID identifies an account. Identifiers are opaque: callers may
// compare and hash them but must not assume any ordering.
type AccountID struct {
	value uuid.UUID
}

// NewAccountID allocates a fresh random identifier.
func NewAccountID() AccountID {
	return AccountID{value: uuid.New()}
}

// ParseAccountID reads an identifier from its canonical text form.
func ParseAccountID(raw string) (AccountID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %v", ErrInvalidAccountID, err)
	}
	return AccountID{value: parsed}, nil
}

// String returns the canonical text form.
func (id AccountID) String() string {
	return id.value.String()
}

// IsZero reports whether the identifier is unset.
func (id AccountID) IsZero() bool {
	return id.value == uuid.Nil
}

// OperationID identifies a logged operation. It lives in its own namespace,
// distinct from account identifiers.
type OperationID struct {
	value uuid.UUID
}

// NewOperationID allocates a fresh random identifier.
func NewOperationID() OperationID {
	return OperationID{value: uuid.New()}
}

// ParseOperationID reads an identifier from its canonical text form.
func ParseOperationID(raw string) (OperationID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return OperationID{}, fmt.Errorf("%w: %v", ErrInvalidOperationID, err)
	}
	return OperationID{value: parsed}, nil
}

// String returns the canonical text form.
func (id OperationID) String() string {
	return id.value.String()
}

// IsZero reports whether the identifier is unset.
func (id OperationID) IsZero() bool {
	return id.value == uuid.Nil
}

// Account holds the current state of one registered account. The balance is
// never negative; it changes only through the bank's delta primitive.
type Account struct {
	ID      AccountID
	Balance uint64
}

// NewAccount builds an account with a fresh identifier and an opening balance.
func NewAccount(balance uint64) Account {
	return Account{ID: NewAccountID(), Balance: balance}
}

// OperationKind enumerates the closed set of loggable mutations.
type OperationKind string

const (
	OperationRegister OperationKind = "Register"
	OperationDeposit  OperationKind = "Deposit"
	OperationWithdraw OperationKind = "Withdraw"
	OperationTransfer OperationKind = "Transfer"
)

// Operation is one immutable line of the operations log.
//
// Account is the acted-on account, or the sender for transfers. Receiver is
// set only for transfers. Amount carries the opening balance for registers
// and the moved amount otherwise.
type Operation struct {
	ID       OperationID
	Kind     OperationKind
	Account  AccountID
	Receiver AccountID
	Amount   uint64
}

// Accounts lists every account the operation references, sender before
// receiver for transfers.
func (operation Operation) Accounts() []AccountID {
	if operation.Kind == OperationTransfer {
		return []AccountID{operation.Account, operation.Receiver}
	}
	return []AccountID{operation.Account}
}

// String renders the operation in the wire listing form,
// "<operation_id>: (<Kind> <args...>)".
func (operation Operation) String() string {
	if operation.Kind == OperationTransfer {
		return fmt.Sprintf("%s: (%s %s %s %d)", operation.ID, operation.Kind, operation.Account, operation.Receiver, operation.Amount)
	}
	return fmt.Sprintf("%s: (%s %s %d)", operation.ID, operation.Kind, operation.Account, operation.Amount)
}

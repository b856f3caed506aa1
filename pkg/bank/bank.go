// Package bank implements an in-memory double-entry-style ledger: an account
// registry plus an append-only operations log that can rebuild the ledger by
// replay. The package holds no locks; callers serialize access (the command
// actor is the single writer in this repository).
package bank

import (
	"fmt"
	"iter"
	"math"
)

// Bank composes the account registry with its operations log. Every accepted
// mutation is applied and logged atomically; a rejected mutation leaves both
// untouched.
type Bank struct {
	accounts map[AccountID]*Account
	log      *OperationsLog
}

// New builds an empty bank.
func New() *Bank {
	return &Bank{
		accounts: make(map[AccountID]*Account),
		log:      NewOperationsLog(),
	}
}

// RegisterAccount inserts the account and logs the registration. The account
// keeps the id and balance it arrives with.
func (bank *Bank) RegisterAccount(account Account) (OperationID, error) {
	if _, exists := bank.accounts[account.ID]; exists {
		return OperationID{}, ErrAlreadyExists
	}
	stored := account
	bank.accounts[account.ID] = &stored
	operationID := bank.log.Append(Operation{
		Kind:    OperationRegister,
		Account: account.ID,
		Amount:  account.Balance,
	})
	return operationID, nil
}

// Balance returns the current balance of the account.
func (bank *Bank) Balance(id AccountID) (uint64, error) {
	account, ok := bank.accounts[id]
	if !ok {
		return 0, ErrNotFound
	}
	return account.Balance, nil
}

// Operation returns the logged operation stored under id.
func (bank *Bank) Operation(id OperationID) (Operation, bool) {
	return bank.log.Get(id)
}

// applyDelta is the single arithmetic primitive behind deposits, withdrawals
// and both legs of a transfer. It commits only when the resulting balance
// stays within [0, MaxUint64].
func (bank *Bank) applyDelta(id AccountID, delta int64) error {
	if delta == 0 {
		return ErrZeroAmount
	}
	account, ok := bank.accounts[id]
	if !ok {
		return ErrNotFound
	}
	if delta < 0 {
		debit := uint64(-delta)
		if debit > account.Balance {
			return ErrInsufficientFunds
		}
		account.Balance -= debit
		return nil
	}
	credit := uint64(delta)
	if account.Balance > math.MaxUint64-credit {
		return ErrAmountOverflow
	}
	account.Balance += credit
	return nil
}

// signedAmount converts a wire amount into a delta, rejecting values the
// signed primitive cannot represent.
func signedAmount(amount uint64) (int64, error) {
	if amount > math.MaxInt64 {
		return 0, ErrAmountOverflow
	}
	return int64(amount), nil
}

// Deposit credits the account and logs the operation on success.
func (bank *Bank) Deposit(id AccountID, amount uint64) (OperationID, error) {
	delta, err := signedAmount(amount)
	if err != nil {
		return OperationID{}, err
	}
	if err := bank.applyDelta(id, delta); err != nil {
		return OperationID{}, err
	}
	operationID := bank.log.Append(Operation{
		Kind:    OperationDeposit,
		Account: id,
		Amount:  amount,
	})
	return operationID, nil
}

// Withdraw debits the account and logs the operation on success.
func (bank *Bank) Withdraw(id AccountID, amount uint64) (OperationID, error) {
	delta, err := signedAmount(amount)
	if err != nil {
		return OperationID{}, err
	}
	if err := bank.applyDelta(id, -delta); err != nil {
		return OperationID{}, err
	}
	operationID := bank.log.Append(Operation{
		Kind:    OperationWithdraw,
		Account: id,
		Amount:  amount,
	})
	return operationID, nil
}

// Transfer atomically moves amount from sender to receiver and logs one
// transfer operation. When the credit leg fails the debit is compensated
// before returning, so a failed transfer never moves funds.
func (bank *Bank) Transfer(sender AccountID, receiver AccountID, amount uint64) (OperationID, error) {
	if sender == receiver {
		return OperationID{}, ErrTransferToItself
	}
	delta, err := signedAmount(amount)
	if err != nil {
		return OperationID{}, err
	}
	if err := bank.applyDelta(sender, -delta); err != nil {
		return OperationID{}, err
	}
	if err := bank.applyDelta(receiver, delta); err != nil {
		// Undo the debit; it just succeeded, so the credit cannot overflow.
		bank.accounts[sender].Balance += amount
		return OperationID{}, err
	}
	operationID := bank.log.Append(Operation{
		Kind:     OperationTransfer,
		Account:  sender,
		Receiver: receiver,
		Amount:   amount,
	})
	return operationID, nil
}

// AllOperations yields every logged operation in insertion order.
func (bank *Bank) AllOperations() iter.Seq[Operation] {
	return bank.log.All()
}

// AccountOperations yields the operations referencing the account, in the
// order they occur in the global log.
func (bank *Bank) AccountOperations(id AccountID) iter.Seq[Operation] {
	return bank.log.ForAccount(id)
}

// Operations returns the number of logged operations.
func (bank *Bank) Operations() int {
	return bank.log.Len()
}

// Restore builds a fresh bank by replaying operations in order. Replay keeps
// the source account ids, balances and operation ids, so a restored bank is
// value-identical to its source. The first operation that would not have
// succeeded originally aborts the restore; this is how a corrupt or foreign
// log is detected.
func Restore(operations iter.Seq[Operation]) (*Bank, error) {
	restored := New()
	for operation := range operations {
		if err := restored.replay(operation); err != nil {
			return nil, fmt.Errorf("replay %s: %w", operation.ID, err)
		}
	}
	return restored, nil
}

func (bank *Bank) replay(operation Operation) error {
	switch operation.Kind {
	case OperationRegister:
		if _, exists := bank.accounts[operation.Account]; exists {
			return ErrAlreadyExists
		}
		bank.accounts[operation.Account] = &Account{ID: operation.Account, Balance: operation.Amount}
	case OperationDeposit:
		delta, err := signedAmount(operation.Amount)
		if err != nil {
			return err
		}
		if err := bank.applyDelta(operation.Account, delta); err != nil {
			return err
		}
	case OperationWithdraw:
		delta, err := signedAmount(operation.Amount)
		if err != nil {
			return err
		}
		if err := bank.applyDelta(operation.Account, -delta); err != nil {
			return err
		}
	case OperationTransfer:
		if operation.Account == operation.Receiver {
			return ErrTransferToItself
		}
		delta, err := signedAmount(operation.Amount)
		if err != nil {
			return err
		}
		if err := bank.applyDelta(operation.Account, -delta); err != nil {
			return err
		}
		if err := bank.applyDelta(operation.Receiver, delta); err != nil {
			bank.accounts[operation.Account].Balance += operation.Amount
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, operation.Kind)
	}
	bank.log.insert(operation)
	return nil
}

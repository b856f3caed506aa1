// Package repository manages the ordered collection of banks and tracks
// which one is current. It is owned exclusively by the command actor and is
// therefore lock-free.
package repository

import (
	"errors"
	"fmt"
	"iter"

	"github.com/MarkoPoloResearchLab/bankd/pkg/bank"
)

// ErrInvalidBankID reports a bank ordinal outside [1, number of banks].
var ErrInvalidBankID = errors.New("invalid bank id")

// Repository holds every bank ever created plus the current selector. Bank
// ordinals are 1-based externally; 0 means no bank exists yet.
type Repository struct {
	banks   []*bank.Bank
	current int
}

// New builds an empty repository.
func New() *Repository {
	return &Repository{}
}

// CurrentBankID returns the 1-based ordinal of the current bank, or 0 when
// the repository is empty.
func (repository *Repository) CurrentBankID() uint64 {
	if len(repository.banks) == 0 {
		return 0
	}
	return uint64(repository.current) + 1
}

// NewBank appends an empty bank, makes it current and returns its ordinal.
func (repository *Repository) NewBank() uint64 {
	repository.banks = append(repository.banks, bank.New())
	repository.current = len(repository.banks) - 1
	return uint64(len(repository.banks))
}

// ChangeBank selects an existing bank as current.
func (repository *Repository) ChangeBank(id uint64) error {
	if id < 1 || id > uint64(len(repository.banks)) {
		return ErrInvalidBankID
	}
	repository.current = int(id) - 1
	return nil
}

// RestoreBank forks the identified bank by replaying its full log into a new
// bank, which is appended and made current. Replay failures propagate and
// leave the repository unchanged.
func (repository *Repository) RestoreBank(id uint64) error {
	if id < 1 || id > uint64(len(repository.banks)) {
		return ErrInvalidBankID
	}
	source := repository.banks[id-1]
	restored, err := bank.Restore(source.AllOperations())
	if err != nil {
		return fmt.Errorf("restore bank %d: %w", id, err)
	}
	repository.banks = append(repository.banks, restored)
	repository.current = len(repository.banks) - 1
	return nil
}

// ensureBank lazily creates bank #1. Only mutating and id-returning calls
// reach it; pure queries never create banks.
func (repository *Repository) ensureBank() *bank.Bank {
	if len(repository.banks) == 0 {
		repository.NewBank()
	}
	return repository.banks[repository.current]
}

// EnsureBank exposes lazy creation for the which-bank request.
func (repository *Repository) EnsureBank() uint64 {
	repository.ensureBank()
	return repository.CurrentBankID()
}

// RegisterAccount creates an account with the given opening balance in the
// current bank, creating bank #1 first when none exists.
func (repository *Repository) RegisterAccount(balance uint64) (bank.AccountID, bank.OperationID, error) {
	current := repository.ensureBank()
	account := bank.NewAccount(balance)
	operationID, err := current.RegisterAccount(account)
	if err != nil {
		return bank.AccountID{}, bank.OperationID{}, err
	}
	return account.ID, operationID, nil
}

// Balance reads an account balance from the current bank. An empty
// repository reports not-found rather than creating a bank.
func (repository *Repository) Balance(id bank.AccountID) (uint64, error) {
	if len(repository.banks) == 0 {
		return 0, bank.ErrNotFound
	}
	return repository.banks[repository.current].Balance(id)
}

// Deposit credits an account in the current bank.
func (repository *Repository) Deposit(id bank.AccountID, amount uint64) (bank.OperationID, error) {
	return repository.ensureBank().Deposit(id, amount)
}

// Withdraw debits an account in the current bank.
func (repository *Repository) Withdraw(id bank.AccountID, amount uint64) (bank.OperationID, error) {
	return repository.ensureBank().Withdraw(id, amount)
}

// Transfer moves funds between two accounts of the current bank.
func (repository *Repository) Transfer(sender bank.AccountID, receiver bank.AccountID, amount uint64) (bank.OperationID, error) {
	return repository.ensureBank().Transfer(sender, receiver, amount)
}

// AllOperations yields the current bank's full log, or nothing when the
// repository is empty.
func (repository *Repository) AllOperations() iter.Seq[bank.Operation] {
	if len(repository.banks) == 0 {
		return emptySequence
	}
	return repository.banks[repository.current].AllOperations()
}

// AccountOperations yields the current bank's operations referencing the
// account, or nothing when the repository is empty.
func (repository *Repository) AccountOperations(id bank.AccountID) iter.Seq[bank.Operation] {
	if len(repository.banks) == 0 {
		return emptySequence
	}
	return repository.banks[repository.current].AccountOperations(id)
}

func emptySequence(func(bank.Operation) bool) {}

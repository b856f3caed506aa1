package repository

import (
	"errors"
	"slices"
	"testing"

	"github.com/MarkoPoloResearchLab/bankd/pkg/bank"
)

func TestCurrentBankIDStartsAtZero(test *testing.T) {
	test.Parallel()
	repository := New()
	if got := repository.CurrentBankID(); got != 0 {
		test.Fatalf("expected 0 on an empty repository, got %d", got)
	}
	if got := repository.NewBank(); got != 1 {
		test.Fatalf("expected first bank ordinal 1, got %d", got)
	}
	if got := repository.CurrentBankID(); got != 1 {
		test.Fatalf("expected current bank 1, got %d", got)
	}
}

func TestRegisterAccountAutoCreatesFirstBank(test *testing.T) {
	test.Parallel()
	repository := New()
	if got := repository.CurrentBankID(); got != 0 {
		test.Fatalf("expected 0 before the first account, got %d", got)
	}

	accountID, operationID, err := repository.RegisterAccount(10)
	if err != nil {
		test.Fatalf("register: %v", err)
	}
	if accountID.IsZero() || operationID.IsZero() {
		test.Fatal("expected non-zero account and operation ids")
	}
	if got := repository.CurrentBankID(); got != 1 {
		test.Fatalf("expected bank 1 after lazy creation, got %d", got)
	}

	operations := collect(repository.AccountOperations(accountID))
	if len(operations) != 1 || operations[0].ID != operationID {
		test.Fatalf("expected the register operation in bank 1, got %v", operations)
	}
}

func TestBalanceDoesNotAutoCreateBank(test *testing.T) {
	test.Parallel()
	repository := New()
	_, err := repository.Balance(bank.NewAccountID())
	if !errors.Is(err, bank.ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := repository.CurrentBankID(); got != 0 {
		test.Fatalf("a pure query must not create a bank, current is %d", got)
	}
}

func TestListQueriesOnEmptyRepositoryAreEmpty(test *testing.T) {
	test.Parallel()
	repository := New()
	if operations := collect(repository.AllOperations()); len(operations) != 0 {
		test.Fatalf("expected no operations, got %v", operations)
	}
	if operations := collect(repository.AccountOperations(bank.NewAccountID())); len(operations) != 0 {
		test.Fatalf("expected no operations, got %v", operations)
	}
	if got := repository.CurrentBankID(); got != 0 {
		test.Fatalf("list queries must not create a bank, current is %d", got)
	}
}

func TestChangeBank(test *testing.T) {
	test.Parallel()
	repository := New()
	repository.NewBank()
	repository.NewBank()
	repository.NewBank()
	if got := repository.CurrentBankID(); got != 3 {
		test.Fatalf("expected current bank 3, got %d", got)
	}

	if err := repository.ChangeBank(2); err != nil {
		test.Fatalf("change bank: %v", err)
	}
	if got := repository.CurrentBankID(); got != 2 {
		test.Fatalf("expected current bank 2, got %d", got)
	}

	for _, invalid := range []uint64{0, 5, 100} {
		if err := repository.ChangeBank(invalid); !errors.Is(err, ErrInvalidBankID) {
			test.Fatalf("expected ErrInvalidBankID for %d, got %v", invalid, err)
		}
	}
	if got := repository.CurrentBankID(); got != 2 {
		test.Fatalf("failed change must not move the selector, current is %d", got)
	}
}

func TestBanksAreIsolated(test *testing.T) {
	test.Parallel()
	repository := New()
	accountID, _, err := repository.RegisterAccount(100)
	if err != nil {
		test.Fatalf("register: %v", err)
	}

	repository.NewBank()
	if _, err := repository.Balance(accountID); !errors.Is(err, bank.ErrNotFound) {
		test.Fatalf("accounts must not leak across banks, got %v", err)
	}

	if err := repository.ChangeBank(1); err != nil {
		test.Fatalf("change bank: %v", err)
	}
	balance, err := repository.Balance(accountID)
	if err != nil {
		test.Fatalf("balance: %v", err)
	}
	if balance != 100 {
		test.Fatalf("expected balance 100, got %d", balance)
	}
}

func TestRestoreBankForksByReplay(test *testing.T) {
	test.Parallel()
	repository := New()
	firstID, _, err := repository.RegisterAccount(100)
	if err != nil {
		test.Fatalf("register: %v", err)
	}
	secondID, _, err := repository.RegisterAccount(50)
	if err != nil {
		test.Fatalf("register: %v", err)
	}
	if _, err := repository.Deposit(firstID, 100); err != nil {
		test.Fatalf("deposit: %v", err)
	}
	if _, err := repository.Transfer(firstID, secondID, 50); err != nil {
		test.Fatalf("transfer: %v", err)
	}
	if _, err := repository.Withdraw(secondID, 25); err != nil {
		test.Fatalf("withdraw: %v", err)
	}

	if err := repository.RestoreBank(1); err != nil {
		test.Fatalf("restore bank: %v", err)
	}
	if got := repository.CurrentBankID(); got != 2 {
		test.Fatalf("expected the fork to become bank 2, got %d", got)
	}

	forkOperations := render(repository.AllOperations())
	if err := repository.ChangeBank(1); err != nil {
		test.Fatalf("change bank: %v", err)
	}
	sourceOperations := render(repository.AllOperations())
	if !slices.Equal(sourceOperations, forkOperations) {
		test.Fatalf("fork log differs from source:\n%v\n%v", sourceOperations, forkOperations)
	}

	// Mutating the fork must not touch the source.
	if err := repository.ChangeBank(2); err != nil {
		test.Fatalf("change bank: %v", err)
	}
	if _, err := repository.Deposit(firstID, 1); err != nil {
		test.Fatalf("deposit on fork: %v", err)
	}
	if err := repository.ChangeBank(1); err != nil {
		test.Fatalf("change bank: %v", err)
	}
	balance, err := repository.Balance(firstID)
	if err != nil {
		test.Fatalf("balance: %v", err)
	}
	if balance != 150 {
		test.Fatalf("source bank changed after mutating the fork, balance %d", balance)
	}
}

func TestRestoreBankInvalidID(test *testing.T) {
	test.Parallel()
	repository := New()
	repository.NewBank()
	for _, invalid := range []uint64{0, 2, 42} {
		if err := repository.RestoreBank(invalid); !errors.Is(err, ErrInvalidBankID) {
			test.Fatalf("expected ErrInvalidBankID for %d, got %v", invalid, err)
		}
	}
}

func TestEnsureBankCreatesOnce(test *testing.T) {
	test.Parallel()
	repository := New()
	if got := repository.EnsureBank(); got != 1 {
		test.Fatalf("expected bank 1, got %d", got)
	}
	if got := repository.EnsureBank(); got != 1 {
		test.Fatalf("ensure must be idempotent, got %d", got)
	}
}

func collect(operations func(func(bank.Operation) bool)) []bank.Operation {
	collected := make([]bank.Operation, 0)
	for operation := range operations {
		collected = append(collected, operation)
	}
	return collected
}

func render(operations func(func(bank.Operation) bool)) []string {
	rendered := make([]string, 0)
	for operation := range operations {
		rendered = append(rendered, operation.String())
	}
	return rendered
}

package protocol

import (
	"errors"
	"testing"

	"github.com/MarkoPoloResearchLab/bankd/pkg/bank"
)

func TestParseSimpleCommands(test *testing.T) {
	test.Parallel()
	cases := []struct {
		line string
		want Command
	}{
		{line: "new_bank", want: NewBank{}},
		{line: "which_bank", want: WhichBank{}},
		{line: "change_bank 2", want: ChangeBank{BankID: 2}},
		{line: "restore_bank 1", want: RestoreBank{BankID: 1}},
		{line: "register_account 100", want: RegisterAccount{Balance: 100}},
		{line: "new_account 100", want: RegisterAccount{Balance: 100}},
		{line: "list_all_operations", want: ListAllOperations{}},
		{line: "get_all_operations", want: ListAllOperations{}},
		{line: "quit", want: Quit{}},
		{line: "help", want: Help{}},
		{line: "  help  ", want: Help{}},
	}
	for _, testCase := range cases {
		command, err := Parse(testCase.line)
		if err != nil {
			test.Fatalf("%q: %v", testCase.line, err)
		}
		if command != testCase.want {
			test.Fatalf("%q: expected %#v, got %#v", testCase.line, testCase.want, command)
		}
	}
}

func TestParseAccountCommands(test *testing.T) {
	test.Parallel()
	account := bank.NewAccountID()
	receiver := bank.NewAccountID()

	command, err := Parse("get_balance " + account.String())
	if err != nil {
		test.Fatalf("get_balance: %v", err)
	}
	if command != (GetBalance{Account: account}) {
		test.Fatalf("expected GetBalance for %s, got %#v", account, command)
	}

	command, err = Parse("deposit " + account.String() + " 42")
	if err != nil {
		test.Fatalf("deposit: %v", err)
	}
	if command != (Deposit{Account: account, Amount: 42}) {
		test.Fatalf("unexpected deposit command %#v", command)
	}

	command, err = Parse("withdraw " + account.String() + " 7")
	if err != nil {
		test.Fatalf("withdraw: %v", err)
	}
	if command != (Withdraw{Account: account, Amount: 7}) {
		test.Fatalf("unexpected withdraw command %#v", command)
	}

	command, err = Parse("transfer " + account.String() + " " + receiver.String() + " 5")
	if err != nil {
		test.Fatalf("transfer: %v", err)
	}
	if command != (Transfer{Sender: account, Receiver: receiver, Amount: 5}) {
		test.Fatalf("unexpected transfer command %#v", command)
	}

	command, err = Parse("list_account_operations " + account.String())
	if err != nil {
		test.Fatalf("list_account_operations: %v", err)
	}
	if command != (ListAccountOperations{Account: account}) {
		test.Fatalf("unexpected list command %#v", command)
	}

	command, err = Parse("get_account_operations " + account.String())
	if err != nil {
		test.Fatalf("get_account_operations: %v", err)
	}
	if command != (ListAccountOperations{Account: account}) {
		test.Fatalf("unexpected list alias command %#v", command)
	}
}

func TestParseEmptyAndUnknown(test *testing.T) {
	test.Parallel()
	if _, err := Parse(""); !errors.Is(err, ErrEmptyCommand) {
		test.Fatalf("expected ErrEmptyCommand, got %v", err)
	}
	if _, err := Parse("   \t "); !errors.Is(err, ErrEmptyCommand) {
		test.Fatalf("expected ErrEmptyCommand for blank line, got %v", err)
	}
	if _, err := Parse("rob_bank"); !errors.Is(err, ErrUnknownCommand) {
		test.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestParseMissingArguments(test *testing.T) {
	test.Parallel()
	cases := []struct {
		line string
		want string
	}{
		{line: "change_bank", want: "require arguments: bank_id"},
		{line: "restore_bank", want: "require arguments: bank_id"},
		{line: "register_account", want: "require arguments: balance"},
		{line: "get_balance", want: "require arguments: account_id"},
		{line: "deposit", want: "require arguments: account_id, amount"},
		{line: "withdraw " + bank.NewAccountID().String(), want: "require arguments: account_id, amount"},
		{line: "transfer", want: "require arguments: sender_account_id, receiver_account_id, amount"},
		{line: "list_account_operations", want: "require arguments: account_id"},
	}
	for _, testCase := range cases {
		_, err := Parse(testCase.line)
		var missing *MissingArgumentsError
		if !errors.As(err, &missing) {
			test.Fatalf("%q: expected MissingArgumentsError, got %v", testCase.line, err)
		}
		if err.Error() != testCase.want {
			test.Fatalf("%q: expected %q, got %q", testCase.line, testCase.want, err.Error())
		}
	}
}

func TestParseInvalidArguments(test *testing.T) {
	test.Parallel()
	cases := []struct {
		line string
		name string
	}{
		{line: "change_bank two", name: "bank_id"},
		{line: "register_account -5", name: "balance"},
		{line: "register_account 9223372036854775808", name: "balance"},
		{line: "get_balance not-a-uuid", name: "account_id"},
		{line: "deposit not-a-uuid 5", name: "account_id"},
		{line: "deposit " + bank.NewAccountID().String() + " lots", name: "amount"},
		{line: "transfer " + bank.NewAccountID().String() + " not-a-uuid 5", name: "receiver_account_id"},
	}
	for _, testCase := range cases {
		_, err := Parse(testCase.line)
		var invalid *InvalidArgumentError
		if !errors.As(err, &invalid) {
			test.Fatalf("%q: expected InvalidArgumentError, got %v", testCase.line, err)
		}
		if invalid.Name != testCase.name {
			test.Fatalf("%q: expected argument %q, got %q", testCase.line, testCase.name, invalid.Name)
		}
	}
}

func TestParseInvalidAccountIDWrapsSentinel(test *testing.T) {
	test.Parallel()
	_, err := Parse("get_balance 1234")
	if !errors.Is(err, bank.ErrInvalidAccountID) {
		test.Fatalf("expected ErrInvalidAccountID through the chain, got %v", err)
	}
}

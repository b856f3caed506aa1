package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MarkoPoloResearchLab/bankd/pkg/bank"
)

// Parse-level error values.
var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
)

// MissingArgumentsError names the arguments a command form requires.
type MissingArgumentsError struct {
	Arguments []string
}

// Error returns the formatted message.
func (missing *MissingArgumentsError) Error() string {
	return "require arguments: " + strings.Join(missing.Arguments, ", ")
}

// InvalidArgumentError reports an argument that failed to parse.
type InvalidArgumentError struct {
	Name string
	Err  error
}

// Error returns the formatted message.
func (invalid *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %v", invalid.Name, invalid.Err)
}

// Unwrap returns the underlying parse failure.
func (invalid *InvalidArgumentError) Unwrap() error {
	return invalid.Err
}

// amountBits caps amounts and balances at 63 bits so that core ledger
// arithmetic stays within the signed delta range.
const amountBits = 63

// Parse turns one input line into a typed command.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	switch fields[0] {
	case "new_bank":
		return NewBank{}, nil
	case "which_bank":
		return WhichBank{}, nil
	case "change_bank", "restore_bank":
		if len(fields) < 2 {
			return nil, &MissingArgumentsError{Arguments: []string{"bank_id"}}
		}
		bankID, err := parseUint("bank_id", fields[1], 64)
		if err != nil {
			return nil, err
		}
		if fields[0] == "change_bank" {
			return ChangeBank{BankID: bankID}, nil
		}
		return RestoreBank{BankID: bankID}, nil
	case "register_account", "new_account":
		if len(fields) < 2 {
			return nil, &MissingArgumentsError{Arguments: []string{"balance"}}
		}
		balance, err := parseUint("balance", fields[1], amountBits)
		if err != nil {
			return nil, err
		}
		return RegisterAccount{Balance: balance}, nil
	case "get_balance":
		if len(fields) < 2 {
			return nil, &MissingArgumentsError{Arguments: []string{"account_id"}}
		}
		account, err := parseAccountID("account_id", fields[1])
		if err != nil {
			return nil, err
		}
		return GetBalance{Account: account}, nil
	case "deposit", "withdraw":
		if len(fields) < 3 {
			return nil, &MissingArgumentsError{Arguments: []string{"account_id", "amount"}}
		}
		account, err := parseAccountID("account_id", fields[1])
		if err != nil {
			return nil, err
		}
		amount, err := parseUint("amount", fields[2], amountBits)
		if err != nil {
			return nil, err
		}
		if fields[0] == "deposit" {
			return Deposit{Account: account, Amount: amount}, nil
		}
		return Withdraw{Account: account, Amount: amount}, nil
	case "transfer":
		if len(fields) < 4 {
			return nil, &MissingArgumentsError{Arguments: []string{"sender_account_id", "receiver_account_id", "amount"}}
		}
		sender, err := parseAccountID("sender_account_id", fields[1])
		if err != nil {
			return nil, err
		}
		receiver, err := parseAccountID("receiver_account_id", fields[2])
		if err != nil {
			return nil, err
		}
		amount, err := parseUint("amount", fields[3], amountBits)
		if err != nil {
			return nil, err
		}
		return Transfer{Sender: sender, Receiver: receiver, Amount: amount}, nil
	case "list_account_operations", "get_account_operations":
		if len(fields) < 2 {
			return nil, &MissingArgumentsError{Arguments: []string{"account_id"}}
		}
		account, err := parseAccountID("account_id", fields[1])
		if err != nil {
			return nil, err
		}
		return ListAccountOperations{Account: account}, nil
	case "list_all_operations", "get_all_operations":
		return ListAllOperations{}, nil
	case "quit":
		return Quit{}, nil
	case "help":
		return Help{}, nil
	default:
		return nil, ErrUnknownCommand
	}
}

func parseUint(name string, value string, bits int) (uint64, error) {
	parsed, err := strconv.ParseUint(value, 10, bits)
	if err != nil {
		return 0, &InvalidArgumentError{Name: name, Err: err}
	}
	return parsed, nil
}

func parseAccountID(name string, value string) (bank.AccountID, error) {
	account, err := bank.ParseAccountID(value)
	if err != nil {
		return bank.AccountID{}, &InvalidArgumentError{Name: name, Err: err}
	}
	return account, nil
}

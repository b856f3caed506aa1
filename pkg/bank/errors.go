package bank

import "errors"

// Domain-level error values returned by the bank.
var (
	ErrNotFound           = errors.New("account not found")
	ErrAlreadyExists      = errors.New("account already exists")
	ErrZeroAmount         = errors.New("zero amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrTransferToItself   = errors.New("transfer to itself")
	ErrAmountOverflow     = errors.New("amount overflows 64-bit arithmetic")
	ErrUnknownOperation   = errors.New("unknown operation kind")
	ErrInvalidAccountID   = errors.New("invalid account id")
	ErrInvalidOperationID = errors.New("invalid operation id")
)

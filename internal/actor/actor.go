// Package actor serializes all ledger commands through a single goroutine
// that owns the bank repository. Sessions submit commands concurrently; the
// run loop is the only code that ever touches repository state, so the core
// needs no locks.
package actor

import (
	"context"
	"iter"
	"strconv"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/bankd/internal/protocol"
	"github.com/MarkoPoloResearchLab/bankd/internal/repository"
	"github.com/MarkoPoloResearchLab/bankd/pkg/bank"
)

const requestBuffer = 128

type request struct {
	command protocol.Command
	reply   chan Reply
}

// Actor owns the repository and executes commands one at a time in the
// order they arrive on its request channel.
type Actor struct {
	requests   chan request
	repository *repository.Repository
	logger     *zap.Logger
}

// New builds an actor around an empty repository. Run must be started
// before any Submit call can complete.
func New(logger *zap.Logger) *Actor {
	return &Actor{
		requests:   make(chan request, requestBuffer),
		repository: repository.New(),
		logger:     logger,
	}
}

// Run executes commands until the context is cancelled. It is the sole
// goroutine allowed to touch the repository.
func (actor *Actor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			actor.logger.Info("actor stopped", zap.Error(ctx.Err()))
			return
		case incoming := <-actor.requests:
			reply := actor.execute(incoming.command)
			if reply.Status != StatusOK {
				actor.logger.Debug("command rejected",
					zap.String("status", reply.Status),
					zap.String("error", reply.Error))
			}
			incoming.reply <- reply
		}
	}
}

// Submit sends one command to the run loop and waits for its reply. It
// fails only when the context ends before the actor answers.
func (actor *Actor) Submit(ctx context.Context, command protocol.Command) (Reply, error) {
	incoming := request{command: command, reply: make(chan Reply, 1)}
	select {
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case actor.requests <- incoming:
	}
	select {
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case reply := <-incoming.reply:
		return reply, nil
	}
}

// execute maps one command onto the repository. Bank-selection commands
// report the bank that was current before the call.
func (actor *Actor) execute(command protocol.Command) Reply {
	switch command := command.(type) {
	case protocol.NewBank:
		before := actor.repository.CurrentBankID()
		created := actor.repository.NewBank()
		return Reply{Bank: before, Status: StatusOK, Result: strconv.FormatUint(created, 10)}

	case protocol.ChangeBank:
		before := actor.repository.CurrentBankID()
		if err := actor.repository.ChangeBank(command.BankID); err != nil {
			return Reply{Bank: before, Status: StatusError, Kind: ErrorKindRepository, Error: err.Error()}
		}
		return Reply{Bank: before, Status: StatusOK, Result: strconv.FormatUint(command.BankID, 10)}

	case protocol.RestoreBank:
		before := actor.repository.CurrentBankID()
		if err := actor.repository.RestoreBank(command.BankID); err != nil {
			return Reply{Bank: before, Status: StatusError, Kind: ErrorKindRepository, Error: err.Error()}
		}
		return Reply{Bank: before, Status: StatusOK, Result: strconv.FormatUint(actor.repository.CurrentBankID(), 10)}

	case protocol.WhichBank:
		current := actor.repository.EnsureBank()
		return Reply{Bank: current, Status: StatusOK, Result: strconv.FormatUint(current, 10)}

	case protocol.RegisterAccount:
		accountID, operationID, err := actor.repository.RegisterAccount(command.Balance)
		bankID := actor.repository.CurrentBankID()
		if err != nil {
			return bankFailure(bankID, err)
		}
		return Reply{Bank: bankID, OpID: operationID.String(), Status: StatusOK, Result: accountID.String()}

	case protocol.GetBalance:
		bankID := actor.repository.CurrentBankID()
		balance, err := actor.repository.Balance(command.Account)
		if err != nil {
			return Reply{Bank: bankID, Status: StatusFail, Result: err.Error()}
		}
		return Reply{Bank: bankID, Status: StatusOK, Result: strconv.FormatUint(balance, 10)}

	case protocol.Deposit:
		operationID, err := actor.repository.Deposit(command.Account, command.Amount)
		bankID := actor.repository.CurrentBankID()
		if err != nil {
			return bankFailure(bankID, err)
		}
		return Reply{Bank: bankID, OpID: operationID.String(), Status: StatusOK}

	case protocol.Withdraw:
		operationID, err := actor.repository.Withdraw(command.Account, command.Amount)
		bankID := actor.repository.CurrentBankID()
		if err != nil {
			return bankFailure(bankID, err)
		}
		return Reply{Bank: bankID, OpID: operationID.String(), Status: StatusOK}

	case protocol.Transfer:
		operationID, err := actor.repository.Transfer(command.Sender, command.Receiver, command.Amount)
		bankID := actor.repository.CurrentBankID()
		if err != nil {
			return bankFailure(bankID, err)
		}
		return Reply{Bank: bankID, OpID: operationID.String(), Status: StatusOK}

	case protocol.ListAccountOperations:
		return listReply(actor.repository.CurrentBankID(), actor.repository.AccountOperations(command.Account))

	case protocol.ListAllOperations:
		return listReply(actor.repository.CurrentBankID(), actor.repository.AllOperations())

	default:
		// Quit and Help are session-local and never reach the actor.
		return Reply{
			Bank:   actor.repository.CurrentBankID(),
			Status: StatusError,
			Error:  "unsupported command",
		}
	}
}

func bankFailure(bankID uint64, err error) Reply {
	return Reply{Bank: bankID, Status: StatusError, Kind: ErrorKindBank, Error: err.Error()}
}

func listReply(bankID uint64, operations iter.Seq[bank.Operation]) Reply {
	lines := make([]string, 0)
	for operation := range operations {
		lines = append(lines, operation.String())
	}
	if len(lines) == 0 {
		return Reply{Bank: bankID, Status: StatusOK, Result: "no operations yet"}
	}
	return Reply{Bank: bankID, Status: StatusOK, Lines: lines}
}

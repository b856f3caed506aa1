// Package server implements the line-oriented TCP surface. Each connection
// gets its own session goroutine that parses commands, forwards them to the
// actor and writes response records back.
package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/bankd/internal/actor"
	"github.com/MarkoPoloResearchLab/bankd/internal/protocol"
)

const banner = "Welcome to bank application\nPrint 'help' and press Enter to see the list of commands\n"

const farewell = "Bye bye\n\n"

const helpText = `Supported commands:
  new_bank
  change_bank <bank_id>
  restore_bank <bank_id>
  which_bank
  register_account <balance>
  new_account <balance> - alias for register_account
  get_balance <account_id>
  deposit <account_id> <amount>
  withdraw <account_id> <amount>
  transfer <sender_account_id> <receiver_account_id> <amount>
  list_account_operations <account_id>
  get_account_operations <account_id> - alias for list_account_operations
  list_all_operations
  get_all_operations - alias for list_all_operations
  quit

`

// Server accepts TCP connections and runs one session per client.
type Server struct {
	actor  *actor.Actor
	logger *zap.Logger
}

// New builds a server in front of a running actor.
func New(ledgerActor *actor.Actor, logger *zap.Logger) *Server {
	return &Server{actor: ledgerActor, logger: logger}
}

// Serve accepts connections until the context is cancelled. Cancellation
// closes the listener, which unblocks Accept.
func (server *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	server.logger.Info("listening", zap.String("addr", listener.Addr().String()))
	for {
		connection, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		server.logger.Info("client connected", zap.String("remote", connection.RemoteAddr().String()))
		go func() {
			defer connection.Close()
			if err := server.HandleConnection(ctx, connection, connection); err != nil {
				server.logger.Warn("session ended", zap.Error(err))
			}
		}()
	}
}

// HandleConnection runs one session: banner first, then one response record
// per input line until quit or EOF. Quit and help never reach the actor.
func (server *Server) HandleConnection(ctx context.Context, reader io.Reader, writer io.Writer) error {
	if _, err := io.WriteString(writer, banner); err != nil {
		return fmt.Errorf("write banner: %w", err)
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		command, err := protocol.Parse(line)
		if err != nil {
			record := fmt.Sprintf("Command: %s\nStatus: error\nType: parse\nError: %v\n\n", strings.TrimSpace(line), err)
			if _, err := io.WriteString(writer, record); err != nil {
				return fmt.Errorf("write parse error: %w", err)
			}
			continue
		}

		switch command.(type) {
		case protocol.Quit:
			if _, err := io.WriteString(writer, farewell); err != nil {
				return fmt.Errorf("write farewell: %w", err)
			}
			return nil
		case protocol.Help:
			if _, err := io.WriteString(writer, helpText); err != nil {
				return fmt.Errorf("write help: %w", err)
			}
			continue
		}

		reply, err := server.actor.Submit(ctx, command)
		if err != nil {
			return fmt.Errorf("submit command: %w", err)
		}
		if _, err := io.WriteString(writer, reply.Render()); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
	return scanner.Err()
}

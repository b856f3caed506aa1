// bankcli is a thin interactive client for the bankd line protocol. It pumps
// stdin to the server and echoes responses until the server says goodbye.
package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const defaultServerAddr = "127.0.0.1:1337"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bankcli: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var serverAddr string
	cmd := &cobra.Command{
		Use:           "bankcli",
		Short:         "Interactive client for the bank ledger server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(serverAddr, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&serverAddr, "server-addr", defaultServerAddr, "bankd address to connect to")
	return cmd
}

func runClient(serverAddr string, input io.Reader, output io.Writer) error {
	connection, err := net.Dial("tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", serverAddr, err)
	}
	defer connection.Close()

	// The pump goroutine ends with the process; a half-closed stdin only
	// stops new commands, responses still flow.
	go func() {
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			if _, err := fmt.Fprintln(connection, scanner.Text()); err != nil {
				return
			}
		}
	}()

	reader := bufio.NewReader(connection)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if _, writeErr := io.WriteString(output, line); writeErr != nil {
				return writeErr
			}
		}
		if strings.TrimSpace(line) == "Bye bye" {
			return nil
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

package actor

import (
	"fmt"
	"strings"
)

// Reply statuses.
const (
	StatusOK    = "ok"
	StatusFail  = "fail"
	StatusError = "error"
)

// Error kinds reported in the Type field.
const (
	ErrorKindBank       = "bank"
	ErrorKindRepository = "repository"
)

// Reply is the outcome of one executed command. Render turns it into the
// wire record the TCP session writes back.
type Reply struct {
	Bank   uint64
	OpID   string
	Status string
	Kind   string
	Error  string
	Result string
	Lines  []string
}

// Render produces the full response record, terminated by a blank line.
// Multi-line results use a bare "Result:" header followed by one operation
// per line.
func (reply Reply) Render() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Bank: %d\n", reply.Bank)
	if reply.OpID != "" {
		fmt.Fprintf(&builder, "OpID: %s\n", reply.OpID)
	}
	fmt.Fprintf(&builder, "Status: %s\n", reply.Status)
	if reply.Kind != "" {
		fmt.Fprintf(&builder, "Type: %s\n", reply.Kind)
	}
	if reply.Error != "" {
		fmt.Fprintf(&builder, "Error: %s\n", reply.Error)
	}
	switch {
	case len(reply.Lines) > 0:
		builder.WriteString("Result:\n")
		for _, line := range reply.Lines {
			builder.WriteString(line)
			builder.WriteByte('\n')
		}
	case reply.Result != "":
		fmt.Fprintf(&builder, "Result: %s\n", reply.Result)
	}
	builder.WriteByte('\n')
	return builder.String()
}

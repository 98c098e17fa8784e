package dispatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer gates execution of a resolved, validated call. Confirm
// receives the fully bound command and the function's description and
// reports whether the operator approved it.
type Confirmer interface {
	Confirm(ctx context.Context, command, description string) (bool, error)
}

// AcceptAll approves every call. It backs --auto and non-interactive
// contexts.
type AcceptAll struct{}

// Confirm always approves.
func (AcceptAll) Confirm(context.Context, string, string) (bool, error) {
	return true, nil
}

// TerminalConfirmer prompts on a console and defaults to declining.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalConfirmer builds a confirmer reading answers from in and
// prompting on out.
func NewTerminalConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm prints the command about to run and reads one line; anything but
// y/yes declines. A read failure counts as a decline.
func (c *TerminalConfirmer) Confirm(_ context.Context, command, description string) (bool, error) {
	if description != "" {
		fmt.Fprintln(c.out, description)
	}
	fmt.Fprintf(c.out, "execute? %s [y/N] ", command)

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var (
	_ Confirmer = AcceptAll{}
	_ Confirmer = (*TerminalConfirmer)(nil)
)

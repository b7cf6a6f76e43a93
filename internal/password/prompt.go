package password

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoTerminal is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNoTerminal = errors.New("stdin is not a terminal")

// Prompter asks the operator for a secret.
type Prompter interface {
	Prompt(label string) ([]byte, error)
}

// TerminalPrompter reads a password from a terminal without echo.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompter prompts on stderr and reads from stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// Prompt writes label and reads one line with echo disabled.
func (p *TerminalPrompter) Prompt(label string) ([]byte, error) {
	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNoTerminal
	}

	fmt.Fprint(p.Out, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return nil, err
	}
	return secret, nil
}

// Package exec provides abstractions for running external tools.
// Backends that shell out (the bw CLI, the macOS security tool) depend on
// CommandExecutor so their output can be faked in tests.
package exec

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandExecutor runs external commands.
type CommandExecutor interface {
	// Execute runs name with args and returns stdout, stderr and the
	// process error, if any.
	Execute(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)

	// LookPath reports where name would be found on PATH.
	LookPath(name string) (string, error)
}

// RealCommandExecutor executes commands with os/exec.
type RealCommandExecutor struct{}

// Execute runs the command and captures both output streams.
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// LookPath wraps exec.LookPath.
func (r *RealCommandExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// DefaultExecutor returns the production executor.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}

// Package password resolves the KeePass master password.
//
// Sources are consulted in order: the --kdbpassword flag, the
// KPASSCLI_KDBPASSWORD environment variable, the password_file and
// password_executable config keys, and finally an interactive prompt.
// Every non-prompt source names a file or a program, never the password
// itself: an executable file or a program on PATH is run and its trimmed
// stdout used, any other existing file (including a named pipe) is read
// and trimmed.
package password

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	kerrors "github.com/systmms/kpasscli/internal/errors"
	"github.com/systmms/kpasscli/internal/logging"
	"github.com/systmms/kpasscli/internal/secure"
	pkgexec "github.com/systmms/kpasscli/pkg/exec"
)

// Resolver finds the master password. It satisfies backends.PasswordSource.
type Resolver struct {
	Flag       string
	Env        string
	File       string
	Executable string

	Executor pkgexec.CommandExecutor
	Prompter Prompter
	Logger   *logging.Logger
}

// Password returns the master password from the first configured source.
func (r *Resolver) Password(ctx context.Context) (*secure.SecureBuffer, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	sources := []struct {
		name  string
		value string
	}{
		{"--kdbpassword", r.Flag},
		{"KPASSCLI_KDBPASSWORD", r.Env},
		{"password_file", r.File},
		{"password_executable", r.Executable},
	}
	for _, s := range sources {
		if s.value == "" {
			continue
		}
		logger.Debug("reading master password via %s (%s)", s.name, s.value)
		return r.fromSource(ctx, s.value)
	}

	if r.Prompter == nil {
		return nil, kerrors.UserError{
			Message:    "no master password source available",
			Suggestion: "Pass --kdbpassword, set KPASSCLI_KDBPASSWORD or configure password_file",
		}
	}
	logger.Debug("prompting for master password")
	secret, err := r.Prompter.Prompt("Enter password: ")
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return secure.NewSecureBuffer(secret), nil
}

func (r *Resolver) fromSource(ctx context.Context, source string) (*secure.SecureBuffer, error) {
	executor := r.Executor
	if executor == nil {
		executor = pkgexec.DefaultExecutor()
	}

	info, err := os.Stat(source)
	if err == nil {
		if !info.IsDir() && info.Mode()&0o111 != 0 {
			return run(ctx, executor, source)
		}
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read password file %s: %w", source, err)
		}
		return trimmed(data), nil
	}

	if path, lookErr := executor.LookPath(source); lookErr == nil {
		return run(ctx, executor, path)
	}

	return nil, kerrors.UserError{
		Message:    fmt.Sprintf("password source not found or not executable: %s", source),
		Suggestion: "Point the password option at a file or an executable, not at the password itself",
	}
}

func run(ctx context.Context, executor pkgexec.CommandExecutor, program string) (*secure.SecureBuffer, error) {
	stdout, stderr, err := executor.Execute(ctx, program)
	if err != nil {
		wipe(stdout)
		return nil, kerrors.CommandError{
			Command: program,
			Message: strings.TrimSpace(string(stderr)),
		}
	}
	return trimmed(stdout), nil
}

// trimmed moves the whitespace-trimmed secret into a SecureBuffer and
// wipes the whole source slice.
func trimmed(data []byte) *secure.SecureBuffer {
	buf := secure.NewSecureBuffer(append([]byte(nil), bytes.TrimSpace(data)...))
	wipe(data)
	return buf
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

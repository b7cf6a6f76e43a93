package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kpasscli/internal/errors"
	"github.com/systmms/kpasscli/internal/logging"
)

func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "database locked",
		Suggestion: "Check the master password",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Details: database locked")
	assert.Contains(t, errMsg, "💡 Try: Check the master password")
}

func TestUserErrorFallsBackToWrappedMessage(t *testing.T) {
	t.Parallel()

	err := errors.UserError{Err: fmt.Errorf("underlying")}
	assert.Equal(t, "underlying", err.Error())
}

func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "default_output",
		Value:      "printer",
		Message:    "unknown output type",
		Suggestion: "Use stdout or clipboard",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "default_output")
	assert.Contains(t, errMsg, "printer")
	assert.Contains(t, errMsg, "unknown output type")
	assert.Contains(t, errMsg, "stdout or clipboard")
}

func TestCommandErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.CommandError{
		Command:    "bw list",
		ExitCode:   1,
		Message:    "Vault is locked",
		Suggestion: "Run 'bw unlock'",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "bw list")
	assert.Contains(t, errMsg, "exit code: 1")
	assert.Contains(t, errMsg, "Vault is locked")
	assert.Contains(t, errMsg, "bw unlock")
}

func TestBackendErrorSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		backend    string
		err        error
		suggestion string
	}{
		{"bitwarden not logged in", "bitwarden", fmt.Errorf("not logged in"), "bw login"},
		{"bitwarden locked", "bitwarden", fmt.Errorf("vault is locked"), "bw unlock"},
		{"bitwarden missing cli", "bitwarden", fmt.Errorf("command not found"), "bitwarden.com/help/cli"},
		{"keepass missing file", "keepass", fmt.Errorf("open db.kdbx: no such file or directory"), "KPASSCLI_KDBPATH"},
		{"keepass wrong password", "keepass", fmt.Errorf("failed to decrypt database"), "master password"},
		{"keychain platform", "keychain", fmt.Errorf("keychain not supported on this platform"), "Secret Service"},
		{"keychain account", "keychain", fmt.Errorf("keychain account required"), "keychain.account"},
		{"generic permission", "keepass", fmt.Errorf("open x: permission denied"), "permissions"},
		{"no suggestion", "keepass", fmt.Errorf("something odd"), ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := errors.BackendError(tt.backend, "open", tt.err)

			var userErr errors.UserError
			require.True(t, stderrors.As(err, &userErr))
			assert.Contains(t, userErr.Message, tt.backend)
			if tt.suggestion == "" {
				assert.Empty(t, userErr.Suggestion)
			} else {
				assert.Contains(t, userErr.Suggestion, tt.suggestion)
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWrapCommandNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command    string
		suggestion string
	}{
		{"bw", "bitwarden.com/help/cli"},
		{"security", "macOS"},
		{"unknown-tool", "Make sure 'unknown-tool' is installed"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()

			err := errors.WrapCommandNotFound(tt.command, fmt.Errorf("exec: not found"))

			var cmdErr errors.CommandError
			require.True(t, stderrors.As(err, &cmdErr))
			assert.Equal(t, tt.command, cmdErr.Command)
			assert.Contains(t, cmdErr.Message, "command not found")
			assert.Contains(t, cmdErr.Suggestion, tt.suggestion)
		})
	}
}

func TestSimplifyError(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, errors.SimplifyError(nil))
	})

	t.Run("yaml error becomes config error", func(t *testing.T) {
		t.Parallel()
		err := errors.SimplifyError(fmt.Errorf("load: %w", fmt.Errorf("yaml: line 3: did not find expected key")))
		var configErr errors.ConfigError
		require.True(t, stderrors.As(err, &configErr))
		assert.Contains(t, configErr.Message, "Invalid YAML")
	})

	t.Run("permission denied", func(t *testing.T) {
		t.Parallel()
		err := errors.SimplifyError(fmt.Errorf("open /etc/x: permission denied"))
		var userErr errors.UserError
		require.True(t, stderrors.As(err, &userErr))
		assert.Equal(t, "Permission denied", userErr.Message)
	})

	t.Run("already friendly errors are kept", func(t *testing.T) {
		t.Parallel()
		original := fmt.Errorf("wrapped: %w", errors.CommandError{Command: "bw", Message: "boom"})
		assert.Same(t, original, errors.SimplifyError(original))
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		t.Parallel()
		original := fmt.Errorf("mystery")
		assert.Equal(t, original, errors.SimplifyError(original))
	})
}

func TestErrorMessagesDoNotLeakSecrets(t *testing.T) {
	t.Parallel()

	secret := "correct-horse-battery-staple"
	base := fmt.Errorf("failed to decrypt with %s", logging.Secret(secret))
	err := errors.BackendError("keepass", "open", base)

	assert.NotContains(t, err.Error(), secret)
	assert.Contains(t, err.Error(), "[REDACTED]")
}

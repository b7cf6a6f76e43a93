package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents a command execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// BackendError adds a suggestion for common store failures. The result
// still unwraps to err.
func BackendError(backend string, operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("%s backend error during %s", backend, operation),
		Suggestion: getBackendSuggestion(backend, err),
		Details:    err.Error(),
		Err:        err,
	}
}

// getBackendSuggestion returns helpful suggestions based on backend and error
func getBackendSuggestion(backend string, err error) string {
	errStr := err.Error()

	switch backend {
	case "bitwarden":
		if strings.Contains(errStr, "not logged in") {
			return "Run 'bw login' to authenticate with Bitwarden"
		}
		if strings.Contains(errStr, "vault is locked") {
			return "Run 'bw unlock' and export the BW_SESSION environment variable"
		}
		if strings.Contains(errStr, "command not found") {
			return "Install Bitwarden CLI: https://bitwarden.com/help/cli/"
		}

	case "keepass":
		if strings.Contains(errStr, "no such file or directory") {
			return "Check database_path in your config, --kdbpath or KPASSCLI_KDBPATH"
		}
		if strings.Contains(errStr, "decrypt") || strings.Contains(errStr, "Wrong password") {
			return "Check the master password and key_file"
		}
		if strings.Contains(errStr, "key file") {
			return "Check that key_file points to a readable key file"
		}

	case "keychain":
		if strings.Contains(errStr, "not supported") {
			return "The OS keychain needs macOS or a Linux Secret Service (D-Bus session)"
		}
		if strings.Contains(errStr, "access denied") {
			return "Allow kpasscli to access the item in your keychain"
		}
		if strings.Contains(errStr, "account required") {
			return "Query service/account or set keychain.account in your config"
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return "Check file permissions or run with appropriate privileges"
	}

	return ""
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"bw":          "Install Bitwarden CLI: https://bitwarden.com/help/cli/",
		"security":    "The security tool ships with macOS; the keychain backend needs macOS or Linux",
		"secret-tool": "Install libsecret-tools for your distribution",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	msg := "command not found"
	if err != nil {
		msg += ": " + err.Error()
	}

	return CommandError{
		Command:    command,
		Message:    msg,
		Suggestion: suggestion,
	}
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Already a user-friendly error
	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var configErr ConfigError
	if errors.As(err, &configErr) {
		return err
	}
	var cmdErr CommandError
	if errors.As(err, &cmdErr) {
		return err
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	return err
}

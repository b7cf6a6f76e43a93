package backends

import (
	"errors"
	"fmt"

	"github.com/systmms/kpasscli/internal/backends/contracts"
)

// AuthError indicates that a backend could not authenticate against its
// store.
type AuthError struct {
	Backend string
	Message string
}

// Error implements the error interface.
func (e AuthError) Error() string {
	return "authentication failed for " + e.Backend + ": " + e.Message
}

// KeychainError wraps OS keychain errors with context
type KeychainError struct {
	Op      string // Operation: "query", "list", "validate"
	Service string
	Account string
	Err     error
}

func (e *KeychainError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("keychain %s error: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("keychain %s error for %s/%s: %v", e.Op, e.Service, e.Account, e.Err)
}

func (e *KeychainError) Unwrap() error {
	return e.Err
}

// Keychain sentinel errors
var (
	ErrKeychainItemNotFound        = errors.New("keychain item not found")
	ErrKeychainAccessDenied        = errors.New("keychain access denied")
	ErrKeychainUnsupportedPlatform = errors.New("keychain not supported on this platform")
	ErrKeychainListUnsupported     = contracts.ErrListUnsupported
	ErrKeychainAccountRequired     = errors.New("keychain account required")
)

// Bitwarden sentinel errors
var (
	ErrBitwardenLocked          = errors.New("vault is locked")
	ErrBitwardenUnauthenticated = errors.New("not logged in")
)
